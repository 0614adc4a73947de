// Package state is the batch state tracker: the durable set of source item
// keys already converted to output for a given run. A key enters the set
// only after its record is durably written, so a crash can at worst cause a
// reprocess of an item whose output write is idempotent anyway.
package state

import "context"

// Tracker loads and saves the processed-key set for a run.
type Tracker interface {
	// Load returns the processed set, or an empty set when no prior state
	// exists or the stored state is unreadable. Corruption means "start
	// fresh", never a fatal error.
	Load(ctx context.Context, runID string) (map[string]struct{}, error)
	// Save persists the full set for the run, replacing prior state.
	Save(ctx context.Context, runID string, keys map[string]struct{}) error
	// Close releases any backend resources.
	Close() error
}
