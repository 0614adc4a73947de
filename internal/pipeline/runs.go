package pipeline

import (
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/listing-etl/internal/blob"
)

// ListRunIDs returns the run identifiers present under the prefix, sorted
// lexicographically. Run IDs are timestamp-derived, so lexicographic order
// is time order.
func ListRunIDs(ctx context.Context, store blob.Store, prefix string) ([]string, error) {
	keys, err := store.List(ctx, prefix+"/")
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: list runs under %s", prefix)
	}

	seen := make(map[string]struct{})
	for _, key := range keys {
		rest := strings.TrimPrefix(key, prefix+"/")
		segment, _, found := strings.Cut(rest, "/")
		if !found || segment == "" || segment == "state" {
			continue
		}
		seen[segment] = struct{}{}
	}

	runs := make([]string, 0, len(seen))
	for r := range seen {
		runs = append(runs, r)
	}
	sort.Strings(runs)
	return runs, nil
}

// NewestRunID returns the lexicographically greatest run under the prefix.
func NewestRunID(ctx context.Context, store blob.Store, prefix string) (string, error) {
	runs, err := ListRunIDs(ctx, store, prefix)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", eris.Errorf("pipeline: no runs found under prefix %s", prefix)
	}
	return runs[len(runs)-1], nil
}

// listCandidates returns the .txt source item keys for a run, sorted.
func listCandidates(ctx context.Context, store blob.Store, prefix, runID string) ([]string, error) {
	keys, err := store.List(ctx, prefix+"/"+runID+"/txt/")
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: list candidates for %s", runID)
	}
	candidates := keys[:0]
	for _, key := range keys {
		if strings.HasSuffix(key, ".txt") {
			candidates = append(candidates, key)
		}
	}
	return candidates, nil
}
