package state

import (
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/listing-etl/internal/blob"
)

// BlobTracker keeps state as a newline-separated, sorted key list at
// <prefix>/state/<run_id>.txt in the same store the records land in.
type BlobTracker struct {
	store  blob.Store
	prefix string
}

// NewBlobTracker creates a tracker writing under the given key prefix.
func NewBlobTracker(store blob.Store, prefix string) *BlobTracker {
	return &BlobTracker{store: store, prefix: prefix}
}

func (t *BlobTracker) key(runID string) string {
	return t.prefix + "/state/" + runID + ".txt"
}

func (t *BlobTracker) Load(ctx context.Context, runID string) (map[string]struct{}, error) {
	raw, err := t.store.Read(ctx, t.key(runID))
	if err != nil {
		// Missing or unreadable state means start fresh; the output write
		// is idempotent so reprocessing is safe.
		if !eris.Is(err, blob.ErrNotFound) {
			zap.L().Warn("state: unreadable, starting fresh",
				zap.String("run_id", runID),
				zap.Error(err),
			)
		}
		return map[string]struct{}{}, nil
	}

	keys := make(map[string]struct{})
	for _, line := range strings.Split(string(raw), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			keys[line] = struct{}{}
		}
	}
	return keys, nil
}

func (t *BlobTracker) Save(ctx context.Context, runID string, keys map[string]struct{}) error {
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	data := []byte(strings.Join(sorted, "\n"))
	if err := t.store.Write(ctx, t.key(runID), data, "text/plain"); err != nil {
		return eris.Wrapf(err, "state: save %s", runID)
	}
	return nil
}

func (t *BlobTracker) Close() error { return nil }
