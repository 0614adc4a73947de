package state

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/listing-etl/internal/blob"
)

func TestBlobTracker_Load_Missing(t *testing.T) {
	tr := NewBlobTracker(blob.NewMemStore(), "craigslist")

	keys, err := tr.Load(context.Background(), "20240101T000000Z")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestBlobTracker_Load_UnreadableStartsFresh(t *testing.T) {
	store := blob.NewMemStore()
	store.FailReads = map[string]error{
		"craigslist/state/20240101T000000Z.txt": eris.New("permission denied"),
	}
	tr := NewBlobTracker(store, "craigslist")

	keys, err := tr.Load(context.Background(), "20240101T000000Z")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestBlobTracker_SaveLoadRoundTrip(t *testing.T) {
	store := blob.NewMemStore()
	tr := NewBlobTracker(store, "craigslist")
	ctx := context.Background()

	in := map[string]struct{}{
		"raw/b.txt": {},
		"raw/a.txt": {},
	}
	require.NoError(t, tr.Save(ctx, "20240101T000000Z", in))

	out, err := tr.Load(ctx, "20240101T000000Z")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestBlobTracker_SaveWritesSortedLines(t *testing.T) {
	store := blob.NewMemStore()
	tr := NewBlobTracker(store, "craigslist")
	ctx := context.Background()

	require.NoError(t, tr.Save(ctx, "20240101T000000Z", map[string]struct{}{
		"raw/c.txt": {},
		"raw/a.txt": {},
		"raw/b.txt": {},
	}))

	raw, err := store.Read(ctx, "craigslist/state/20240101T000000Z.txt")
	require.NoError(t, err)
	assert.Equal(t, "raw/a.txt\nraw/b.txt\nraw/c.txt", string(raw))
}

func TestBlobTracker_Load_IgnoresBlankLines(t *testing.T) {
	store := blob.NewMemStore()
	ctx := context.Background()
	require.NoError(t, store.Write(ctx,
		"craigslist/state/20240101T000000Z.txt",
		[]byte("raw/a.txt\n\nraw/b.txt\n"), "text/plain"))

	tr := NewBlobTracker(store, "craigslist")
	keys, err := tr.Load(ctx, "20240101T000000Z")
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}
