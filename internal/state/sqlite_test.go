package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteTracker(t *testing.T) *SQLiteTracker {
	t.Helper()
	tr, err := NewSQLite(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { tr.Close() })
	return tr
}

func TestSQLiteTracker_Load_Empty(t *testing.T) {
	tr := newTestSQLiteTracker(t)

	keys, err := tr.Load(context.Background(), "20240101T000000Z")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestSQLiteTracker_SaveLoadRoundTrip(t *testing.T) {
	tr := newTestSQLiteTracker(t)
	ctx := context.Background()

	in := map[string]struct{}{
		"raw/a.txt": {},
		"raw/b.txt": {},
	}
	require.NoError(t, tr.Save(ctx, "20240101T000000Z", in))

	out, err := tr.Load(ctx, "20240101T000000Z")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSQLiteTracker_SaveReplacesPriorState(t *testing.T) {
	tr := newTestSQLiteTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.Save(ctx, "20240101T000000Z", map[string]struct{}{
		"raw/old.txt": {},
	}))
	require.NoError(t, tr.Save(ctx, "20240101T000000Z", map[string]struct{}{
		"raw/new.txt": {},
	}))

	out, err := tr.Load(ctx, "20240101T000000Z")
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"raw/new.txt": {}}, out)
}

func TestSQLiteTracker_RunsAreIsolated(t *testing.T) {
	tr := newTestSQLiteTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.Save(ctx, "20240101T000000Z", map[string]struct{}{
		"raw/a.txt": {},
	}))
	require.NoError(t, tr.Save(ctx, "20240102T000000Z", map[string]struct{}{
		"raw/b.txt": {},
	}))

	out, err := tr.Load(ctx, "20240101T000000Z")
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"raw/a.txt": {}}, out)
}
