package blob

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFSStore(t *testing.T) *FSStore {
	t.Helper()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestFSStoreWriteReadRoundTrip(t *testing.T) {
	s := newTestFSStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "craigslist/run1/txt/123.txt", []byte("hello"), "text/plain"))

	data, err := s.Read(ctx, "craigslist/run1/txt/123.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestFSStoreReadNotFound(t *testing.T) {
	s := newTestFSStore(t)

	_, err := s.Read(context.Background(), "craigslist/none.txt")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestFSStoreWriteOverwrites(t *testing.T) {
	s := newTestFSStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "k", []byte("one"), "text/plain"))
	require.NoError(t, s.Write(ctx, "k", []byte("two"), "text/plain"))

	data, err := s.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestFSStoreListPrefixSorted(t *testing.T) {
	s := newTestFSStore(t)
	ctx := context.Background()

	for _, k := range []string{
		"craigslist/run1/txt/b.txt",
		"craigslist/run1/txt/a.txt",
		"craigslist/run2/txt/c.txt",
		"other/run1/txt/d.txt",
	} {
		require.NoError(t, s.Write(ctx, k, []byte("x"), "text/plain"))
	}

	keys, err := s.List(ctx, "craigslist/run1/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"craigslist/run1/txt/a.txt",
		"craigslist/run1/txt/b.txt",
	}, keys)
}

func TestFSStoreListEmptyPrefix(t *testing.T) {
	s := newTestFSStore(t)

	keys, err := s.List(context.Background(), "missing/")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestFSStoreExists(t *testing.T) {
	s := newTestFSStore(t)
	ctx := context.Background()

	ok, err := s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Write(ctx, "k", []byte("x"), "text/plain"))
	ok, err = s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDecodeTextUTF8Passthrough(t *testing.T) {
	assert.Equal(t, "héllo wörld", DecodeText([]byte("héllo wörld")))
}

func TestDecodeTextLatin1Fallback(t *testing.T) {
	// 0xE9 is é in Latin-1 and invalid as standalone UTF-8.
	raw := []byte{'c', 'a', 'f', 0xE9}
	assert.Equal(t, "café", DecodeText(raw))
}
