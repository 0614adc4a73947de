// Package blob abstracts the durable object store the scraper writes into
// and the extractor reads from and writes back to. Keys are slash-separated
// paths like "craigslist/20251021T090008Z/txt/123456789.txt".
package blob

import (
	"context"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/charmap"
)

// ErrNotFound is returned by Read and state loads when no object exists at
// the key. It is non-transient and never retried.
var ErrNotFound = eris.New("blob: object not found")

// Store lists, reads, and writes text/JSON objects.
type Store interface {
	// List returns all keys with the given prefix, sorted lexicographically.
	List(ctx context.Context, prefix string) ([]string, error)
	// Read returns the object contents, or ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)
	// Write stores data at key, overwriting any existing object.
	Write(ctx context.Context, key string, data []byte, contentType string) error
	// Exists reports whether an object is present at key.
	Exists(ctx context.Context, key string) (bool, error)
}

// DecodeText converts raw scraped bytes to a string. Valid UTF-8 passes
// through; anything else is decoded as Latin-1, which maps every byte and so
// never fails — the moral equivalent of decoding with replacement.
func DecodeText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}
