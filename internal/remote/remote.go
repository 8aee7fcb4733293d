// Package remote defines the record store and blob store contracts the
// registries synchronize against. Every call is fallible and none are atomic
// across the record/blob boundary.
package remote

import (
	"context"
	"errors"
	"io"
	"sort"
)

// ErrNotFound is returned when a record or blob does not exist.
var ErrNotFound = errors.New("remote: not found")

// Fields holds column values for an insert or partial update. Only the keys
// present are written.
type Fields map[string]any

// Columns returns the field names in a stable order.
func (f Fields) Columns() []string {
	cols := make([]string, 0, len(f))
	for k := range f {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Query narrows a Select. The zero value reads the whole collection.
type Query struct {
	OrderBy string
	Desc    bool
	Limit   int
}

// Table is one record collection.
type Table[T any] interface {
	Select(ctx context.Context, q Query) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Insert(ctx context.Context, fields Fields) (T, error)
	Update(ctx context.Context, id string, fields Fields) error
	Delete(ctx context.Context, id string) error
}

// BlobStore holds file contents addressed by storage path.
type BlobStore interface {
	Upload(ctx context.Context, path string, r io.Reader, contentType string) (int64, error)
	PublicURL(path string) string
	Remove(ctx context.Context, paths ...string) error
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// PathFromURL reverses PublicURL. It reports false when url does not
	// point into this store.
	PathFromURL(url string) (string, bool)
}
