package memory

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"

	"portfolio-backend/internal/remote"
)

// Blob is a stored object.
type Blob struct {
	Data        []byte
	ContentType string
}

// BlobStore is an in-memory remote.BlobStore.
type BlobStore struct {
	baseURL string
	bucket  string

	mu    sync.RWMutex
	blobs map[string]Blob

	faults *faults
}

// NewBlobStore constructs an empty store whose public URLs are rooted at baseURL.
func NewBlobStore(baseURL, bucket string) *BlobStore {
	return &BlobStore{
		baseURL: baseURL,
		bucket:  bucket,
		blobs:   map[string]Blob{},
		faults:  newFaults(),
	}
}

// SetFault installs fault for op; nil clears it.
func (s *BlobStore) SetFault(op Op, fault Fault) {
	s.faults.set(op, fault)
}

// Calls returns how many times op was invoked.
func (s *BlobStore) Calls(op Op) int {
	return s.faults.calls(op)
}

// TotalCalls returns the number of calls across all ops.
func (s *BlobStore) TotalCalls() int {
	return s.faults.total()
}

// Paths lists stored paths in sorted order.
func (s *BlobStore) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.blobs))
	for p := range s.blobs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Upload stores the reader contents at path.
func (s *BlobStore) Upload(ctx context.Context, path string, r io.Reader, contentType string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.faults.enter(Call{Op: OpUpload, Paths: []string{path}}); err != nil {
		return 0, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.blobs[path] = Blob{Data: data, ContentType: contentType}
	s.mu.Unlock()
	return int64(len(data)), nil
}

// PublicURL returns the URL a stored path is served from.
func (s *BlobStore) PublicURL(path string) string {
	segments := strings.Split(path, "/")
	for i := range segments {
		segments[i] = url.PathEscape(segments[i])
	}
	return remote.JoinURL(s.baseURL, "storage/v1/object/public", s.bucket, strings.Join(segments, "/"))
}

// PathFromURL reverses PublicURL.
func (s *BlobStore) PathFromURL(rawURL string) (string, bool) {
	return remote.PathAfterBucket(rawURL, s.bucket)
}

// Remove deletes the given paths. Missing paths are ignored.
func (s *BlobStore) Remove(ctx context.Context, paths ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.faults.enter(Call{Op: OpRemove, Paths: paths}); err != nil {
		return err
	}
	s.mu.Lock()
	for _, p := range paths {
		delete(s.blobs, p)
	}
	s.mu.Unlock()
	return nil
}

// Open returns a reader over a stored blob.
func (s *BlobStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.faults.enter(Call{Op: OpOpen, Paths: []string{path}}); err != nil {
		return nil, err
	}
	s.mu.RLock()
	blob, ok := s.blobs[path]
	s.mu.RUnlock()
	if !ok {
		return nil, remote.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(blob.Data)), nil
}

var _ remote.BlobStore = (*BlobStore)(nil)
