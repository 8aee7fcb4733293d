package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"portfolio-backend/internal/remote"
)

// Store implements remote.BlobStore on the local filesystem. Objects are
// served back by the API under /storage/v1/object/public/<bucket>/. Content
// types are kept beside the bucket in a parallel .<bucket>.types tree.
type Store struct {
	baseDir    string
	typesDir   string
	bucket     string
	publicRoot string
}

// New creates a local blob store rooted at baseDir/bucket.
func New(baseDir, publicBaseURL, bucket string) *Store {
	return &Store{
		baseDir:    filepath.Join(baseDir, bucket),
		typesDir:   filepath.Join(baseDir, "."+bucket+".types"),
		bucket:     bucket,
		publicRoot: remote.JoinURL(publicBaseURL, "storage/v1/object/public", bucket),
	}
}

// Upload writes the reader to disk at path.
func (s *Store) Upload(ctx context.Context, path string, r io.Reader, contentType string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	rel, err := cleanPath(path)
	if err != nil {
		return 0, err
	}
	fullPath := filepath.Join(s.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return 0, fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open file: %w", err)
	}

	written, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(fullPath)
		return 0, fmt.Errorf("write body: %w", err)
	}
	if err := s.writeType(rel, contentType); err != nil {
		_ = os.Remove(fullPath)
		return 0, err
	}
	return written, nil
}

// ContentType returns the type recorded at upload, or "" when none was given.
func (s *Store) ContentType(path string) string {
	rel, err := cleanPath(path)
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(s.typesDir, rel))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (s *Store) writeType(rel, contentType string) error {
	typePath := filepath.Join(s.typesDir, rel)
	if contentType == "" {
		if err := os.Remove(typePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("clear content type: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(typePath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(typePath, []byte(contentType), 0o644); err != nil {
		return fmt.Errorf("write content type: %w", err)
	}
	return nil
}

// PublicURL returns the URL a stored path is served from.
func (s *Store) PublicURL(path string) string {
	return s.publicRoot + "/" + escapePath(path)
}

// PathFromURL reverses PublicURL.
func (s *Store) PathFromURL(rawURL string) (string, bool) {
	if rest, ok := strings.CutPrefix(rawURL, s.publicRoot+"/"); ok && rest != "" {
		if p, err := url.PathUnescape(rest); err == nil {
			return p, true
		}
	}
	return remote.PathAfterBucket(rawURL, s.bucket)
}

// Remove deletes stored paths. Paths that do not exist are ignored.
func (s *Store) Remove(ctx context.Context, paths ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var errs []error
	for _, p := range paths {
		rel, err := cleanPath(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(filepath.Join(s.baseDir, rel)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", p, err))
			continue
		}
		if err := os.Remove(filepath.Join(s.typesDir, rel)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s content type: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, err := cleanPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.baseDir, rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, remote.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// cleanPath turns a storage path into a relative OS path that stays inside
// the bucket.
func cleanPath(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage path %q", path)
	}
	return clean, nil
}

func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i := range segments {
		segments[i] = url.PathEscape(segments[i])
	}
	return strings.Join(segments, "/")
}

var _ remote.BlobStore = (*Store)(nil)
