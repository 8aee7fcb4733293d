// Package files keeps the admin's uploaded files: blobs in the blob store and
// one record per blob in the files table.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"portfolio-backend/internal/notify"
	"portfolio-backend/internal/remote"
	"portfolio-backend/internal/shared/metrics"
	"portfolio-backend/internal/shared/serial"
	"portfolio-backend/internal/shared/telemetry"
)

const registryName = "files"

// ChangeHook is called after a mutation is committed remotely.
type ChangeHook func(ctx context.Context, op, id string)

// Registry caches file records, newest first.
type Registry struct {
	table    remote.Table[FileRecord]
	blobs    remote.BlobStore
	notifier notify.Notifier
	queue    *serial.Queue
	onChange ChangeHook
	newID    func() string

	uploading atomic.Int64

	mu    sync.RWMutex
	files []FileRecord
}

// Option configures a Registry.
type Option func(*Registry)

// WithChangeHook registers fn to run after each committed mutation.
func WithChangeHook(fn ChangeHook) Option {
	return func(r *Registry) { r.onChange = fn }
}

// WithIDGenerator overrides how blob names are generated.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) { r.newID = fn }
}

// NewRegistry constructs an empty registry.
func NewRegistry(table remote.Table[FileRecord], blobs remote.BlobStore, notifier notify.Notifier, opts ...Option) *Registry {
	if notifier == nil {
		notifier = notify.Discard
	}
	r := &Registry{
		table:    table,
		blobs:    blobs,
		notifier: notifier,
		queue:    serial.New(),
		newID:    uuid.NewString,
		files:    []FileRecord{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the collection name.
func (r *Registry) Name() string { return registryName }

// Files returns a snapshot of the cached records, newest first.
func (r *Registry) Files() []FileRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]FileRecord, len(r.files))
	copy(out, r.files)
	return out
}

// Len reports the number of cached records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.files)
}

// Get looks id up in the cache.
func (r *Registry) Get(id string) (FileRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.files[i], true
	}
	return FileRecord{}, false
}

// IsUploading reports whether any upload is in progress.
func (r *Registry) IsUploading() bool {
	return r.uploading.Load() > 0
}

// ShareableLink returns the download page path for a cached id, or "".
func (r *Registry) ShareableLink(id string) string {
	if _, ok := r.Get(id); !ok {
		return ""
	}
	return "/download/" + id
}

// FetchAll replaces the cache with the remote records, newest first. On
// failure the previous cache is kept.
func (r *Registry) FetchAll(ctx context.Context) error {
	items, err := r.table.Select(ctx, remote.Query{OrderBy: "created_at", Desc: true})
	r.record("fetch", err)
	if err != nil {
		telemetry.FromContext(ctx).Warn("files.fetch_failed", zap.Error(err))
		r.notifier.Notify(ctx, notify.Failure("Error fetching files", "There was a problem loading your files."))
		return fmt.Errorf("fetch files: %w", err)
	}
	if items == nil {
		items = []FileRecord{}
	}
	r.mu.Lock()
	r.files = items
	r.mu.Unlock()
	metrics.CacheSize.WithLabelValues(registryName).Set(float64(len(items)))
	return nil
}

// Upload writes the blob, then inserts its record. If the insert fails the
// blob is removed again so no orphan is left behind.
func (r *Registry) Upload(ctx context.Context, up Upload) (FileRecord, error) {
	r.uploading.Add(1)
	metrics.UploadsInFlight.Inc()
	defer func() {
		r.uploading.Add(-1)
		metrics.UploadsInFlight.Dec()
	}()

	rec, err := r.upload(ctx, up)
	r.record("upload", err)
	if err != nil {
		r.notifier.Notify(ctx, notify.Failure("Upload failed", notify.Describe(err, "There was a problem uploading your file.")))
		return FileRecord{}, err
	}

	r.mu.Lock()
	r.files = append([]FileRecord{rec}, r.files...)
	n := len(r.files)
	r.mu.Unlock()
	metrics.CacheSize.WithLabelValues(registryName).Set(float64(n))

	r.notifier.Notify(ctx, notify.Success("File uploaded", fmt.Sprintf("%s has been uploaded successfully.", up.Name)))
	r.changed(ctx, "upload", rec.ID)
	return rec, nil
}

func (r *Registry) upload(ctx context.Context, up Upload) (FileRecord, error) {
	if strings.TrimSpace(up.Name) == "" {
		return FileRecord{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	if up.Body == nil {
		return FileRecord{}, fmt.Errorf("%w: file body is required", ErrInvalidInput)
	}

	blobPath := r.blobPath(up.Name)
	written, err := r.blobs.Upload(ctx, blobPath, up.Body, up.Type)
	if err != nil {
		return FileRecord{}, err
	}
	metrics.UploadBytes.Observe(float64(written))

	size := up.Size
	if size <= 0 {
		size = written
	}
	rec, err := r.table.Insert(ctx, remote.Fields{
		"name": up.Name,
		"size": size,
		"type": up.Type,
		"url":  r.blobs.PublicURL(blobPath),
	})
	if err != nil {
		r.compensate(ctx, blobPath)
		return FileRecord{}, err
	}
	return rec, nil
}

// compensate removes a blob whose record could not be written. It runs even
// when ctx is already done.
func (r *Registry) compensate(ctx context.Context, blobPath string) {
	err := r.blobs.Remove(context.WithoutCancel(ctx), blobPath)
	result := "ok"
	if err != nil {
		result = "error"
		telemetry.FromContext(ctx).Error("files.compensate_failed",
			zap.String("path", blobPath), zap.Error(err))
	}
	metrics.CompensatingRemovals.WithLabelValues(result).Inc()
}

// UploadAll uploads sequentially and stops at the first failure. It returns
// the records uploaded before the failure.
func (r *Registry) UploadAll(ctx context.Context, uploads []Upload) ([]FileRecord, error) {
	done := make([]FileRecord, 0, len(uploads))
	for _, up := range uploads {
		rec, err := r.Upload(ctx, up)
		if err != nil {
			return done, fmt.Errorf("upload %s: %w", up.Name, err)
		}
		done = append(done, rec)
	}
	return done, nil
}

// Delete removes the blob and the record of a cached file. A failed blob
// removal is logged and tolerated; a failed record delete leaves the cache
// untouched.
func (r *Registry) Delete(ctx context.Context, id string) error {
	err := r.queue.Do(ctx, id, func() error {
		rec, ok := r.Get(id)
		if !ok {
			r.notifier.Notify(ctx, notify.Failure("Error", "File not found."))
			return ErrNotFound
		}

		if blobPath, ok := r.blobs.PathFromURL(rec.URL); ok {
			if err := r.blobs.Remove(ctx, blobPath); err != nil {
				telemetry.FromContext(ctx).Warn("files.blob_remove_failed",
					zap.String("id", id), zap.String("path", blobPath), zap.Error(err))
			}
		}

		if err := r.table.Delete(ctx, id); err != nil {
			r.notifier.Notify(ctx, notify.Failure("Delete failed", notify.Describe(err, "There was a problem deleting your file.")))
			return fmt.Errorf("delete file %s: %w", id, err)
		}

		r.mu.Lock()
		if i := r.indexOf(id); i >= 0 {
			r.files = append(r.files[:i:i], r.files[i+1:]...)
		}
		n := len(r.files)
		r.mu.Unlock()
		metrics.CacheSize.WithLabelValues(registryName).Set(float64(n))

		r.notifier.Notify(ctx, notify.Success("File deleted", fmt.Sprintf("%s has been deleted.", rec.Name)))
		r.changed(ctx, "delete", id)
		return nil
	})
	r.record("delete", err)
	return err
}

// Lookup reads one record from the remote store, bypassing the cache. The
// public download page uses it.
func (r *Registry) Lookup(ctx context.Context, id string) (FileRecord, error) {
	rec, err := r.table.Get(ctx, id)
	if errors.Is(err, remote.ErrNotFound) {
		return FileRecord{}, ErrNotFound
	}
	if err != nil {
		return FileRecord{}, fmt.Errorf("lookup file %s: %w", id, err)
	}
	return rec, nil
}

// Open streams the blob behind rec.
func (r *Registry) Open(ctx context.Context, rec FileRecord) (io.ReadCloser, error) {
	blobPath, ok := r.blobs.PathFromURL(rec.URL)
	if !ok {
		return nil, fmt.Errorf("file %s: url is not served by this store", rec.ID)
	}
	body, err := r.blobs.Open(ctx, blobPath)
	if errors.Is(err, remote.ErrNotFound) {
		return nil, ErrNotFound
	}
	return body, err
}

// blobPath names a new blob: a fresh id keeping the original extension.
func (r *Registry) blobPath(name string) string {
	ext := path.Ext(name)
	if ext == "" || ext == "." {
		return r.newID()
	}
	return r.newID() + ext
}

func (r *Registry) changed(ctx context.Context, op, id string) {
	if r.onChange != nil {
		r.onChange(ctx, op, id)
	}
}

func (r *Registry) record(op string, err error) {
	metrics.RegistryOperations.WithLabelValues(registryName, op, metrics.Result(err, isNotFound)).Inc()
}

// indexOf must be called with mu held.
func (r *Registry) indexOf(id string) int {
	for i := range r.files {
		if r.files[i].ID == id {
			return i
		}
	}
	return -1
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
