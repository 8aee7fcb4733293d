package files

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio-backend/internal/notify"
	"portfolio-backend/internal/remote"
	"portfolio-backend/internal/shared/server/respond"
	"portfolio-backend/internal/shared/telemetry"
	"portfolio-backend/internal/shared/util"
)

const defaultMaxUploadBytes = 25 << 20 // 25MB

// Handler exposes the file registry over HTTP.
type Handler struct {
	Registry *Registry
	// MaxUploadBytes bounds the whole multipart request.
	MaxUploadBytes int64
	// PublicBaseURL prefixes shareable links when set.
	PublicBaseURL string
}

// NewHandler constructs a Handler.
func NewHandler(reg *Registry, maxUploadBytes int64, publicBaseURL string) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Registry: reg, MaxUploadBytes: maxUploadBytes, PublicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// RegisterAdminRoutes attaches the file manager routes. uploadGuard runs
// before the upload handler only.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup, uploadGuard ...gin.HandlerFunc) {
	rg.GET("/files", h.list)
	rg.POST("/files", append(uploadGuard, h.upload)...)
	rg.DELETE("/files/:id", h.remove)
	rg.GET("/files/:id/link", h.link)
	rg.POST("/files/refresh", h.refresh)
}

// RegisterPublicRoutes attaches the download page routes.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/downloads/:id", h.download)
	rg.GET("/downloads/:id/content", h.content)
}

// contentTyper is implemented by blob stores that remember upload types.
type contentTyper interface {
	ContentType(path string) string
}

// RegisterBlobRoutes serves blobs at the public URLs a local blob store
// hands out.
func RegisterBlobRoutes(r gin.IRoutes, blobs remote.BlobStore) {
	r.GET("/storage/v1/object/public/:bucket/*path", func(c *gin.Context) {
		blobPath, ok := blobs.PathFromURL(c.Request.URL.String())
		if !ok {
			respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
			return
		}
		body, err := blobs.Open(c.Request.Context(), blobPath)
		if err != nil {
			if errors.Is(err, remote.ErrNotFound) {
				respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read file", nil)
			return
		}
		defer body.Close()
		var contentType string
		if typed, ok := blobs.(contentTyper); ok {
			contentType = typed.ContentType(blobPath)
		}
		if contentType == "" {
			contentType = mime.TypeByExtension(pathExt(blobPath))
		}
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Status(http.StatusOK)
		c.Header("Content-Type", contentType)
		if _, err := io.Copy(c.Writer, body); err != nil {
			telemetry.FromContext(c.Request.Context()).Warn("files.serve_failed", zap.String("path", blobPath), zap.Error(err))
		}
	})
}

type listResponse struct {
	Files       []FileRecord `json:"files"`
	IsUploading bool         `json:"isUploading"`
}

func (h *Handler) list(c *gin.Context) {
	respond.OK(c, listResponse{Files: h.Registry.Files(), IsUploading: h.Registry.IsUploading()})
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	ctx := c.Request.Context()

	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid multipart form", nil)
		return
	}
	headers := append(form.File["files"], form.File["file"]...)
	if len(headers) == 0 {
		h.Registry.notifier.Notify(ctx, notify.Failure("No files selected", "Please select at least one file to upload."))
		respond.Error(c, http.StatusBadRequest, "validation_error", "at least one file is required", nil)
		return
	}

	uploads := make([]Upload, 0, len(headers))
	for _, fh := range headers {
		name, err := util.SanitizeFileName(fh.Filename)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid file name", nil)
			return
		}
		f, err := fh.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
			return
		}
		defer f.Close()
		uploads = append(uploads, Upload{
			Name: name,
			Size: fh.Size,
			Type: fh.Header.Get("Content-Type"),
			Body: f,
		})
	}

	done, err := h.Registry.UploadAll(ctx, uploads)
	if err != nil {
		if len(uploads) > 1 {
			h.Registry.notifier.Notify(ctx, notify.Failure("Upload failed", "There was a problem uploading your files."))
		}
		status, code := http.StatusBadGateway, "remote_error"
		if errors.Is(err, ErrInvalidInput) {
			status, code = http.StatusBadRequest, "validation_error"
		}
		respond.Error(c, status, code, "upload failed", gin.H{"uploaded": done})
		return
	}
	respond.Data(c, http.StatusCreated, done)
}

func (h *Handler) remove(c *gin.Context) {
	id := c.Param("id")
	c.Set("recordId", id)
	if err := h.Registry.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "File not found.", nil)
			return
		}
		respond.Error(c, http.StatusBadGateway, "remote_error", "failed to delete file", nil)
		return
	}
	respond.Data(c, http.StatusOK, gin.H{"id": id})
}

func (h *Handler) link(c *gin.Context) {
	link := h.Registry.ShareableLink(c.Param("id"))
	if link == "" {
		respond.Error(c, http.StatusNotFound, "not_found", "File not found.", nil)
		return
	}
	respond.OK(c, gin.H{"path": link, "url": h.PublicBaseURL + link})
}

func (h *Handler) refresh(c *gin.Context) {
	if err := h.Registry.FetchAll(c.Request.Context()); err != nil {
		respond.Error(c, http.StatusBadGateway, "remote_error", "failed to refresh files", nil)
		return
	}
	respond.Data(c, http.StatusOK, gin.H{"files": h.Registry.Len()})
}

func (h *Handler) download(c *gin.Context) {
	rec, ok := h.lookup(c)
	if !ok {
		return
	}
	respond.OK(c, rec)
}

func (h *Handler) content(c *gin.Context) {
	rec, ok := h.lookup(c)
	if !ok {
		return
	}
	body, err := h.Registry.Open(c.Request.Context(), rec)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "File not found.", nil)
			return
		}
		respond.Error(c, http.StatusBadGateway, "remote_error", "failed to read file", nil)
		return
	}
	defer body.Close()

	contentType := rec.Type
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": rec.Name}))
	c.DataFromReader(http.StatusOK, -1, contentType, body, nil)
}

func (h *Handler) lookup(c *gin.Context) (FileRecord, bool) {
	id := c.Param("id")
	c.Set("recordId", id)
	rec, err := h.Registry.Lookup(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "File not found.", nil)
			return FileRecord{}, false
		}
		respond.Error(c, http.StatusBadGateway, "remote_error", "failed to load file", nil)
		return FileRecord{}, false
	}
	return rec, true
}

func pathExt(p string) string {
	if i := strings.LastIndex(p, "."); i >= 0 && !strings.Contains(p[i:], "/") {
		return p[i:]
	}
	return ""
}
