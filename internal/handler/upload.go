package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mbracken/njord/internal/domain"
	"github.com/mbracken/njord/internal/storage"
)

// Image types accepted for product and review uploads.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

const maxUploadBytes = 5 << 20

// UploadHandler stores uploaded images.
type UploadHandler struct {
	storage storage.Storage
}

// NewUploadHandler creates a new UploadHandler instance.
func NewUploadHandler(store storage.Storage) *UploadHandler {
	return &UploadHandler{storage: store}
}

// Upload handles POST /uploads. Staff only. The stored key is always
// server-generated; the client filename only contributes its extension as
// a fallback when the content type is missing.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	const op = "upload.create"

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, op, "Upload too large or malformed (max %d MB)", maxUploadBytes>>20))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, op, "A file field named %q is required", "file"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		ext = strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" && ext != ".webp" && ext != ".gif" {
			ErrorResponse(w, r, domain.Errorf(domain.EINVALID, op, "Unsupported file type %q", contentType))
			return
		}
	}

	key := fmt.Sprintf("images/%s/%s%s", time.Now().Format("2006/01"), uuid.New(), ext)
	url, err := h.storage.Put(r.Context(), key, file, contentType)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"key": key,
		"url": url,
	})
}

// Delete handles DELETE /uploads/{key...}. Staff only.
func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		ErrorResponse(w, r, domain.Invalid("upload.delete", "key is required"))
		return
	}

	if err := h.storage.Delete(r.Context(), key); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "File removed"})
}
