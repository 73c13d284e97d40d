package handler

import (
	"io"
	"net/http"

	"github.com/chatter-dev/chatter/internal/utils"
)

// CreateUploadURL issues a one-time write URL; the client PUTs the blob
// there and gets back the handle messages reference it by.
func (h *Handler) CreateUploadURL(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	token := h.upload.NewToken()
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{
		"token": token,
		"url":   "/v1/uploads/" + token,
	})
}

// UploadImage accepts one multipart "file" field against a previously
// issued token, validates it and returns the blob handle.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	if err := h.upload.Redeem(pathString(r, "token")); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	// Multipart overhead on top of the blob itself
	if err := r.ParseMultipartForm(h.cfg.Public.MaxUploadBytes + 1<<20); err != nil {
		http.Error(w, "Can't parse upload", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	handle, img, err := h.upload.Store(header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]interface{}{
		"handle":   handle,
		"mimeType": img.MimeType,
		"size":     img.SizeBytes,
		"width":    img.ImageWidth,
		"height":   img.ImageHeight,
	})
}

// GetImage streams a stored blob back. The handle is opaque; missing blobs
// are a plain 404.
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	handle := pathString(r, "handle")
	reader, err := h.upload.Open(handle)
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	defer reader.Close()

	w.Header().Set("Cache-Control", "private, max-age=86400")
	io.Copy(w, reader)
}
