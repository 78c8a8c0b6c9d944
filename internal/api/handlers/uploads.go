package handlers

import (
	"context"
	"net/http"

	"github.com/sbms-academy/server/internal/metrics"
)

type ImageUploader interface {
	UploadBase64(ctx context.Context, encoded string, folder string) (string, error)
}

// UploadsHandler accepts dashboard images sent inline as base64.
type UploadsHandler struct {
	Images ImageUploader
	Env    string
}

func NewUploadsHandler(images ImageUploader, env string) *UploadsHandler {
	return &UploadsHandler{Images: images, Env: env}
}

type imageUploadRequest struct {
	ImageBase64 string `json:"imageBase64"`
	Folder      string `json:"folder"`
}

type imageUploadResponse struct {
	URL string `json:"url"`
}

// UploadImage handles POST /api/upload_image.
func (h *UploadsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	var req imageUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		metrics.UploadsTotal.WithLabelValues("admin", "rejected").Inc()
		writeError(w, r, err, h.Env)
		return
	}

	url, err := h.Images.UploadBase64(r.Context(), req.ImageBase64, req.Folder)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("admin", uploadOutcome(err)).Inc()
		writeError(w, r, err, h.Env)
		return
	}
	metrics.UploadsTotal.WithLabelValues("admin", "stored").Inc()
	writeJSON(w, http.StatusOK, imageUploadResponse{URL: url})
}
