package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/sbms-academy/server/internal/auth"
	"github.com/sbms-academy/server/internal/domain/profiles"
	"github.com/sbms-academy/server/internal/domain/uploads"
	"github.com/sbms-academy/server/internal/metrics"
)

// photoField is the multipart form field carrying the profile photo.
const photoField = "photo"

type ProfileService interface {
	Get(ctx context.Context, identity auth.Identity) (*profiles.Profile, error)
	Save(ctx context.Context, identity auth.Identity, input profiles.SaveInput) (*profiles.Profile, error)
}

type PhotoUploader interface {
	Upload(ctx context.Context, identity auth.Identity, in uploads.Input) (uploads.Result, error)
}

type ProfilesHandler struct {
	Service ProfileService
	Photos  PhotoUploader
	Env     string
}

func NewProfilesHandler(service ProfileService, photos PhotoUploader, env string) *ProfilesHandler {
	return &ProfilesHandler{Service: service, Photos: photos, Env: env}
}

// Get handles GET /api/auth/profile.
func (h *ProfilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, _, ok := caller(r)
	if !ok {
		unauthorized(w, r, h.Env)
		return
	}

	profile, err := h.Service.Get(r.Context(), identity)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(*profile))
}

// Save handles POST /api/auth/profile as an upsert.
func (h *ProfilesHandler) Save(w http.ResponseWriter, r *http.Request) {
	identity, _, ok := caller(r)
	if !ok {
		unauthorized(w, r, h.Env)
		return
	}

	var input profiles.SaveInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	profile, err := h.Service.Save(r.Context(), identity, input)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(*profile))
}

type photoUploadResponse struct {
	PhotoURL string   `json:"photo_url"`
	Message  string   `json:"message"`
	Warnings []string `json:"warnings,omitempty"`
}

// UploadPhoto handles POST /api/upload/photo. The body cap sits above the
// image limit so oversized photos reach the pipeline and get its message.
func (h *ProfilesHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	identity, _, ok := caller(r)
	if !ok {
		unauthorized(w, r, h.Env)
		return
	}

	file, header, err := r.FormFile(photoField)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("profile_photo", "rejected").Inc()
		var tooLarge *http.MaxBytesError
		if !errors.As(err, &tooLarge) {
			err = uploads.ErrEmpty
		}
		writeError(w, r, err, h.Env)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	result, err := h.Photos.Upload(r.Context(), identity, uploads.Input{
		Bytes:    data,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Filename: header.Filename,
	})
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("profile_photo", uploadOutcome(err)).Inc()
		writeError(w, r, err, h.Env)
		return
	}
	metrics.UploadsTotal.WithLabelValues("profile_photo", "stored").Inc()

	writeJSON(w, http.StatusOK, photoUploadResponse{
		PhotoURL: result.URL,
		Message:  "Photo uploaded successfully",
		Warnings: result.Warnings,
	})
}

func uploadOutcome(err error) string {
	switch {
	case errors.Is(err, uploads.ErrInvalidType),
		errors.Is(err, uploads.ErrTooLarge),
		errors.Is(err, uploads.ErrEmpty),
		errors.Is(err, uploads.ErrBadEncoding),
		errors.Is(err, uploads.ErrBadFolder):
		return "rejected"
	default:
		return "failed"
	}
}
