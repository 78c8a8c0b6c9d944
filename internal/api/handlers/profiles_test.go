package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/sbms-academy/server/internal/auth"
	"github.com/sbms-academy/server/internal/domain/profiles"
	"github.com/sbms-academy/server/internal/domain/uploads"
	"github.com/sbms-academy/server/internal/media"
	"github.com/stretchr/testify/require"
)

func photoRequest(t *testing.T, field, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="me.jpg"`, field))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/photo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return asCaller(req, visitor, auth.Role{})
}

func TestGetProfile(t *testing.T) {
	h := NewProfilesHandler(&stubProfiles{profile: &profiles.Profile{ID: visitor.ID, FullName: "Sana", TermsAccepted: true}}, nil, testEnv)
	rec := httptest.NewRecorder()
	h.Get(rec, asCaller(httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil), visitor, auth.Role{}))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp profileResponse
	decodeBody(t, rec, &resp)
	require.Equal(t, "Sana", resp.FullName)

	h = NewProfilesHandler(&stubProfiles{err: profiles.ErrNotFound}, nil, testEnv)
	rec = httptest.NewRecorder()
	h.Get(rec, asCaller(httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil), visitor, auth.Role{}))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveProfile(t *testing.T) {
	svc := &stubProfiles{profile: &profiles.Profile{ID: visitor.ID, FullName: "Sana"}}
	h := NewProfilesHandler(svc, nil, testEnv)

	body := `{"full_name":"Sana","number":"9876543210","terms_accepted":true}`
	rec := httptest.NewRecorder()
	h.Save(rec, asCaller(httptest.NewRequest(http.MethodPost, "/api/auth/profile", strings.NewReader(body)), visitor, auth.Role{}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, svc.saved.TermsAccepted)
	require.Equal(t, "9876543210", svc.saved.Number)

	svc.err = fmt.Errorf("%w: terms must be accepted", profiles.ErrInvalidProfile)
	rec = httptest.NewRecorder()
	h.Save(rec, asCaller(httptest.NewRequest(http.MethodPost, "/api/auth/profile", strings.NewReader(body)), visitor, auth.Role{}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decodeProblem(t, rec).Detail, "terms must be accepted")
}

func TestUploadPhoto(t *testing.T) {
	photos := &stubPhotos{result: uploads.Result{
		URL:      "https://cdn.example/user-photos/user-1/profile_1.jpg",
		Warnings: []string{"photo uploaded but profile not updated"},
	}}
	h := NewProfilesHandler(nil, photos, testEnv)

	rec := httptest.NewRecorder()
	h.UploadPhoto(rec, photoRequest(t, photoField, "image/jpeg", []byte("jpeg-bytes")))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/jpeg", photos.got.MimeType)
	require.Equal(t, int64(len("jpeg-bytes")), photos.got.Size)
	require.Equal(t, []byte("jpeg-bytes"), photos.got.Bytes)

	var resp photoUploadResponse
	decodeBody(t, rec, &resp)
	require.Equal(t, photos.result.URL, resp.PhotoURL)
	require.Equal(t, "Photo uploaded successfully", resp.Message)
	require.Equal(t, photos.result.Warnings, resp.Warnings)
}

func TestUploadPhotoErrors(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		err        error
		wantStatus int
	}{
		{"missing field", "file", nil, http.StatusBadRequest},
		{"wrong type", photoField, uploads.ErrInvalidType, http.StatusBadRequest},
		{"too large", photoField, uploads.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{"cdn failure", photoField, fmt.Errorf("store photo: %w", media.ErrUpstream), http.StatusBadGateway},
		{"cdn not configured", photoField, fmt.Errorf("store photo: %w", media.ErrNotConfigured), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewProfilesHandler(nil, &stubPhotos{err: tt.err}, testEnv)
			rec := httptest.NewRecorder()
			h.UploadPhoto(rec, photoRequest(t, tt.field, "image/gif", []byte("gif")))
			require.Equal(t, tt.wantStatus, rec.Code)
			require.Equal(t, tt.wantStatus, decodeProblem(t, rec).Status)
		})
	}
}

func TestUploadPhotoBodyCap(t *testing.T) {
	h := NewProfilesHandler(nil, &stubPhotos{}, testEnv)
	req := photoRequest(t, photoField, "image/jpeg", bytes.Repeat([]byte("a"), 4096))
	rec := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(rec, req.Body, 1024)

	h.UploadPhoto(rec, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUploadImage(t *testing.T) {
	images := &stubImages{url: "https://cdn.example/events/1.png"}
	h := NewUploadsHandler(images, testEnv)

	rec := httptest.NewRecorder()
	h.UploadImage(rec, httptest.NewRequest(http.MethodPost, "/api/upload_image", strings.NewReader(`{"imageBase64":"data:image/png;base64,AAAA","folder":"events"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "events", images.folder)
	var resp imageUploadResponse
	decodeBody(t, rec, &resp)
	require.Equal(t, images.url, resp.URL)

	images.err = uploads.ErrBadEncoding
	rec = httptest.NewRecorder()
	h.UploadImage(rec, httptest.NewRequest(http.MethodPost, "/api/upload_image", strings.NewReader(`{"imageBase64":"%%%"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	images.err = media.ErrNotConfigured
	rec = httptest.NewRecorder()
	h.UploadImage(rec, httptest.NewRequest(http.MethodPost, "/api/upload_image", strings.NewReader(`{"imageBase64":"AAAA"}`)))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
