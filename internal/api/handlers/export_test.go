package handlers

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sbms-academy/server/internal/domain/registrations"
	"github.com/sbms-academy/server/internal/export"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func fixedExportHandler(source ExportSource, fetcher export.Fetcher) *ExportHandler {
	h := NewExportHandler(source, fetcher, testEnv)
	h.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }
	return h
}

func TestExportRegistrationsWorkbook(t *testing.T) {
	source := &stubExportSource{regs: []registrations.Registration{sampleRegistration()}}
	h := fixedExportHandler(source, nil)

	rec := httptest.NewRecorder()
	h.Registrations(rec, httptest.NewRequest(http.MethodGet, "/api/admin/export/registrations.xlsx?eventId=evt-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="registrations-2026-10-15.xlsx"`, rec.Header().Get("Content-Disposition"))
	require.Equal(t, registrations.ExportFilter{EventID: "evt-1"}, source.filter)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Registrations")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "REG-01HYX3KQW7ERTV9XNBM2P8QJZF", rows[1][0])
}

func TestExportAssetsArchive(t *testing.T) {
	source := &stubExportSource{assets: []registrations.Asset{
		{Kind: registrations.AssetCertificate, URL: "https://cdn.example/c1", Academy: "Glow", ParticipantName: "Sana", Reference: "REG-1"},
		{Kind: registrations.AssetIDCard, URL: "https://cdn.example/missing", Academy: "Glow", ParticipantName: "Ria", Reference: "REG-2"},
	}}
	fetcher := mapFetcher{"https://cdn.example/c1": {Data: []byte("png"), ContentType: "image/png"}}
	h := fixedExportHandler(source, fetcher)

	rec := httptest.NewRecorder()
	h.Assets(rec, httptest.NewRequest(http.MethodGet, "/api/admin/export/assets.zip?sessionId=sess-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, zipContentType, rec.Header().Get("Content-Type"))
	require.Equal(t, "1", rec.Header().Get("X-Export-Skipped"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	require.Equal(t, "Certificates/Glow/Sana_REG-1.png", zr.File[0].Name)
}

func TestExportAssetsRequiresSession(t *testing.T) {
	h := fixedExportHandler(&stubExportSource{}, mapFetcher{})
	rec := httptest.NewRecorder()
	h.Assets(rec, httptest.NewRequest(http.MethodGet, "/api/admin/export/assets.zip", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportSourceFailure(t *testing.T) {
	h := fixedExportHandler(&stubExportSource{err: errBoom}, mapFetcher{})
	rec := httptest.NewRecorder()
	h.Registrations(rec, httptest.NewRequest(http.MethodGet, "/api/admin/export/registrations.xlsx", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
