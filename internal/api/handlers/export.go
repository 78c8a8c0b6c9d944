package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sbms-academy/server/internal/domain/registrations"
	"github.com/sbms-academy/server/internal/export"
	"github.com/sbms-academy/server/internal/metrics"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	zipContentType  = "application/zip"
)

type ExportSource interface {
	ListForExport(ctx context.Context, filter registrations.ExportFilter) ([]registrations.Registration, error)
	ListAssets(ctx context.Context, sessionID string) ([]registrations.Asset, error)
}

// ExportHandler produces the admin downloads. Both files are assembled in
// memory before the first byte is written so failures still get a proper
// status code.
type ExportHandler struct {
	Source  ExportSource
	Fetcher export.Fetcher
	Env     string
	now     func() time.Time
}

func NewExportHandler(source ExportSource, fetcher export.Fetcher, env string) *ExportHandler {
	return &ExportHandler{Source: source, Fetcher: fetcher, Env: env, now: time.Now}
}

// Registrations handles GET /api/admin/export/registrations.xlsx.
func (h *ExportHandler) Registrations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := registrations.ExportFilter{
		EventID:   strings.TrimSpace(query.Get("eventId")),
		SessionID: strings.TrimSpace(query.Get("sessionId")),
	}

	regs, err := h.Source.ListForExport(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteRegistrations(&buf, regs); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	metrics.ExportsTotal.WithLabelValues("xlsx").Inc()

	h.writeFile(w, xlsxContentType, h.filename("registrations", "xlsx"), buf.Bytes())
}

// Assets handles GET /api/admin/export/assets.zip?sessionId=. Files that
// cannot be downloaded are left out and counted in X-Export-Skipped.
func (h *ExportHandler) Assets(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("sessionId"))
	if sessionID == "" {
		badRequest(w, r, "sessionId is required", h.Env)
		return
	}

	assets, err := h.Source.ListAssets(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	logger := zerolog.Ctx(r.Context()).With().Str("session_id", sessionID).Logger()
	var buf bytes.Buffer
	summary, err := export.BuildArchive(r.Context(), &buf, assets, h.Fetcher, logger)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	metrics.ExportsTotal.WithLabelValues("zip").Inc()
	metrics.ExportAssetsSkipped.Add(float64(summary.Skipped))

	logger.Info().
		Int("added", summary.Added).
		Int("skipped", summary.Skipped).
		Msg("asset archive built")

	w.Header().Set("X-Export-Skipped", strconv.Itoa(summary.Skipped))
	h.writeFile(w, zipContentType, h.filename("participant-assets", "zip"), buf.Bytes())
}

func (h *ExportHandler) filename(base, ext string) string {
	now := time.Now
	if h.now != nil {
		now = h.now
	}
	return fmt.Sprintf("%s-%s.%s", base, now().UTC().Format("2006-01-02"), ext)
}

func (h *ExportHandler) writeFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
