package problem

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, res *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var body ProblemDetails
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body
}

func TestWrite_DevIncludesDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/registrations", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusBadRequest, TypeValidation, "Invalid request", errors.New("boom"), "development")

	require.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))
	require.Equal(t, http.StatusBadRequest, res.Code)
	body := decode(t, res)
	require.Equal(t, "boom", body.Detail)
	require.Equal(t, "/api/registrations", body.Instance)
	require.Equal(t, TypeValidation, body.Type)
}

func TestWrite_ProdSanitizesDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/registrations", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusInternalServerError, TypeServerError, "Server error", errors.New("pq: connection refused"), "production")

	body := decode(t, res)
	require.Equal(t, http.StatusText(http.StatusInternalServerError), body.Detail)
}

func TestWrite_ExplicitDetailWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/register", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusBadRequest, TypeConflict, "Already registered", errors.New("dup"), "production",
		WithDetail("Already registered for this event/session"),
		WithErrors(map[string]any{"session_id": "duplicate"}))

	body := decode(t, res)
	require.Equal(t, "Already registered for this event/session", body.Detail)
	require.Equal(t, "duplicate", body.Errors["session_id"])
}

func TestWrite_LogsByStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(logger.WithContext(req.Context()))

	Write(httptest.NewRecorder(), req, http.StatusNotFound, TypeNotFound, "Not found", errors.New("missing"), "test")
	require.Contains(t, buf.String(), `"level":"warn"`)

	buf.Reset()
	Write(httptest.NewRecorder(), req, http.StatusBadGateway, TypeUpstream, "Upstream failure", errors.New("cdn down"), "test")
	require.Contains(t, buf.String(), `"level":"error"`)

	buf.Reset()
	Write(httptest.NewRecorder(), req, http.StatusUnauthorized, TypeUnauthorized, "Unauthorized", nil, "test")
	require.Empty(t, buf.String())
}
