package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/sbms-academy/server/internal/auth"
	"github.com/sbms-academy/server/internal/domain/registrations"
	"github.com/sbms-academy/server/internal/metrics"
)

type RegistrationService interface {
	List(ctx context.Context, filter registrations.QueryFilter) ([]registrations.Registration, error)
	Get(ctx context.Context, id string, identity auth.Identity, role auth.Role) (*registrations.Registration, error)
	Register(ctx context.Context, identity auth.Identity, input registrations.RegisterInput) (registrations.RegisterResult, error)
	GenerateQRCode(ctx context.Context, registrationID string) (registrations.QRResult, error)
}

type RegistrationsHandler struct {
	Service RegistrationService
	Env     string
}

func NewRegistrationsHandler(service RegistrationService, env string) *RegistrationsHandler {
	return &RegistrationsHandler{Service: service, Env: env}
}

type registrationListResponse struct {
	Registrations []registrationResponse `json:"registrations"`
	Limit         int                    `json:"limit"`
	Offset        int                    `json:"offset"`
}

// List handles GET /api/registrations. Non-staff callers only ever see
// their own registrations regardless of the userId parameter.
func (h *RegistrationsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, role, ok := caller(r)
	if !ok {
		unauthorized(w, r, h.Env)
		return
	}

	filter := registrations.BuildFilter(r.URL.Query(), identity, role)
	regs, err := h.Service.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, registrationListResponse{
		Registrations: toRegistrationResponses(regs),
		Limit:         filter.Limit(),
		Offset:        filter.Offset(),
	})
}

// Get handles GET /api/registration/{id}.
func (h *RegistrationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, role, ok := caller(r)
	if !ok {
		unauthorized(w, r, h.Env)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		badRequest(w, r, "registration id is required", h.Env)
		return
	}

	reg, err := h.Service.Get(r.Context(), id, identity, role)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toRegistrationResponse(*reg))
}

type registerResponse struct {
	Registration    registrationResponse `json:"registration"`
	Event           eventResponse        `json:"event"`
	Session         *sessionResponse     `json:"session"`
	PaymentRequired bool                 `json:"payment_required"`
	UPILink         string               `json:"upi_link,omitempty"`
	Warnings        []string             `json:"warnings,omitempty"`
}

// Register handles POST /api/register.
func (h *RegistrationsHandler) Register(w http.ResponseWriter, r *http.Request) {
	identity, _, ok := caller(r)
	if !ok {
		unauthorized(w, r, h.Env)
		return
	}

	var input registrations.RegisterInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	result, err := h.Service.Register(r.Context(), identity, input)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	metrics.RegistrationsCreatedTotal.WithLabelValues(result.Registration.PaymentStatus).Inc()

	resp := registerResponse{
		Registration:    toRegistrationResponse(result.Registration),
		Event:           toEventResponse(result.Event),
		PaymentRequired: result.PaymentRequired,
		UPILink:         result.UPILink,
		Warnings:        result.Warnings,
	}
	if result.Session != nil {
		session := toSessionResponse(*result.Session)
		resp.Session = &session
	}
	writeJSON(w, http.StatusCreated, resp)
}

type qrCodeRequest struct {
	RegistrationID string `json:"registration_id"`
}

type qrCodeResponse struct {
	QRCodeURL string   `json:"qr_code_url"`
	Message   string   `json:"message"`
	Warnings  []string `json:"warnings,omitempty"`
}

// GenerateQRCode handles POST /api/qrcode/generate for staff.
func (h *RegistrationsHandler) GenerateQRCode(w http.ResponseWriter, r *http.Request) {
	var req qrCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if strings.TrimSpace(req.RegistrationID) == "" {
		badRequest(w, r, "registration_id is required", h.Env)
		return
	}

	result, err := h.Service.GenerateQRCode(r.Context(), req.RegistrationID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, qrCodeResponse{
		QRCodeURL: result.URL,
		Message:   "QR code generated successfully",
		Warnings:  result.Warnings,
	})
}
