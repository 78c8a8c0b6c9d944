package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/sbms-academy/server/internal/domain/leads"
	"github.com/sbms-academy/server/internal/domain/registrations"
)

type LeadService interface {
	Create(ctx context.Context, employeeID string, input leads.CreateInput) (*leads.Lead, error)
	AddInteraction(ctx context.Context, employeeID string, input leads.InteractionInput) (*leads.Interaction, error)
	List(ctx context.Context, filter leads.ListFilter) ([]leads.Lead, error)
	Employees(ctx context.Context) ([]leads.Employee, error)
}

// LeadsHandler serves the staff-only lead tracker. Every route runs behind
// RequireIdentity and RequireEmployee.
type LeadsHandler struct {
	Service LeadService
	Env     string
}

func NewLeadsHandler(service LeadService, env string) *LeadsHandler {
	return &LeadsHandler{Service: service, Env: env}
}

type leadCreatedResponse struct {
	Success bool         `json:"success"`
	Lead    leadResponse `json:"lead"`
}

// Create handles POST /api/leads.
func (h *LeadsHandler) Create(w http.ResponseWriter, r *http.Request) {
	_, role, ok := caller(r)
	if !ok {
		unauthorized(w, r, h.Env)
		return
	}

	var input leads.CreateInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	lead, err := h.Service.Create(r.Context(), role.EmployeeID, input)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, leadCreatedResponse{Success: true, Lead: toLeadResponse(*lead)})
}

type leadListResponse struct {
	Leads  []leadResponse `json:"leads"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// List handles GET /api/leads, newest activity first.
func (h *LeadsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, offset := registrations.ParsePaging(query)

	list, err := h.Service.List(r.Context(), leads.ListFilter{
		Source: strings.TrimSpace(query.Get("source")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	out := make([]leadResponse, 0, len(list))
	for _, l := range list {
		out = append(out, toLeadResponse(l))
	}
	writeJSON(w, http.StatusOK, leadListResponse{Leads: out, Limit: limit, Offset: offset})
}

type interactionCreatedResponse struct {
	Success     bool                `json:"success"`
	Interaction interactionResponse `json:"interaction"`
}

// AddInteraction handles POST /api/lead-interactions.
func (h *LeadsHandler) AddInteraction(w http.ResponseWriter, r *http.Request) {
	_, role, ok := caller(r)
	if !ok {
		unauthorized(w, r, h.Env)
		return
	}

	var input leads.InteractionInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	interaction, err := h.Service.AddInteraction(r.Context(), role.EmployeeID, input)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, interactionCreatedResponse{Success: true, Interaction: toInteractionResponse(*interaction)})
}

type employeeListResponse struct {
	Employees []employee `json:"employees"`
}

// Employees handles GET /api/employees.
func (h *LeadsHandler) Employees(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.Employees(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	out := make([]employee, 0, len(list))
	for _, e := range list {
		out = append(out, employee{ID: e.ID, FullName: e.FullName, Role: e.Role})
	}
	writeJSON(w, http.StatusOK, employeeListResponse{Employees: out})
}
