package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sbms-academy/server/internal/domain/leads"
	"github.com/stretchr/testify/require"
)

func TestCreateLead(t *testing.T) {
	svc := &stubLeads{lead: &leads.Lead{ID: "lead-1", Number: "9876543210"}}
	h := NewLeadsHandler(svc, testEnv)

	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(`{"number":"9876543210","notes":"walk-in"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, asCaller(req, visitor, staff))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, staff.EmployeeID, svc.employeeID)
	var resp leadCreatedResponse
	decodeBody(t, rec, &resp)
	require.True(t, resp.Success)
	require.Equal(t, "lead-1", resp.Lead.ID)
	require.NotNil(t, resp.Lead.Interactions)

	svc.err = leads.ErrDuplicate
	rec = httptest.NewRecorder()
	h.Create(rec, asCaller(httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(`{"number":"9876543210"}`)), visitor, staff))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decodeProblem(t, rec).Detail, "already exists")
}

func TestListLeads(t *testing.T) {
	svc := &stubLeads{list: []leads.Lead{{
		ID:     "lead-1",
		Number: "9876543210",
		Interactions: []leads.Interaction{{
			ID:              "int-1",
			LeadID:          "lead-1",
			Type:            leads.InteractionFollowUp,
			Status:          leads.StatusNew,
			ContactedBy:     "emp-1",
			ContactedByName: "Asha",
			CreatedAt:       time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		}},
	}}}
	h := NewLeadsHandler(svc, testEnv)

	rec := httptest.NewRecorder()
	h.List(rec, asCaller(httptest.NewRequest(http.MethodGet, "/api/leads?source=instagram&limit=20&offset=40", nil), visitor, staff))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, leads.ListFilter{Source: "instagram", Limit: 20, Offset: 40}, svc.filter)

	var resp leadListResponse
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Leads, 1)
	require.Equal(t, "Asha", resp.Leads[0].Interactions[0].ContactedBy.FullName)
}

func TestAddInteraction(t *testing.T) {
	svc := &stubLeads{interaction: &leads.Interaction{ID: "int-1", LeadID: "lead-1", Type: "call", Status: "contacted"}}
	h := NewLeadsHandler(svc, testEnv)

	body := `{"lead_id":"lead-1","interaction_type":"call","status":"contacted","notes":"asked for fees"}`
	rec := httptest.NewRecorder()
	h.AddInteraction(rec, asCaller(httptest.NewRequest(http.MethodPost, "/api/lead-interactions", strings.NewReader(body)), visitor, staff))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, staff.EmployeeID, svc.employeeID)

	tests := []struct {
		err        error
		wantStatus int
	}{
		{leads.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: notes required", leads.ErrInvalidAction), http.StatusBadRequest},
		{errBoom, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		svc.err = tt.err
		rec = httptest.NewRecorder()
		h.AddInteraction(rec, asCaller(httptest.NewRequest(http.MethodPost, "/api/lead-interactions", strings.NewReader(body)), visitor, staff))
		require.Equal(t, tt.wantStatus, rec.Code, tt.err.Error())
	}
}

func TestListEmployees(t *testing.T) {
	svc := &stubLeads{employees: []leads.Employee{{ID: "emp-1", FullName: "Asha", Role: "counsellor"}}}
	h := NewLeadsHandler(svc, testEnv)

	rec := httptest.NewRecorder()
	h.Employees(rec, asCaller(httptest.NewRequest(http.MethodGet, "/api/employees", nil), visitor, staff))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp employeeListResponse
	decodeBody(t, rec, &resp)
	require.Equal(t, []employee{{ID: "emp-1", FullName: "Asha", Role: "counsellor"}}, resp.Employees)
}
