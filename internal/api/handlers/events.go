package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/sbms-academy/server/internal/domain/events"
)

type EventService interface {
	List(ctx context.Context, includeSessions bool) ([]events.Event, error)
	Sessions(ctx context.Context, eventID string) ([]events.Session, error)
	Save(ctx context.Context, input events.SaveInput) (events.SaveResult, error)
}

type EventsHandler struct {
	Service EventService
	Env     string
}

func NewEventsHandler(service EventService, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

type eventListResponse struct {
	Events []eventResponse `json:"events"`
}

// List handles GET /api/events. Sessions are embedded only when
// include_sessions is true.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	include, _ := strconv.ParseBool(r.URL.Query().Get("include_sessions"))

	list, err := h.Service.List(r.Context(), include)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	out := make([]eventResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toEventResponse(e))
	}
	writeJSON(w, http.StatusOK, eventListResponse{Events: out})
}

type sessionListResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

// Sessions handles GET /api/events/{id}/sessions.
func (h *EventsHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		badRequest(w, r, "event id is required", h.Env)
		return
	}

	sessions, err := h.Service.Sessions(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, sessionListResponse{Sessions: toSessionResponses(sessions)})
}

type saveEventResponse struct {
	Success  bool              `json:"success"`
	Event    eventResponse     `json:"event"`
	Sessions []sessionResponse `json:"sessions"`
	Linked   int               `json:"linked_id_cards"`
}

// Save handles PUT /api/admin/events: create or update an event together
// with its sessions.
func (h *EventsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var input events.SaveInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	result, err := h.Service.Save(r.Context(), input)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, saveEventResponse{
		Success:  true,
		Event:    toEventResponse(result.Event),
		Sessions: toSessionResponses(result.Sessions),
		Linked:   result.Linked,
	})
}
