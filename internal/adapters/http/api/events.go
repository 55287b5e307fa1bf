// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/podium/internal/domain/model"
)

// EventsDependencies defines the interface for event operations.
type EventsDependencies interface {
	EventTeams(ctx context.Context, eventID int) []model.Team
}

// EventsHandler handles event roster requests.
type EventsHandler struct {
	deps EventsDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventsDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleEventTeams handles GET /events/{id}/teams requests.
func (h *EventsHandler) HandleEventTeams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/events/"), "/"), "/")
	if len(parts) != 2 || parts[1] != "teams" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	eventID, err := strconv.Atoi(parts[0])
	if err != nil || eventID <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	teams := h.deps.EventTeams(r.Context(), eventID)
	if teams == nil {
		teams = []model.Team{}
	}
	writeJSON(w, http.StatusOK, teams)
}
