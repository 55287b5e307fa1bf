// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/podium/internal/adapters/store"
	"github.com/okian/podium/internal/domain/model"
)

// defaultUpcomingLimit caps the events listed per upcoming response.
const defaultUpcomingLimit = 10

// GuildsDependencies defines the interface for guild operations.
type GuildsDependencies interface {
	GuildRoster(ctx context.Context, guildID string) ([]model.GuildTeam, error)
	GuildUpcoming(ctx context.Context, guildID string) ([]model.Event, error)
}

// GuildsHandler handles guild roster and upcoming-event requests.
type GuildsHandler struct {
	deps  GuildsDependencies
	limit int
}

// NewGuildsHandler creates a new guilds handler.
func NewGuildsHandler(deps GuildsDependencies) *GuildsHandler {
	return &GuildsHandler{deps: deps, limit: defaultUpcomingLimit}
}

// upcomingResponse caps the event list; More counts what was cut.
type upcomingResponse struct {
	Events []model.Event `json:"events"`
	More   int           `json:"more,omitempty"`
}

// HandleGuilds handles GET /guilds/{id}/roster and /guilds/{id}/upcoming
// requests.
func (h *GuildsHandler) HandleGuilds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/guilds/"), "/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch parts[1] {
	case "roster":
		h.handleRoster(w, r, parts[0])
	case "upcoming":
		h.handleUpcoming(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not_found", ErrNotFound)
	}
}

func (h *GuildsHandler) handleRoster(w http.ResponseWriter, r *http.Request, guildID string) {
	teams, err := h.deps.GuildRoster(r.Context(), guildID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "guild_not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if teams == nil {
		teams = []model.GuildTeam{}
	}
	writeJSON(w, http.StatusOK, teams)
}

func (h *GuildsHandler) handleUpcoming(w http.ResponseWriter, r *http.Request, guildID string) {
	events, err := h.deps.GuildUpcoming(r.Context(), guildID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	resp := upcomingResponse{Events: events}
	if len(events) > h.limit {
		resp.Events = events[:h.limit]
		resp.More = len(events) - h.limit
	}
	if resp.Events == nil {
		resp.Events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, resp)
}
