// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/podium/internal/domain/model"
)

// TeamDependencies defines the interface for team operations.
type TeamDependencies interface {
	TeamByNumber(ctx context.Context, number string) (model.Team, bool)
	TeamAwards(ctx context.Context, teamID int) []model.Award
	TeamSkills(ctx context.Context, teamID int) []model.Skill
	ResolveSeason(eventID int, programCode string) (model.Season, bool)
}

// TeamHandler handles team lookups and their award and skills listings.
type TeamHandler struct {
	deps TeamDependencies
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(deps TeamDependencies) *TeamHandler {
	return &TeamHandler{deps: deps}
}

// HandleTeams handles GET /teams/{number}, /teams/{number}/awards and
// /teams/{number}/skills requests.
func (h *TeamHandler) HandleTeams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/teams/"), "/"), "/")
	if parts[0] == "" || len(parts) > 2 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	team, ok := h.deps.TeamByNumber(r.Context(), parts[0])
	if !ok {
		writeError(w, http.StatusNotFound, "team_not_found", ErrNotFound)
		return
	}
	if len(parts) == 1 {
		writeJSON(w, http.StatusOK, team)
		return
	}
	switch parts[1] {
	case "awards":
		h.handleAwards(w, r, team)
	case "skills":
		h.handleSkills(w, r, team)
	default:
		writeError(w, http.StatusNotFound, "not_found", ErrNotFound)
	}
}
