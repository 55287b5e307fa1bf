// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"

	"github.com/okian/podium/internal/domain/model"
)

// SeasonsDependencies defines the interface for season operations.
type SeasonsDependencies interface {
	SeasonList() []model.Season
	ResolveSeason(eventID int, programCode string) (model.Season, bool)
}

// SeasonsHandler handles season listing and event resolution requests.
type SeasonsHandler struct {
	deps SeasonsDependencies
}

// NewSeasonsHandler creates a new seasons handler.
func NewSeasonsHandler(deps SeasonsDependencies) *SeasonsHandler {
	return &SeasonsHandler{deps: deps}
}

// HandleSeasons handles GET /seasons requests, listing the seasons the
// index currently knows.
func (h *SeasonsHandler) HandleSeasons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	seasons := h.deps.SeasonList()
	if seasons == nil {
		seasons = []model.Season{}
	}
	writeJSON(w, http.StatusOK, seasons)
}

// HandleResolve handles GET /seasons/resolve?event=&program= requests,
// mapping an event identifier to its owning season.
func (h *SeasonsHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	eventID, err := strconv.Atoi(r.URL.Query().Get("event"))
	if err != nil || eventID <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	season, ok := h.deps.ResolveSeason(eventID, r.URL.Query().Get("program"))
	if !ok {
		writeError(w, http.StatusNotFound, "season_not_found", ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, season)
}
