// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/okian/podium/internal/domain/model"
)

// seasonSkills is one season's best skills standing for a team.
type seasonSkills struct {
	Season      model.SeasonRef `json:"season"`
	Driver      int             `json:"driver"`
	Programming int             `json:"programming"`
	Combined    int             `json:"combined"`
	Attempts    int             `json:"attempts"`
}

// handleSkills handles GET /teams/{number}/skills requests, summarizing
// the team's skills runs per season. Unranked runs (zero score or rank
// below 1) are excluded from the summary.
func (h *TeamHandler) handleSkills(w http.ResponseWriter, r *http.Request, team model.Team) {
	skills := h.deps.TeamSkills(r.Context(), team.ID)
	writeJSON(w, http.StatusOK, summarizeSkills(skills))
}

// summarizeSkills folds ranked skills runs into per-season summaries,
// newest season first.
func summarizeSkills(skills []model.Skill) []seasonSkills {
	bySeason := make(map[int]*seasonSkills)
	for _, s := range skills {
		if !s.Ranked() {
			continue
		}
		sum, ok := bySeason[s.Season.ID]
		if !ok {
			sum = &seasonSkills{Season: s.Season}
			bySeason[s.Season.ID] = sum
		}
		switch strings.ToLower(s.Type) {
		case "driver":
			if s.Score > sum.Driver {
				sum.Driver = s.Score
			}
		case "programming":
			if s.Score > sum.Programming {
				sum.Programming = s.Score
			}
		}
		sum.Attempts += s.Attempts
	}

	out := make([]seasonSkills, 0, len(bySeason))
	for _, sum := range bySeason {
		sum.Combined = sum.Driver + sum.Programming
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Season.ID > out[j].Season.ID
	})
	return out
}
