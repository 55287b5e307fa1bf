// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/okian/podium/internal/domain/chunk"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/priority"
)

// awardGroup collects every win of the same award name.
type awardGroup struct {
	Name   string   `json:"name"`
	Count  int      `json:"count"`
	Events []string `json:"events"`
}

// handleAwards handles GET /teams/{number}/awards requests. Awards are
// grouped by name, annotated with the owning season where the index
// resolves one, and sorted by award prestige. With ?format=chunks the
// listing is rendered as size-bounded documents.
func (h *TeamHandler) handleAwards(w http.ResponseWriter, r *http.Request, team model.Team) {
	awards := h.deps.TeamAwards(r.Context(), team.ID)
	groups := h.groupAwards(awards, team.Program.Code)

	if r.URL.Query().Get("format") != "chunks" {
		writeJSON(w, http.StatusOK, groups)
		return
	}

	docs, err := chunk.Split(awardsDocument(team, groups))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// groupAwards folds a flat award list into per-name groups ordered by
// award prestige, then win count, then name.
func (h *TeamHandler) groupAwards(awards []model.Award, programCode string) []awardGroup {
	byName := make(map[string]*awardGroup)
	order := make([]string, 0)
	for _, award := range awards {
		g, ok := byName[award.Name]
		if !ok {
			g = &awardGroup{Name: award.Name}
			byName[award.Name] = g
			order = append(order, award.Name)
		}
		g.Count++
		g.Events = append(g.Events, h.annotate(award.Event, programCode))
	}

	groups := make([]awardGroup, 0, len(order))
	for _, name := range order {
		groups = append(groups, *byName[name])
	}
	sort.SliceStable(groups, func(i, j int) bool {
		pi, pj := priority.Award(groups[i].Name), priority.Award(groups[j].Name)
		if pi != pj {
			return pi > pj
		}
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Name < groups[j].Name
	})
	return groups
}

// annotate suffixes an event with its owning season when the index
// resolves one.
func (h *TeamHandler) annotate(event model.EventRef, programCode string) string {
	season, ok := h.deps.ResolveSeason(event.ID, programCode)
	if !ok {
		return event.Name
	}
	return fmt.Sprintf("%s [%s]", event.Name, season.Name)
}

// awardsDocument renders award groups into one chunkable document.
func awardsDocument(team model.Team, groups []awardGroup) chunk.Document {
	total := 0
	fields := make([]chunk.Field, 0, len(groups))
	for _, g := range groups {
		total += g.Count
		name := g.Name
		if g.Count > 1 {
			name = fmt.Sprintf("%s x%d", g.Name, g.Count)
		}
		lines := make([]string, len(g.Events))
		for i, ev := range g.Events {
			lines[i] = ev + "\n"
		}
		fields = append(fields, chunk.Field{
			Name:  name,
			Value: chunk.JoinList(lines, chunk.FieldBudget),
		})
	}
	return chunk.Document{
		Title:       fmt.Sprintf("%s Awards", team.Number),
		Description: fmt.Sprintf("%d awards across %d categories", total, len(groups)),
		Fields:      fields,
		FooterText:  team.Name,
	}
}
