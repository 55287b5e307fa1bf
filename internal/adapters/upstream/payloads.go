package upstream

import (
	"encoding/json"
	"regexp"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

// Raw payload shapes per resource kind. Every mapping validates required
// fields at the boundary; malformed upstream shapes are dropped as
// "no data" rather than propagated.

// awardNameRE strips a parenthetical qualifier from a raw award title.
var awardNameRE = regexp.MustCompile(`^([^(]+)\s\(`)

type rawProgram struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

func (p rawProgram) toModel() model.Program {
	return model.Program{ID: p.ID, Name: p.Name, Code: p.Code}
}

type rawCoordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type rawLocation struct {
	AddressLine1 string         `json:"address_line_1"`
	AddressLine2 string         `json:"address_line_2"`
	City         string         `json:"city"`
	Region       string         `json:"region"`
	Postcode     string         `json:"postcode"`
	Country      string         `json:"country"`
	Coordinates  rawCoordinates `json:"coordinates"`
}

func (l rawLocation) toModel() model.Location {
	var lines []string
	for _, line := range []string{l.AddressLine1, l.AddressLine2} {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return model.Location{
		AddressLines: lines,
		City:         l.City,
		State:        l.Region,
		Postcode:     l.Postcode,
		Country:      l.Country,
		Latitude:     l.Coordinates.Lat,
		Longitude:    l.Coordinates.Lon,
	}
}

type rawTeam struct {
	ID           int         `json:"id"`
	Number       string      `json:"number"`
	TeamName     string      `json:"team_name"`
	Organization string      `json:"organization"`
	Location     rawLocation `json:"location"`
	Program      rawProgram  `json:"program"`
	Grade        string      `json:"grade"`
}

func (t rawTeam) valid() bool {
	return t.ID != 0 && t.Number != ""
}

func (t rawTeam) toModel() model.Team {
	return model.Team{
		ID:           t.ID,
		Number:       t.Number,
		Name:         t.TeamName,
		Organization: t.Organization,
		Country:      t.Location.Country,
		Program:      t.Program.toModel(),
		Grade:        t.Grade,
	}
}

type rawEventRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type rawAward struct {
	ID    int         `json:"id"`
	Title string      `json:"title"`
	Event rawEventRef `json:"event"`
}

func (a rawAward) valid() bool {
	return a.ID != 0 && a.Title != ""
}

func (a rawAward) toModel() model.Award {
	name := a.Title
	if m := awardNameRE.FindStringSubmatch(a.Title); m != nil {
		name = m[1]
	}
	return model.Award{
		ID:    a.ID,
		Name:  name,
		Event: model.EventRef{ID: a.Event.ID, Name: a.Event.Name},
	}
}

type rawSkill struct {
	ID       int         `json:"id"`
	Type     string      `json:"type"`
	Score    int         `json:"score"`
	Rank     int         `json:"rank"`
	Attempts int         `json:"attempts"`
	Event    rawEventRef `json:"event"`
	Season   rawEventRef `json:"season"`
}

func (s rawSkill) valid() bool {
	return s.ID != 0
}

func (s rawSkill) toModel() model.Skill {
	return model.Skill{
		ID:       s.ID,
		Type:     s.Type,
		Score:    s.Score,
		Rank:     s.Rank,
		Attempts: s.Attempts,
		Event:    model.EventRef{ID: s.Event.ID, Name: s.Event.Name},
		Season:   model.SeasonRef{ID: s.Season.ID, Name: s.Season.Name},
	}
}

type rawSeason struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Program    rawProgram `json:"program"`
	Start      string     `json:"start"`
	End        string     `json:"end"`
	YearsStart int        `json:"years_start"`
	YearsEnd   int        `json:"years_end"`
}

func (s rawSeason) valid() bool {
	return s.ID != 0 && s.Name != ""
}

func (s rawSeason) toModel() model.Season {
	return model.Season{
		ID:      s.ID,
		Name:    s.Name,
		Program: s.Program.toModel(),
		Dates: model.DateRange{
			Start: parseDate(s.Start),
			End:   parseDate(s.End),
		},
		Years: model.YearRange{Start: s.YearsStart, End: s.YearsEnd},
	}
}

type rawEvent struct {
	ID       int         `json:"id"`
	SKU      string      `json:"sku"`
	Name     string      `json:"name"`
	Start    string      `json:"start"`
	End      string      `json:"end"`
	Program  rawProgram  `json:"program"`
	Location rawLocation `json:"location"`
}

func (e rawEvent) valid() bool {
	return e.ID != 0
}

func (e rawEvent) toModel(norm *Normalizer) model.Event {
	lat := e.Location.Coordinates.Lat
	lon := e.Location.Coordinates.Lon
	return model.Event{
		ID:       e.ID,
		SKU:      e.SKU,
		Name:     e.Name,
		StartMS:  norm.EpochMS(e.Start, lat, lon),
		EndMS:    norm.EpochMS(e.End, lat, lon),
		Program:  e.Program.toModel(),
		Location: e.Location.toModel(),
	}
}

type rawSkillsRanking struct {
	Rank int `json:"rank"`
	Team struct {
		ID int `json:"id"`
	} `json:"team"`
	Scores struct {
		Score       int `json:"score"`
		Programming int `json:"programming"`
		Driver      int `json:"driver"`
	} `json:"scores"`
}

func (r rawSkillsRanking) valid() bool {
	return r.Team.ID != 0 && r.Rank != 0
}

func (r rawSkillsRanking) toModel(entries int) model.SkillsRanking {
	return model.SkillsRanking{
		Rank:        r.Rank,
		Entries:     entries,
		TeamID:      r.Team.ID,
		Driver:      r.Scores.Driver,
		Programming: r.Scores.Programming,
		Combined:    r.Scores.Score,
	}
}

// parseDate accepts the upstream timestamp flavors: full RFC3339 or a
// bare date.
func parseDate(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t
	}
	return time.Time{}
}

// decodeAll decodes each raw item through parse, dropping invalid ones.
func decodeAll[R any, M any](items []json.RawMessage, valid func(R) bool, toModel func(R) M) []M {
	out := make([]M, 0, len(items))
	for _, item := range items {
		var r R
		if err := json.Unmarshal(item, &r); err != nil {
			continue
		}
		if !valid(r) {
			continue
		}
		out = append(out, toModel(r))
	}
	return out
}
