// Package model contains domain models passed between layers.
//
// All values here are read-only snapshots reconstructed fresh on every
// cache miss; nothing is mutated in place.
package model

import "time"

// Program identifies a competition program.
type Program struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// Team is an immutable snapshot of a registered team as of fetch time.
// Multiple teams may share a number across programs and grades.
type Team struct {
	ID           int     `json:"team_id"`
	Number       string  `json:"team_number"`
	Name         string  `json:"team_name"`
	Organization string  `json:"team_organization"`
	Country      string  `json:"team_country"`
	Program      Program `json:"team_program"`
	Grade        string  `json:"team_grade"`
}

// EventRef is the minimal identity of an event attached to other records.
type EventRef struct {
	ID   int    `json:"event_id"`
	Name string `json:"event_name"`
}

// SeasonRef is the minimal identity of a season attached to other records.
type SeasonRef struct {
	ID   int    `json:"season_id"`
	Name string `json:"season_name"`
}

// Award is a single award won by a team at one event.
type Award struct {
	ID    int      `json:"award_id"`
	Name  string   `json:"award_name"`
	Event EventRef `json:"award_event"`
}

// Skill is one skills run record for a team.
type Skill struct {
	ID       int       `json:"skill_id"`
	Type     string    `json:"skill_type"`
	Score    int       `json:"skill_score"`
	Rank     int       `json:"skill_rank"`
	Attempts int       `json:"skill_attempts"`
	Event    EventRef  `json:"skill_event"`
	Season   SeasonRef `json:"skill_season"`
}

// Ranked reports whether the record counts toward season aggregation.
// A zero score or a rank below 1 means the team was not ranked that season.
func (s Skill) Ranked() bool {
	return s.Score != 0 && s.Rank >= 1
}

// DateRange bounds a season or event in time.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// YearRange is the pair of years a season spans.
type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Season is immutable reference data refreshed on a fixed schedule.
type Season struct {
	ID      int       `json:"season_id"`
	Name    string    `json:"season_name"`
	Program Program   `json:"season_program"`
	Dates   DateRange `json:"season_date_range"`
	Years   YearRange `json:"season_year_range"`
}

// Closed reports whether the season ended before now; closed seasons are
// history and their event listings are cached near-indefinitely.
func (s Season) Closed(now time.Time) bool {
	return !s.Dates.End.IsZero() && s.Dates.End.Before(now)
}

// Location is an event venue address with coordinates.
type Location struct {
	AddressLines []string `json:"address_lines"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	Postcode     string   `json:"postcode"`
	Country      string   `json:"country"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
}

// Event is a competition event with dates normalized to UTC-equivalent
// epoch milliseconds, corrected by the venue's timezone offset.
type Event struct {
	ID       int      `json:"event_id"`
	SKU      string   `json:"event_sku"`
	Name     string   `json:"event_name"`
	StartMS  int64    `json:"event_start_ms"`
	EndMS    int64    `json:"event_end_ms"`
	Program  Program  `json:"event_program"`
	Location Location `json:"event_location"`
}

// SkillsRanking is one row of a season's grade-level skills standing.
type SkillsRanking struct {
	Rank        int `json:"rank"`
	Entries     int `json:"entries"`
	TeamID      int `json:"team_id"`
	Driver      int `json:"driver_score"`
	Programming int `json:"programming_score"`
	Combined    int `json:"combined_score"`
}

// VerifiedUser is a chat-platform user bound to a team by verification.
type VerifiedUser struct {
	GuildID    string `json:"guild_id"`
	UserID     string `json:"user_id"`
	UserTag    string `json:"user_tag"`
	TeamID     int    `json:"team_id"`
	TeamNumber string `json:"team_number"`
}

// GuildTeam groups a guild's verified users under their team.
type GuildTeam struct {
	TeamID     int            `json:"team_id"`
	TeamNumber string         `json:"team_number"`
	Users      []VerifiedUser `json:"users"`
}
