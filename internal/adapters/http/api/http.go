// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/podium/internal/domain/model"
)

// Dependencies bundles everything the HTTP handlers call. Using an
// interface bundle keeps the handler layer loosely coupled to the
// service wiring behind it.
type Dependencies interface {
	TeamByNumber(ctx context.Context, number string) (model.Team, bool)
	TeamAwards(ctx context.Context, teamID int) []model.Award
	TeamSkills(ctx context.Context, teamID int) []model.Skill
	EventTeams(ctx context.Context, eventID int) []model.Team
	SeasonList() []model.Season
	ResolveSeason(eventID int, programCode string) (model.Season, bool)
	GuildRoster(ctx context.Context, guildID string) ([]model.GuildTeam, error)
	GuildUpcoming(ctx context.Context, guildID string) ([]model.Event, error)
}

// Server wires HTTP routes for the competition-data API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	teamHandler    *TeamHandler
	eventsHandler  *EventsHandler
	seasonsHandler *SeasonsHandler
	guildsHandler  *GuildsHandler
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithUpcomingLimit caps the events listed per guild upcoming response.
func WithUpcomingLimit(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.guildsHandler.limit = n
		}
	}
}

// NewServer creates an API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		teamHandler:    NewTeamHandler(deps),
		eventsHandler:  NewEventsHandler(deps),
		seasonsHandler: NewSeasonsHandler(deps),
		guildsHandler:  NewGuildsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux. Each route is wrapped with
// the request-id and metrics middleware.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, RequestIDMiddleware(MetricsMiddleware(h, endpoint)))
	}
	route("/healthz", "healthz", s.healthHandler.HandleHealth)
	route("/stats", "stats", s.statsHandler.HandleStats)
	route("/teams/", "teams", s.teamHandler.HandleTeams)
	route("/events/", "events", s.eventsHandler.HandleEventTeams)
	route("/seasons", "seasons", s.seasonsHandler.HandleSeasons)
	route("/seasons/resolve", "seasons_resolve", s.seasonsHandler.HandleResolve)
	route("/guilds/", "guilds", s.guildsHandler.HandleGuilds)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
