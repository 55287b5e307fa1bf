// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/podium/internal/adapters/cache"
	"github.com/okian/podium/internal/adapters/store"
	"github.com/okian/podium/internal/adapters/upstream"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/index"
	"github.com/okian/podium/internal/refresh"
	"github.com/okian/podium/pkg/logger"
)

// UserStore is the verified-user persistence surface the service needs.
type UserStore interface {
	UsersByGuild(ctx context.Context, guildID string) ([]model.VerifiedUser, error)
	TeamsByGuild(ctx context.Context, guildID string) ([]model.GuildTeam, error)
	Upsert(ctx context.Context, u model.VerifiedUser) error
	Delete(ctx context.Context, guildID, userID string) error
	Close() error
}

// Service wires the gateway, index, refresh worker, and user store, and
// implements the API dependency bundle.
type Service struct {
	mu  sync.RWMutex
	cfg *config.Config

	cache   cache.Store
	gateway *upstream.Gateway
	index   *index.Index
	worker  *refresh.Worker
	users   UserStore

	started   bool
	startedAt time.Time
	logger    logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCacheStore replaces the cache store chosen from configuration.
func WithCacheStore(c cache.Store) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithUserStore replaces the verified-user store chosen from
// configuration.
func WithUserStore(u UserStore) Option {
	return func(s *Service) {
		if u != nil {
			s.users = u
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service over the given configuration.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start wires and launches the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	if s.cache == nil {
		if s.cfg.RedisAddr != "" {
			s.cache = cache.NewRedisStore(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB)
			s.logger.Info(ctx, "using redis cache", logger.String("addr", s.cfg.RedisAddr))
		} else {
			s.cache = cache.NewMemoryStore()
			s.logger.Info(ctx, "using in-memory cache")
		}
	}

	fetcher := upstream.NewFetcher(s.cfg.UpstreamToken,
		upstream.WithRetryCount(s.cfg.RetryCount))
	client := upstream.NewClient(fetcher, s.cfg.UpstreamBaseURL,
		upstream.WithPageSize(s.cfg.PageSize))

	gatewayOpts := []upstream.Option{
		upstream.WithLifespan(s.cfg.CacheTTL),
		upstream.WithClosedSeasonLifespan(s.cfg.ClosedSeasonTTL),
	}
	norm, err := upstream.NewNormalizer()
	if err != nil {
		// events fall back to naive UTC interpretation
		s.logger.Warn(ctx, "timezone finder unavailable", logger.Error(err))
	} else {
		gatewayOpts = append(gatewayOpts, upstream.WithNormalizer(norm))
	}
	s.gateway = upstream.NewGateway(s.cache, client, gatewayOpts...)

	s.index = index.New(s.gateway,
		index.WithPrograms(s.cfg.ProgramCodes),
		index.WithFetchDelay(s.cfg.RebuildDelay))
	s.worker = refresh.NewWorker(s.index,
		refresh.WithInterval(s.cfg.RebuildInterval),
		refresh.WithWarmer(s.gateway))
	s.worker.Start(ctx)

	if s.users == nil && s.cfg.MySQLDSN != "" {
		users, err := store.NewMySQL(ctx, s.cfg.MySQLDSN)
		if err != nil {
			return err
		}
		s.users = users
		s.logger.Info(ctx, "verified-user store connected")
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "service started",
		logger.String("upstream", s.cfg.UpstreamBaseURL),
		logger.Int("page_size", s.cfg.PageSize),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping service...")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.users != nil {
		_ = s.users.Close()
	}
	if closer, ok := s.cache.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(ctx, "service stopped")
}

// TeamByNumber resolves a team number to its single best record.
func (s *Service) TeamByNumber(ctx context.Context, number string) (model.Team, bool) {
	return s.gateway.TeamByNumber(ctx, number)
}

// TeamAwards lists a team's awards.
func (s *Service) TeamAwards(ctx context.Context, teamID int) []model.Award {
	return s.gateway.TeamAwards(ctx, teamID)
}

// TeamSkills lists a team's skills runs.
func (s *Service) TeamSkills(ctx context.Context, teamID int) []model.Skill {
	return s.gateway.TeamSkills(ctx, teamID)
}

// EventTeams lists an event's registered teams.
func (s *Service) EventTeams(ctx context.Context, eventID int) []model.Team {
	return s.gateway.EventTeams(ctx, eventID)
}

// SeasonList lists the seasons the index currently knows.
func (s *Service) SeasonList() []model.Season {
	return s.index.Seasons()
}

// ResolveSeason maps an event identifier to its owning season.
func (s *Service) ResolveSeason(eventID int, programCode string) (model.Season, bool) {
	return s.index.Resolve(eventID, programCode)
}

// isStarted reports whether Start has completed.
func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// GuildRoster groups a guild's verified users under their teams.
func (s *Service) GuildRoster(ctx context.Context, guildID string) ([]model.GuildTeam, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	if s.users == nil {
		return nil, ErrUsersDisabled
	}
	return s.users.TeamsByGuild(ctx, guildID)
}

// GuildUpcoming lists upcoming events for a guild's verified teams,
// soonest first.
func (s *Service) GuildUpcoming(ctx context.Context, guildID string) ([]model.Event, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	if s.users == nil {
		return nil, ErrUsersDisabled
	}
	users, err := s.users.UsersByGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{}, len(users))
	teamIDs := make([]int, 0, len(users))
	for _, u := range users {
		if _, ok := seen[u.TeamID]; ok {
			continue
		}
		seen[u.TeamID] = struct{}{}
		teamIDs = append(teamIDs, u.TeamID)
	}
	if len(teamIDs) == 0 {
		return nil, nil
	}

	events := s.gateway.UpcomingEvents(ctx, guildID, teamIDs, time.Now())
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartMS < events[j].StartMS
	})
	return events, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":    s.started,
		"programs":   s.cfg.ProgramCodes,
		"page_size":  s.cfg.PageSize,
		"user_store": s.users != nil,
	}
	if s.started {
		stats["uptime_seconds"] = int(time.Since(s.startedAt).Seconds())
	}
	if s.index != nil {
		stats["index_seasons"] = s.index.Len()
		if built := s.index.BuiltAt(); !built.IsZero() {
			stats["index_built_at"] = built.UTC().Format(time.RFC3339)
		}
	}
	return stats
}
