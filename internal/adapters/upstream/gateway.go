// Package upstream is the cache-backed, retrying, paginating access
// layer over the external competition-data API.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/podium/internal/adapters/cache"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/priority"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Resource kinds, used for cache key namespaces and metric labels.
const (
	resTeamByNumber = "team_by_number"
	resTeamAwards   = "team_awards"
	resTeamSkills   = "team_skills"
	resEventTeams   = "event_teams"
	resGuildEvents  = "guild_events"
	resSeasons      = "seasons"
	resSeasonEvents = "season_events"
	resSeasonSkills = "season_skills"
)

// Default cache lifespans.
const (
	defaultLifespan = time.Hour
	// closedSeasonLifespan keeps historical season listings essentially
	// forever; a finished season's events never change.
	closedSeasonLifespan = 365 * 24 * time.Hour
)

// identRE accepts team identifiers: letters and digits only. Anything
// else short-circuits to "not found" without a network call.
var identRE = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Gateway is the public data-access surface. Every operation consults
// the cache first and populates it on miss; results are domain values or
// explicit absence, never a transport error.
type Gateway struct {
	store  cache.Store
	client *Client
	norm   *Normalizer
	group  singleflight.Group
	logger logger.Logger

	lifespan       time.Duration
	closedLifespan time.Duration
	now            func() time.Time
}

// Option applies a configuration option to the Gateway.
type Option func(*Gateway)

// WithLifespan sets the baseline cache lifespan.
func WithLifespan(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.lifespan = d
		}
	}
}

// WithClosedSeasonLifespan sets the lifespan for closed-season listings.
func WithClosedSeasonLifespan(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.closedLifespan = d
		}
	}
}

// WithNormalizer sets the event timestamp normalizer.
func WithNormalizer(n *Normalizer) Option {
	return func(g *Gateway) {
		g.norm = n
	}
}

// WithClock replaces the time source used for lifespan policy.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGateway creates a Gateway over the given cache store and client.
func NewGateway(store cache.Store, client *Client, opts ...Option) *Gateway {
	g := &Gateway{
		store:          store,
		client:         client,
		logger:         logger.Get().Named("gateway"),
		lifespan:       defaultLifespan,
		closedLifespan: closedSeasonLifespan,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// TeamByNumber resolves a team number to its single best record. Numbers
// are upper-cased; when several programs or grades share a number, the
// highest grade priority wins.
func (g *Gateway) TeamByNumber(ctx context.Context, number string) (model.Team, bool) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if !identRE.MatchString(number) {
		return model.Team{}, false
	}
	key := cache.Key(resTeamByNumber, number)
	return fetchOne(ctx, g, resTeamByNumber, key, g.lifespan, func(ctx context.Context) (model.Team, bool) {
		items, ok := g.client.List(ctx, "teams", url.Values{"number[]": {number}})
		if !ok {
			return model.Team{}, false
		}
		teams := decodeAll(items, rawTeam.valid, rawTeam.toModel)
		if len(teams) == 0 {
			return model.Team{}, false
		}
		sort.SliceStable(teams, func(i, j int) bool {
			return priority.Grade(teams[i].Grade) < priority.Grade(teams[j].Grade)
		})
		return teams[len(teams)-1], true
	})
}

// TeamAwards lists every award a team has won.
func (g *Gateway) TeamAwards(ctx context.Context, teamID int) []model.Award {
	key := cache.Key(resTeamAwards, strconv.Itoa(teamID))
	awards, _ := fetchList(ctx, g, resTeamAwards, key, g.lifespan, func(ctx context.Context) ([]model.Award, bool) {
		items, ok := g.client.List(ctx, fmt.Sprintf("teams/%d/awards", teamID), nil)
		if !ok {
			return nil, false
		}
		return decodeAll(items, rawAward.valid, rawAward.toModel), true
	})
	return awards
}

// TeamSkills lists every skills run recorded for a team.
func (g *Gateway) TeamSkills(ctx context.Context, teamID int) []model.Skill {
	key := cache.Key(resTeamSkills, strconv.Itoa(teamID))
	skills, _ := fetchList(ctx, g, resTeamSkills, key, g.lifespan, func(ctx context.Context) ([]model.Skill, bool) {
		items, ok := g.client.List(ctx, fmt.Sprintf("teams/%d/skills", teamID), nil)
		if !ok {
			return nil, false
		}
		return decodeAll(items, rawSkill.valid, rawSkill.toModel), true
	})
	return skills
}

// EventTeams lists the teams registered at an event.
func (g *Gateway) EventTeams(ctx context.Context, eventID int) []model.Team {
	key := cache.Key(resEventTeams, strconv.Itoa(eventID))
	teams, _ := fetchList(ctx, g, resEventTeams, key, g.lifespan, func(ctx context.Context) ([]model.Team, bool) {
		items, ok := g.client.List(ctx, fmt.Sprintf("events/%d/teams", eventID), nil)
		if !ok {
			return nil, false
		}
		return decodeAll(items, rawTeam.valid, rawTeam.toModel), true
	})
	return teams
}

// UpcomingEvents lists events for a set of teams starting after the
// given instant, cached per guild.
func (g *Gateway) UpcomingEvents(ctx context.Context, guildID string, teamIDs []int, after time.Time) []model.Event {
	if len(teamIDs) == 0 {
		return nil
	}
	key := cache.Key(resGuildEvents, guildID)
	events, _ := fetchList(ctx, g, resGuildEvents, key, g.lifespan, func(ctx context.Context) ([]model.Event, bool) {
		q := url.Values{}
		for _, id := range teamIDs {
			q.Add("team[]", strconv.Itoa(id))
		}
		q.Set("start", after.UTC().Format(time.RFC3339))
		items, ok := g.client.List(ctx, "events", q)
		if !ok {
			return nil, false
		}
		return decodeAll(items, rawEvent.valid, func(r rawEvent) model.Event {
			return r.toModel(g.norm)
		}), true
	})
	return events
}

// Seasons lists all seasons known upstream.
func (g *Gateway) Seasons(ctx context.Context) []model.Season {
	key := cache.Key(resSeasons)
	seasons, _ := fetchList(ctx, g, resSeasons, key, g.lifespan, func(ctx context.Context) ([]model.Season, bool) {
		items, ok := g.client.List(ctx, "seasons", nil)
		if !ok {
			return nil, false
		}
		return decodeAll(items, rawSeason.valid, rawSeason.toModel), true
	})
	return seasons
}

// SeasonEvents lists every event of a season. Closed seasons are
// history: their listings are cached with the near-infinite lifespan.
func (g *Gateway) SeasonEvents(ctx context.Context, season model.Season) []model.Event {
	key := cache.Key(resSeasonEvents, strconv.Itoa(season.ID))
	lifespan := g.lifespan
	if season.Closed(g.now()) {
		lifespan = g.closedLifespan
	}
	events, _ := fetchList(ctx, g, resSeasonEvents, key, lifespan, func(ctx context.Context) ([]model.Event, bool) {
		items, ok := g.client.List(ctx, fmt.Sprintf("seasons/%d/events", season.ID), nil)
		if !ok {
			return nil, false
		}
		return decodeAll(items, rawEvent.valid, func(r rawEvent) model.Event {
			return r.toModel(g.norm)
		}), true
	})
	return events
}

// IsSeasonEventsCached reports whether a season's event listing is
// already cached. The index rebuild uses this to decide whether to pause
// for the upstream rate limit before the next fetch.
func (g *Gateway) IsSeasonEventsCached(ctx context.Context, seasonID int) bool {
	return g.store.Has(ctx, cache.Key(resSeasonEvents, strconv.Itoa(seasonID)))
}

// SeasonSkills returns a season's grade-level skills standings. The
// endpoint is not paginated; an error-object reply (a "message" field in
// place of a list) is "no data", not a failure.
func (g *Gateway) SeasonSkills(ctx context.Context, seasonID int, grade string) []model.SkillsRanking {
	key := cache.Key(resSeasonSkills, strconv.Itoa(seasonID), grade)
	rankings, _ := fetchList(ctx, g, resSeasonSkills, key, g.lifespan, func(ctx context.Context) ([]model.SkillsRanking, bool) {
		resp, ok := g.client.Get(ctx, fmt.Sprintf("seasons/%d/skills", seasonID),
			url.Values{"grade_level": {grade}})
		if !ok {
			return nil, false
		}
		body := strings.TrimSpace(string(resp.Body))
		if !strings.HasPrefix(body, "[") {
			var errShape struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(resp.Body, &errShape); err == nil && errShape.Message != "" {
				g.logger.Debug(ctx, "season skills unavailable",
					logger.Int("season", seasonID), logger.String("grade", grade))
				return nil, true
			}
			return nil, resp.OK()
		}
		var raws []rawSkillsRanking
		if err := json.Unmarshal(resp.Body, &raws); err != nil {
			return nil, true
		}
		out := make([]model.SkillsRanking, 0, len(raws))
		for _, r := range raws {
			if !r.valid() {
				continue
			}
			out = append(out, r.toModel(len(raws)))
		}
		return out, true
	})
	return rankings
}

// peek reads the cache without recording metrics; the singleflight
// leader uses it to re-check after winning the flight.
func (g *Gateway) peek(ctx context.Context, key string, out any) bool {
	e, ok := g.store.Get(ctx, key)
	if !ok {
		return false
	}
	return e.Decode(out) == nil
}

// cached reads the cache and records hit/miss for the resource kind.
func (g *Gateway) cached(ctx context.Context, resource, key string, out any) bool {
	if g.peek(ctx, key, out) {
		metrics.RecordCacheHit(resource)
		return true
	}
	metrics.RecordCacheMiss(resource)
	return false
}

// fetchOne resolves a single-value resource through the cache, collapsing
// concurrent identical lookups into one upstream flight. Absent results
// are not cached.
func fetchOne[T any](ctx context.Context, g *Gateway, resource, key string, lifespan time.Duration, fetch func(context.Context) (T, bool)) (T, bool) {
	var out T
	if g.cached(ctx, resource, key, &out) {
		return out, true
	}
	v, err, _ := g.group.Do(key, func() (any, error) {
		var inner T
		if g.peek(ctx, key, &inner) {
			return inner, nil
		}
		got, ok := fetch(ctx)
		if !ok {
			return nil, ErrNoData
		}
		g.store.Set(ctx, key, got, lifespan)
		return got, nil
	})
	if err != nil {
		return out, false
	}
	got, ok := v.(T)
	if !ok {
		return out, false
	}
	return got, true
}

// fetchList is fetchOne for sequence resources; empty sequences are a
// valid result and are cached like any other. A fetch that reports
// failure is passed through uncached so a transient outage cannot pin an
// empty listing for the full lifespan.
func fetchList[T any](ctx context.Context, g *Gateway, resource, key string, lifespan time.Duration, fetch func(context.Context) ([]T, bool)) ([]T, bool) {
	return fetchOne(ctx, g, resource, key, lifespan, fetch)
}
