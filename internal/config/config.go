// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"time"
)

// Default lifespans for cached upstream resources.
const (
	defaultCacheTTL     = time.Hour
	closedSeasonTTL     = 365 * 24 * time.Hour
	defaultRebuildEvery = 6 * time.Hour
	defaultRebuildDelay = 10 * time.Second
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// UpstreamBaseURL is the competition-data API root.
	UpstreamBaseURL string `koanf:"upstream_base_url"`

	// UpstreamToken is the static bearer credential attached to every request.
	UpstreamToken string `koanf:"upstream_token"`

	// PageSize is the per_page parameter sent to paginated endpoints.
	PageSize int `koanf:"page_size"`

	// RetryCount is the number of additional attempts after a transport failure.
	RetryCount int `koanf:"retry_count"`

	// CacheTTL is the baseline lifespan for cached payloads.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// ClosedSeasonTTL is the lifespan for event listings of seasons that
	// have already ended; history never changes, so it is near-infinite.
	ClosedSeasonTTL time.Duration `koanf:"closed_season_ttl"`

	// RebuildInterval is how often the season index is rebuilt.
	RebuildInterval time.Duration `koanf:"rebuild_interval"`

	// RebuildDelay is the cooperative pause between uncached season
	// event fetches during a rebuild.
	RebuildDelay time.Duration `koanf:"rebuild_delay"`

	// ProgramCodes restricts the season index to these program codes.
	ProgramCodes []string `koanf:"program_codes"`

	// UpcomingLimit caps the number of events in an upcoming listing.
	UpcomingLimit int `koanf:"upcoming_limit"`

	// RedisAddr and friends configure the cache store. An empty addr
	// falls back to the in-memory store.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// MySQLDSN configures the verified-user store. Empty disables it.
	MySQLDSN string `koanf:"mysql_dsn"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9090",
		UpstreamBaseURL: "https://www.robotevents.com/api/v2",
		PageSize:        250,
		RetryCount:      4,
		CacheTTL:        defaultCacheTTL,
		ClosedSeasonTTL: closedSeasonTTL,
		RebuildInterval: defaultRebuildEvery,
		RebuildDelay:    defaultRebuildDelay,
		ProgramCodes:    []string{"V5RC", "VURC"},
		UpcomingLimit:   10,
	}
}
