package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// PlatformToRegion maps platform routing values to their regional routing
// cluster. Platform values are used by tft-league-v1; regional values are
// used by tft-match-v1.
var PlatformToRegion = map[string]string{
	"na1":  "americas",
	"br1":  "americas",
	"la1":  "americas",
	"la2":  "americas",
	"euw1": "europe",
	"eun1": "europe",
	"tr1":  "europe",
	"ru":   "europe",
	"kr":   "asia",
	"jp1":  "asia",
	"oc1":  "sea",
	"ph2":  "sea",
	"sg2":  "sea",
	"th2":  "sea",
	"tw2":  "sea",
	"vn2":  "sea",
}

// ValidLeagues are the apex league tiers served by the league endpoint.
var ValidLeagues = map[string]bool{
	"challenger":  true,
	"grandmaster": true,
	"master":      true,
}

// Config holds all application configuration
type Config struct {
	// Riot API
	RiotAPIKey  string        `envconfig:"RIOT_API_KEY" required:"true"`
	RiotTimeout time.Duration `envconfig:"RIOT_TIMEOUT" default:"10s"`

	// Routing
	Platform string `envconfig:"PLATFORM" default:"na1"`

	// Collection settings
	Leagues          []string `envconfig:"LEAGUES" default:"challenger"`
	Queue            string   `envconfig:"QUEUE" default:"RANKED_TFT"`
	MatchesPerPlayer int      `envconfig:"MATCHES_PER_PLAYER" default:"50"`

	// Time window (optional). Unix timestamps in seconds. When set, only
	// matches within this window are collected. Useful for patch-specific
	// pulls.
	StartTime int64 `envconfig:"START_TIME" default:"0"`
	EndTime   int64 `envconfig:"END_TIME" default:"0"`

	// Rate limiting
	RequestDelay time.Duration `envconfig:"REQUEST_DELAY" default:"1.2s"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"tft_data"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"tft_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis (optional fast-path for known-match-id checks)
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Scheduler
	EnableScheduler bool   `envconfig:"ENABLE_SCHEDULER" default:"false"`
	CollectCron     string `envconfig:"COLLECT_CRON" default:"0 4 * * *"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables.
// It first attempts to load from a .env file if one exists.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates and normalizes the configuration
func (c *Config) Validate() error {
	if c.RiotAPIKey == "" {
		return fmt.Errorf("RIOT_API_KEY is required")
	}

	c.Platform = strings.ToLower(c.Platform)
	if _, ok := PlatformToRegion[c.Platform]; !ok {
		return fmt.Errorf("unknown PLATFORM %q, valid options: %s",
			c.Platform, strings.Join(sortedKeys(PlatformToRegion), ", "))
	}

	if len(c.Leagues) == 0 {
		return fmt.Errorf("LEAGUES must name at least one league tier")
	}
	for i, league := range c.Leagues {
		league = strings.ToLower(strings.TrimSpace(league))
		c.Leagues[i] = league
		if !ValidLeagues[league] {
			return fmt.Errorf("unknown league %q in LEAGUES, valid options: challenger, grandmaster, master", league)
		}
	}

	if c.MatchesPerPlayer < 1 || c.MatchesPerPlayer > 200 {
		return fmt.Errorf("MATCHES_PER_PLAYER must be between 1 and 200")
	}

	if c.StartTime != 0 && c.EndTime != 0 && c.StartTime >= c.EndTime {
		return fmt.Errorf("START_TIME must be earlier than END_TIME")
	}

	if c.RequestDelay < 0 {
		return fmt.Errorf("REQUEST_DELAY must not be negative")
	}

	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	return nil
}

// Region returns the regional routing cluster derived from the platform.
func (c *Config) Region() string {
	return PlatformToRegion[c.Platform]
}

// PlatformBaseURL returns the platform-scoped API host (tft-league-v1).
func (c *Config) PlatformBaseURL() string {
	return fmt.Sprintf("https://%s.api.riotgames.com", c.Platform)
}

// RegionBaseURL returns the region-scoped API host (tft-match-v1).
func (c *Config) RegionBaseURL() string {
	return fmt.Sprintf("https://%s.api.riotgames.com", c.Region())
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MustLoad loads configuration or exits on error.
// Use this in main() where we want to fail fast, before any network activity.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
