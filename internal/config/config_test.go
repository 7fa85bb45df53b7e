package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("RIOT_API_KEY", "RGAPI-test-key")
	t.Setenv("DATABASE_PASSWORD", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "na1", cfg.Platform)
	assert.Equal(t, "americas", cfg.Region())
	assert.Equal(t, []string{"challenger"}, cfg.Leagues)
	assert.Equal(t, "RANKED_TFT", cfg.Queue)
	assert.Equal(t, 50, cfg.MatchesPerPlayer)
	assert.Equal(t, 1200*time.Millisecond, cfg.RequestDelay)
	assert.Zero(t, cfg.StartTime)
	assert.Zero(t, cfg.EndTime)
	assert.Equal(t, "0 4 * * *", cfg.CollectCron)
}

func TestLoad_DerivedURLs(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PLATFORM", "euw1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "europe", cfg.Region())
	assert.Equal(t, "https://euw1.api.riotgames.com", cfg.PlatformBaseURL())
	assert.Equal(t, "https://europe.api.riotgames.com", cfg.RegionBaseURL())
}

func TestLoad_PlatformCaseInsensitive(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PLATFORM", "KR")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "kr", cfg.Platform)
	assert.Equal(t, "asia", cfg.Region())
}

func TestLoad_LeaguesNormalized(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LEAGUES", "Challenger, GRANDMASTER")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"challenger", "grandmaster"}, cfg.Leagues)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("RIOT_API_KEY", "")
	t.Setenv("DATABASE_PASSWORD", "secret")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_UnknownPlatform(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PLATFORM", "moon1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown PLATFORM")
}

func TestLoad_UnknownLeague(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LEAGUES", "challenger,diamond")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown league")
}

func TestLoad_MatchesPerPlayerBounds(t *testing.T) {
	setRequiredEnv(t)

	t.Setenv("MATCHES_PER_PLAYER", "0")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("MATCHES_PER_PLAYER", "201")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("MATCHES_PER_PLAYER", "200")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.MatchesPerPlayer)
}

func TestLoad_InvertedTimeWindow(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("START_TIME", "2000")
	t.Setenv("END_TIME", "1000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "START_TIME")
}

func TestLoad_TimeWindow(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("START_TIME", "1737504000")
	t.Setenv("END_TIME", "1740268800")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(1737504000), cfg.StartTime)
	assert.Equal(t, int64(1740268800), cfg.EndTime)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{
		DatabaseHost:     "db.internal",
		DatabasePort:     5433,
		DatabaseUser:     "tft_user",
		DatabasePassword: "secret",
		DatabaseName:     "tft_data",
		DatabaseSSLMode:  "require",
	}
	assert.Equal(t,
		"host=db.internal port=5433 user=tft_user password=secret dbname=tft_data sslmode=require",
		cfg.DatabaseDSN())
}

func TestRedisAddr(t *testing.T) {
	cfg := &Config{RedisHost: "cache.internal", RedisPort: 6380}
	assert.Equal(t, "cache.internal:6380", cfg.RedisAddr())
}
