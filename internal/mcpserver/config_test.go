package mcpserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// clearOASGUARDEnv clears all OASGUARD_* env vars to isolate tests from the
// ambient environment.
func clearOASGUARDEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OASGUARD_CACHE_ENABLED", "OASGUARD_CACHE_MAX_SIZE",
		"OASGUARD_CACHE_FILE_TTL", "OASGUARD_CACHE_URL_TTL",
		"OASGUARD_CACHE_CONTENT_TTL", "OASGUARD_CACHE_SWEEP_INTERVAL",
		"OASGUARD_ROUTE_LIMIT", "OASGUARD_MAX_LIMIT",
		"OASGUARD_MAX_INLINE_SIZE", "OASGUARD_ALLOW_PRIVATE_IPS",
		"OASGUARD_FETCH_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearOASGUARDEnv(t)

	c := loadConfig()

	assert.True(t, c.CacheEnabled)
	assert.Equal(t, 10, c.CacheMaxSize)
	assert.Equal(t, 15*time.Minute, c.CacheFileTTL)
	assert.Equal(t, 5*time.Minute, c.CacheURLTTL)
	assert.Equal(t, 15*time.Minute, c.CacheContentTTL)
	assert.Equal(t, 60*time.Second, c.CacheSweepInterval)
	assert.Equal(t, 100, c.RouteLimit)
	assert.Equal(t, 1000, c.MaxLimit)
	assert.Equal(t, int64(10*1024*1024), c.MaxInlineSize)
	assert.False(t, c.AllowPrivateIPs)
	assert.Equal(t, 30*time.Second, c.FetchTimeout)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearOASGUARDEnv(t)
	t.Setenv("OASGUARD_CACHE_ENABLED", "false")
	t.Setenv("OASGUARD_CACHE_MAX_SIZE", "50")
	t.Setenv("OASGUARD_CACHE_FILE_TTL", "30m")
	t.Setenv("OASGUARD_CACHE_URL_TTL", "2m")
	t.Setenv("OASGUARD_CACHE_CONTENT_TTL", "10m")
	t.Setenv("OASGUARD_CACHE_SWEEP_INTERVAL", "30s")
	t.Setenv("OASGUARD_ROUTE_LIMIT", "200")
	t.Setenv("OASGUARD_MAX_LIMIT", "500")
	t.Setenv("OASGUARD_MAX_INLINE_SIZE", "5242880")
	t.Setenv("OASGUARD_ALLOW_PRIVATE_IPS", "true")
	t.Setenv("OASGUARD_FETCH_TIMEOUT", "10s")

	c := loadConfig()

	assert.False(t, c.CacheEnabled)
	assert.Equal(t, 50, c.CacheMaxSize)
	assert.Equal(t, 30*time.Minute, c.CacheFileTTL)
	assert.Equal(t, 2*time.Minute, c.CacheURLTTL)
	assert.Equal(t, 10*time.Minute, c.CacheContentTTL)
	assert.Equal(t, 30*time.Second, c.CacheSweepInterval)
	assert.Equal(t, 200, c.RouteLimit)
	assert.Equal(t, 500, c.MaxLimit)
	assert.Equal(t, int64(5242880), c.MaxInlineSize)
	assert.True(t, c.AllowPrivateIPs)
	assert.Equal(t, 10*time.Second, c.FetchTimeout)
}

func TestLoadConfig_InvalidValues_UseDefaults(t *testing.T) {
	clearOASGUARDEnv(t)
	t.Setenv("OASGUARD_CACHE_MAX_SIZE", "banana")
	t.Setenv("OASGUARD_CACHE_FILE_TTL", "not-a-duration")
	t.Setenv("OASGUARD_CACHE_ENABLED", "maybe")
	t.Setenv("OASGUARD_ROUTE_LIMIT", "-5")
	t.Setenv("OASGUARD_MAX_LIMIT", "0")
	t.Setenv("OASGUARD_MAX_INLINE_SIZE", "abc")

	c := loadConfig()

	// Invalid values should fall back to defaults.
	assert.True(t, c.CacheEnabled)
	assert.Equal(t, 10, c.CacheMaxSize)
	assert.Equal(t, 15*time.Minute, c.CacheFileTTL)
	assert.Equal(t, 100, c.RouteLimit)
	assert.Equal(t, 1000, c.MaxLimit)
	assert.Equal(t, int64(10*1024*1024), c.MaxInlineSize)
}

func TestLoadConfig_PartialOverrides(t *testing.T) {
	clearOASGUARDEnv(t)
	// Only override some values; others stay at defaults.
	t.Setenv("OASGUARD_ROUTE_LIMIT", "42")
	t.Setenv("OASGUARD_CACHE_URL_TTL", "10m")

	c := loadConfig()

	assert.Equal(t, 42, c.RouteLimit)
	assert.Equal(t, 10*time.Minute, c.CacheURLTTL)
	// Unchanged defaults:
	assert.Equal(t, 15*time.Minute, c.CacheFileTTL)
	assert.True(t, c.CacheEnabled)
}
