package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// serverConfig holds runtime settings for the MCP server. Values come from
// OASGUARD_* environment variables with safe defaults so the server works
// with zero configuration.
type serverConfig struct {
	// CacheEnabled toggles the per-session spec cache.
	CacheEnabled bool
	// CacheMaxSize bounds the number of cached specs per session. Each
	// entry holds a parsed document plus its built validators, so this
	// stays small.
	CacheMaxSize int
	// CacheFileTTL is how long a file-sourced spec stays cached. File
	// entries are keyed by path+mtime and so self-invalidate on change,
	// which allows a longer TTL.
	CacheFileTTL time.Duration
	// CacheURLTTL is how long a URL-sourced spec stays cached. URL content
	// can change without the key changing, so this stays short.
	CacheURLTTL time.Duration
	// CacheContentTTL is how long an inline-content spec stays cached.
	// Content entries are keyed by hash and cannot go stale.
	CacheContentTTL time.Duration
	// CacheSweepInterval is how often expired entries are swept.
	CacheSweepInterval time.Duration
	// RouteLimit is the default page size for list_routes.
	RouteLimit int
	// MaxLimit caps any caller-supplied page size.
	MaxLimit int
	// MaxInlineSize bounds the byte length of inline spec content and of
	// URL fetches.
	MaxInlineSize int64
	// AllowPrivateIPs permits URL spec fetches to private address ranges.
	AllowPrivateIPs bool
	// FetchTimeout bounds a single URL spec fetch.
	FetchTimeout time.Duration
}

// cfg is the package-level configuration, loaded once at startup.
var cfg = loadConfig()

func loadConfig() serverConfig {
	return serverConfig{
		CacheEnabled:       envBool("OASGUARD_CACHE_ENABLED", true),
		CacheMaxSize:       envInt("OASGUARD_CACHE_MAX_SIZE", 10),
		CacheFileTTL:       envDuration("OASGUARD_CACHE_FILE_TTL", 15*time.Minute),
		CacheURLTTL:        envDuration("OASGUARD_CACHE_URL_TTL", 5*time.Minute),
		CacheContentTTL:    envDuration("OASGUARD_CACHE_CONTENT_TTL", 15*time.Minute),
		CacheSweepInterval: envDuration("OASGUARD_CACHE_SWEEP_INTERVAL", 60*time.Second),
		RouteLimit:         envInt("OASGUARD_ROUTE_LIMIT", 100),
		MaxLimit:           envInt("OASGUARD_MAX_LIMIT", 1000),
		MaxInlineSize:      envInt64("OASGUARD_MAX_INLINE_SIZE", 10*1024*1024),
		AllowPrivateIPs:    envBool("OASGUARD_ALLOW_PRIVATE_IPS", false),
		FetchTimeout:       envDuration("OASGUARD_FETCH_TIMEOUT", 30*time.Second),
	}
}

// envBool reads a boolean environment variable, returning def when unset
// or unparsable.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid boolean environment variable; using default",
			"key", key, "value", v, "default", def)
		return def
	}
	return b
}

// envInt reads an integer environment variable, returning def when unset,
// unparsable, or non-positive.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer environment variable; using default",
			"key", key, "value", v, "default", def)
		return def
	}
	return n
}

// envInt64 reads a 64-bit integer environment variable, returning def when
// unset, unparsable, or non-positive.
func envInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer environment variable; using default",
			"key", key, "value", v, "default", def)
		return def
	}
	return n
}

// envDuration reads a duration environment variable (e.g. "5m", "30s"),
// returning def when unset, unparsable, or non-positive.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration environment variable; using default",
			"key", key, "value", v, "default", def)
		return def
	}
	return d
}
