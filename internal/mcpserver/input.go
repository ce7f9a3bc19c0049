package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erraggy/oasguard/httpvalidator"
	"github.com/erraggy/oasguard/paths"
	"github.com/erraggy/oasguard/spec"
)

// specInput represents the three ways an OAS spec can be provided to a tool.
// Exactly one of File, URL, or Content must be set.
type specInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to an OAS file on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"URL to fetch an OAS document from"`
	Content string `json:"content,omitempty" jsonschema:"Inline OAS document content (JSON or YAML)"`
}

// session bundles everything the tools need for one spec: the parsed
// document and the validators built from it. Building the validators
// compiles every route matcher and schema once, so the bundle is the unit
// worth caching.
type session struct {
	doc       *spec.Document
	requests  *httpvalidator.Validator
	responses *httpvalidator.ResponseValidator
	finder    *paths.Finder
}

// newSession parses data and builds the validator bundle.
func newSession(data []byte) (*session, error) {
	doc, err := spec.Parse(data)
	if err != nil {
		return nil, err
	}
	return buildSession(doc)
}

func buildSession(doc *spec.Document) (*session, error) {
	requests, err := httpvalidator.New(doc)
	if err != nil {
		return nil, err
	}
	responses, err := httpvalidator.NewResponseValidator(doc)
	if err != nil {
		return nil, err
	}
	finder, err := paths.NewFinder(doc)
	if err != nil {
		return nil, err
	}
	return &session{doc: doc, requests: requests, responses: responses, finder: finder}, nil
}

// cacheEntry holds a cached session with LRU ordering and TTL expiry.
type cacheEntry struct {
	sess      *session
	insertAt  time.Time
	expiresAt time.Time
}

// specCacheStore provides a session-scoped cache for validator bundles.
// File inputs are keyed by (absolutePath, modTime). Content inputs are keyed
// by a SHA-256 hash. URL inputs are keyed by URL string.
// Entries have per-type TTLs and a background sweeper removes expired entries.
type specCacheStore struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry
	maxSize        int
	sweeperStarted atomic.Bool
}

var specCache = &specCacheStore{
	entries: make(map[string]*cacheEntry),
	maxSize: cfg.CacheMaxSize,
}

// get returns a cached session or nil. Expired entries are lazily removed.
func (c *specCacheStore) get(key string) *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
			delete(c.entries, key)
			return nil
		}
		// Touch entry for LRU.
		e.insertAt = time.Now()
		return e.sess
	}
	return nil
}

// putWithTTL stores a session with a specific TTL, evicting the oldest entry
// if at capacity.
func (c *specCacheStore) putWithTTL(key string, sess *session, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry{sess: sess, insertAt: now, expiresAt: now.Add(ttl)}

	// If already cached, just update.
	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		return
	}

	// Evict oldest if at capacity.
	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.insertAt
			}
		}
		if oldestKey != "" {
			delete(c.entries, oldestKey)
		}
	}

	c.entries[key] = entry
}

// sweep removes all expired entries from the cache.
func (c *specCacheStore) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// startSweeper launches a background goroutine that periodically removes
// expired entries. It is safe to call multiple times; only the first call
// spawns a sweeper. It stops when ctx is cancelled.
func (c *specCacheStore) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	if !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	var sweeping atomic.Bool
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !sweeping.CompareAndSwap(false, true) {
					continue
				}
				c.sweep()
				sweeping.Store(false)
			}
		}
	}()
}

// reset clears all cached entries. Used in tests.
func (c *specCacheStore) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// size returns the number of cached entries.
func (c *specCacheStore) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// makeCacheKey creates a cache key for the given spec input.
func makeCacheKey(s specInput) string {
	switch {
	case s.File != "":
		absPath, err := filepath.Abs(s.File)
		if err != nil {
			return ""
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return "" // Can't stat, don't cache.
		}
		return fmt.Sprintf("file:%s:%d", absPath, info.ModTime().UnixNano())
	case s.Content != "":
		h := sha256.Sum256([]byte(s.Content))
		return fmt.Sprintf("content:%s", hex.EncodeToString(h[:]))
	case s.URL != "":
		return fmt.Sprintf("url:%s", s.URL)
	default:
		return ""
	}
}

// resolve loads the spec from whichever input was provided and returns its
// validator bundle, using the cache for file, URL, and content inputs. The
// context bounds URL fetches.
func (s specInput) resolve(ctx context.Context) (*session, error) {
	count := 0
	if s.File != "" {
		count++
	}
	if s.URL != "" {
		count++
	}
	if s.Content != "" {
		count++
	}
	if count != 1 {
		return nil, fmt.Errorf("exactly one of file, url, or content must be provided (got %d)", count)
	}

	// Enforce inline content size limit.
	if s.Content != "" && int64(len(s.Content)) > cfg.MaxInlineSize {
		return nil, fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set OASGUARD_MAX_INLINE_SIZE to increase",
			len(s.Content), cfg.MaxInlineSize)
	}

	// Determine cache key and TTL (skip when caching is disabled).
	var key string
	var ttl time.Duration
	if cfg.CacheEnabled {
		key = makeCacheKey(s)
		switch {
		case s.File != "":
			ttl = cfg.CacheFileTTL
		case s.URL != "":
			ttl = cfg.CacheURLTTL
		default:
			ttl = cfg.CacheContentTTL
		}
	}

	if key != "" {
		if cached := specCache.get(key); cached != nil {
			return cached, nil
		}
	}

	var sess *session
	switch {
	case s.File != "":
		doc, err := spec.Load(s.File)
		if err != nil {
			return nil, err
		}
		sess, err = buildSession(doc)
		if err != nil {
			return nil, err
		}
	case s.URL != "":
		data, err := fetchSpecURL(ctx, s.URL)
		if err != nil {
			return nil, err
		}
		sess, err = newSession(data)
		if err != nil {
			return nil, err
		}
	case s.Content != "":
		var err error
		sess, err = newSession([]byte(s.Content))
		if err != nil {
			return nil, err
		}
	}

	// Cache the bundle for future calls (key is empty when caching is disabled).
	if key != "" {
		specCache.putWithTTL(key, sess, ttl)
	}

	return sess, nil
}

// fetchSpecURL retrieves a spec document over HTTP(S), blocking requests to
// private address ranges unless configured otherwise.
func fetchSpecURL(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid spec URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported spec URL scheme %q (only http and https)", u.Scheme)
	}

	client := httpClient()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml, text/yaml, */*")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spec: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch spec: %s returned status %d", u.Host, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, cfg.MaxInlineSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read spec response: %w", err)
	}
	if int64(len(data)) > cfg.MaxInlineSize {
		return nil, fmt.Errorf("spec response exceeds maximum %d bytes", cfg.MaxInlineSize)
	}
	return data, nil
}
