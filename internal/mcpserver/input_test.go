package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalSpec = `openapi: "3.0.0"
info:
  title: Minimal
  version: "1.0"
paths:
  /ping:
    get:
      responses:
        "204":
          description: pong
`

// writeSpecFile writes content to a temp file and returns its path.
func writeSpecFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSpecInput_ResolveFile(t *testing.T) {
	specCache.reset()
	input := specInput{File: writeSpecFile(t, minimalSpec)}
	sess, err := input.resolve(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.NotNil(t, sess.requests)
	assert.NotNil(t, sess.responses)
	assert.Equal(t, []string{"/ping"}, sess.finder.Templates())
}

func TestSpecInput_ResolveContent(t *testing.T) {
	specCache.reset()
	input := specInput{Content: minimalSpec}
	sess, err := input.resolve(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "Minimal", sess.doc.Root().Child("info").StrOr("title", ""))
}

func TestSpecInput_ResolveNoneProvided(t *testing.T) {
	input := specInput{}
	_, err := input.resolve(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of file, url, or content must be provided")
}

func TestSpecInput_ResolveMultipleProvided(t *testing.T) {
	input := specInput{File: "foo.yaml", Content: "bar"}
	_, err := input.resolve(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of file, url, or content must be provided")
}

func TestSpecInput_ResolveFileNotFound(t *testing.T) {
	specCache.reset()
	input := specInput{File: "/nonexistent/path.yaml"}
	_, err := input.resolve(context.Background())
	assert.Error(t, err)
}

func TestSpecInput_ResolveInvalidContent(t *testing.T) {
	specCache.reset()
	input := specInput{Content: "not: an openapi document"}
	_, err := input.resolve(context.Background())
	assert.Error(t, err)
}

func TestSpecInput_ResolveUnsupportedScheme(t *testing.T) {
	specCache.reset()
	input := specInput{URL: "ftp://example.com/spec.yaml"}
	_, err := input.resolve(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported spec URL scheme")
}

func TestSpecCache_HitOnSameFile(t *testing.T) {
	specCache.reset()
	input := specInput{File: writeSpecFile(t, minimalSpec)}

	// First call populates cache.
	sess1, err := input.resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, specCache.size())

	// Second call should return the same pointer (cache hit).
	sess2, err := input.resolve(context.Background())
	require.NoError(t, err)
	assert.Same(t, sess1, sess2, "expected same pointer from cache hit")
}

func TestSpecCache_MissOnModifiedFile(t *testing.T) {
	specCache.reset()

	path := writeSpecFile(t, strings.Replace(minimalSpec, "Minimal", "Test V1", 1))
	input := specInput{File: path}

	sess1, err := input.resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Test V1", sess1.doc.Root().Child("info").StrOr("title", ""))

	// Modify the file (change mtime).
	content2 := strings.Replace(minimalSpec, "Minimal", "Test V2", 1)
	require.NoError(t, os.WriteFile(path, []byte(content2), 0644))

	// Ensure mtime differs from the first write on coarse-grained filesystems.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	sess2, err := input.resolve(context.Background())
	require.NoError(t, err)
	// Should be a different session since mtime changed.
	assert.NotSame(t, sess1, sess2)
	assert.Equal(t, "Test V2", sess2.doc.Root().Child("info").StrOr("title", ""))
}

func TestSpecCache_ContentHash(t *testing.T) {
	specCache.reset()
	input := specInput{Content: minimalSpec}

	sess1, err := input.resolve(context.Background())
	require.NoError(t, err)

	// Same content should hit cache.
	sess2, err := input.resolve(context.Background())
	require.NoError(t, err)
	assert.Same(t, sess1, sess2)
}

func TestSpecCache_LRUEviction(t *testing.T) {
	specCache.reset()

	// Insert 11 specs into a cache of size 10.
	// Track the first content's cache key to verify it is evicted.
	var firstKey string
	for i := range 11 {
		content := strings.Replace(minimalSpec, "Minimal", "Spec "+string(rune('A'+i)), 1)
		if i == 0 {
			firstKey = makeCacheKey(specInput{Content: content})
		}
		input := specInput{Content: content}
		_, err := input.resolve(context.Background())
		require.NoError(t, err)
	}

	// Cache should not exceed max size.
	assert.Equal(t, 10, specCache.size())

	// The first entry (oldest) should have been evicted.
	assert.Nil(t, specCache.get(firstKey), "expected oldest entry to be evicted")
}

func TestMakeCacheKey_Forms(t *testing.T) {
	fileKey := makeCacheKey(specInput{File: writeSpecFile(t, minimalSpec)})
	assert.True(t, strings.HasPrefix(fileKey, "file:"), "file key: %q", fileKey)

	contentKey := makeCacheKey(specInput{Content: minimalSpec})
	assert.True(t, strings.HasPrefix(contentKey, "content:"), "content key: %q", contentKey)
	// Hash keys are stable for identical content.
	assert.Equal(t, contentKey, makeCacheKey(specInput{Content: minimalSpec}))

	urlKey := makeCacheKey(specInput{URL: "https://example.com/spec.yaml"})
	assert.Equal(t, "url:https://example.com/spec.yaml", urlKey)

	// Unstat-able files are not cacheable.
	assert.Empty(t, makeCacheKey(specInput{File: "/nonexistent/path.yaml"}))
	assert.Empty(t, makeCacheKey(specInput{}))
}
