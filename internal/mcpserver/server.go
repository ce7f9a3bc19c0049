// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes oasguard request and response validation as MCP tools over
// stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/erraggy/oasguard"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `oasguard MCP server — validates HTTP requests and responses against OpenAPI 3.x specifications.

Configuration: All defaults are configurable via OASGUARD_* environment variables set in your MCP client config. The Go MCP SDK does not support initializationOptions; use env vars instead.

Key settings:
- OASGUARD_CACHE_ENABLED (default: true) — disable spec caching entirely
- OASGUARD_CACHE_FILE_TTL (default: 15m) — cache TTL for local file specs
- OASGUARD_CACHE_URL_TTL (default: 5m) — cache TTL for URL-fetched specs
- OASGUARD_ROUTE_LIMIT (default: 100) — default result limit for list_routes
- OASGUARD_ALLOW_PRIVATE_IPS (default: false) — allow URL fetches to private address ranges
- OASGUARD_MAX_INLINE_SIZE (default: 10485760) — byte cap on inline spec content and URL fetches

Caching: Parsed specs and their compiled validators are cached per session. File entries use path+mtime as key (auto-invalidated on change). URL entries are cached with a shorter TTL. A background sweeper removes expired entries every 60s.`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	if cfg.CacheEnabled {
		specCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "oasguard", Version: oasguard.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_request",
		Description: "Validate an HTTP request against an OpenAPI 3.x specification. Resolves the request's method and path to an operation, checks its security requirements, and decodes and validates every declared parameter and the body. Returns the matched route, decoded values, satisfied security schemes, and one entry per validation failure with its kind and location. Provide the spec by file path, URL, or inline content.",
	}, handleValidateRequest)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_response",
		Description: "Validate an HTTP response against an OpenAPI 3.x specification. Resolves the status code against the operation's declared responses (exact, range pattern like 2XX, then default), then validates declared response headers and the body. Returns decoded header values and one entry per validation failure. Provide the spec by file path, URL, or inline content.",
	}, handleValidateResponse)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_routes",
		Description: "List the routes an OpenAPI 3.x specification declares: one entry per path template and HTTP method, with operationId, summary, and deprecation status. Routes are ordered by template specificity, the same order request validation tries them in. Filter by method and paginate with offset/limit. Default limit is configurable via OASGUARD_ROUTE_LIMIT (default 100).",
	}, handleListRoutes)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.RouteLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.RouteLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
