package mcpserver

import (
	"context"
	"fmt"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/erraggy/oasguard/httpvalidator"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type validateRequestInput struct {
	Spec        specInput         `json:"spec"                   jsonschema:"The OAS document to validate against"`
	Method      string            `json:"method"                 jsonschema:"HTTP method of the request (e.g. GET)"`
	Path        string            `json:"path"                   jsonschema:"Request path, optionally with a query string (e.g. /pets/42?verbose=true)"`
	Query       map[string]string `json:"query,omitempty"        jsonschema:"Query parameters, merged with any query string in path"`
	Headers     map[string]string `json:"headers,omitempty"      jsonschema:"Request headers by name"`
	Cookies     map[string]string `json:"cookies,omitempty"      jsonschema:"Request cookies by name"`
	Body        string            `json:"body,omitempty"         jsonschema:"Request body content; omit for a request without a body"`
	ContentType string            `json:"content_type,omitempty" jsonschema:"Content-Type of the body; overrides any Content-Type header"`
}

// handleValidateRequest returns its output as any: the rendered result
// carries free-form decoded values, so no output schema is declared.
func handleValidateRequest(ctx context.Context, _ *mcp.CallToolRequest, input validateRequestInput) (*mcp.CallToolResult, any, error) {
	if input.Method == "" {
		return errResult(fmt.Errorf("method is required")), nil, nil
	}
	if input.Path == "" {
		return errResult(fmt.Errorf("path is required")), nil, nil
	}

	sess, err := input.Spec.resolve(ctx)
	if err != nil {
		return errResult(err), nil, nil
	}

	req, err := buildRequest(input)
	if err != nil {
		return errResult(err), nil, nil
	}

	return nil, renderResult(sess.requests.Validate(req)), nil
}

// buildRequest assembles the validator's request form from tool input.
func buildRequest(input validateRequestInput) (*httpvalidator.Request, error) {
	u, err := url.Parse(input.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	req := &httpvalidator.Request{
		Method: strings.ToUpper(input.Method),
		Path:   u.Path,
		Params: httpvalidator.Parameters{
			Path:   httpvalidator.Values{},
			Query:  httpvalidator.Values{},
			Header: httpvalidator.Values{},
			Cookie: httpvalidator.Values{},
		},
	}

	for name, vs := range u.Query() {
		for _, v := range vs {
			req.Params.Query.Add(name, v)
		}
	}
	for name, v := range input.Query {
		req.Params.Query.Add(name, v)
	}
	for name, v := range input.Headers {
		req.Params.Header.Add(textproto.CanonicalMIMEHeaderKey(name), v)
	}
	for name, v := range input.Cookies {
		req.Params.Cookie.Add(name, v)
	}

	req.ContentType = req.Params.Header.Get("Content-Type")
	if input.ContentType != "" {
		req.ContentType = input.ContentType
		req.Params.Header.Set("Content-Type", input.ContentType)
	}

	if input.Body != "" {
		req.Body = []byte(input.Body)
	}
	return req, nil
}
