package mcpserver

import (
	"context"
	"fmt"
	"net/textproto"

	"github.com/erraggy/oasguard/httpvalidator"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type validateResponseInput struct {
	Spec        specInput         `json:"spec"                   jsonschema:"The OAS document to validate against"`
	Method      string            `json:"method"                 jsonschema:"HTTP method of the originating request (e.g. GET)"`
	Path        string            `json:"path"                   jsonschema:"Path of the originating request (e.g. /pets/42)"`
	Status      int               `json:"status"                 jsonschema:"HTTP status code of the response (e.g. 200)"`
	Headers     map[string]string `json:"headers,omitempty"      jsonschema:"Response headers by name"`
	Body        string            `json:"body,omitempty"         jsonschema:"Response body content; omit for a response without a body"`
	ContentType string            `json:"content_type,omitempty" jsonschema:"Content-Type of the body; overrides any Content-Type header"`
}

// handleValidateResponse returns its output as any for the same reason as
// handleValidateRequest: decoded values are free-form.
func handleValidateResponse(ctx context.Context, _ *mcp.CallToolRequest, input validateResponseInput) (*mcp.CallToolResult, any, error) {
	if input.Method == "" {
		return errResult(fmt.Errorf("method is required")), nil, nil
	}
	if input.Path == "" {
		return errResult(fmt.Errorf("path is required")), nil, nil
	}
	if input.Status < 100 || input.Status > 599 {
		return errResult(fmt.Errorf("status must be a valid HTTP status code (got %d)", input.Status)), nil, nil
	}

	sess, err := input.Spec.resolve(ctx)
	if err != nil {
		return errResult(err), nil, nil
	}

	resp := &httpvalidator.Response{
		Status: input.Status,
		Header: httpvalidator.Values{},
	}
	for name, v := range input.Headers {
		resp.Header.Add(textproto.CanonicalMIMEHeaderKey(name), v)
	}
	resp.ContentType = resp.Header.Get("Content-Type")
	if input.ContentType != "" {
		resp.ContentType = input.ContentType
		resp.Header.Set("Content-Type", input.ContentType)
	}
	if input.Body != "" {
		resp.Body = []byte(input.Body)
	}

	output := renderResult(sess.responses.Validate(input.Method, input.Path, resp))
	output.Status = input.Status
	return nil, output, nil
}
