package mcpserver

import (
	"context"
	"strings"

	"github.com/erraggy/oasguard/internal/httputil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type listRoutesInput struct {
	Spec   specInput `json:"spec"             jsonschema:"The OAS document to list routes from"`
	Method string    `json:"method,omitempty" jsonschema:"Only return routes for this HTTP method (e.g. GET)"`
	Offset int       `json:"offset,omitempty" jsonschema:"Skip the first N routes (for pagination)"`
	Limit  int       `json:"limit,omitempty"  jsonschema:"Maximum number of routes to return (default 100)"`
}

type routeInfo struct {
	Method      string   `json:"method"`
	Path        string   `json:"path"`
	OperationID string   `json:"operation_id,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Deprecated  bool     `json:"deprecated,omitempty"`
}

type listRoutesOutput struct {
	Total    int         `json:"total"`
	Returned int         `json:"returned"`
	Routes   []routeInfo `json:"routes,omitempty"`
}

func handleListRoutes(ctx context.Context, _ *mcp.CallToolRequest, input listRoutesInput) (*mcp.CallToolResult, listRoutesOutput, error) {
	sess, err := input.Spec.resolve(ctx)
	if err != nil {
		return errResult(err), listRoutesOutput{}, nil
	}

	methodFilter := strings.ToLower(input.Method)

	// Templates come back in specificity order, the same order request
	// validation tries them in.
	var routes []routeInfo
	pathsNode := sess.doc.Root().Child("paths")
	for _, template := range sess.finder.Templates() {
		item := pathsNode.Child(template)
		for _, method := range httputil.Methods {
			if methodFilter != "" && method != methodFilter {
				continue
			}
			op := item.Child(method)
			if !op.Exists() {
				continue
			}
			info := routeInfo{
				Method:      strings.ToUpper(method),
				Path:        template,
				OperationID: op.StrOr("operationId", ""),
				Summary:     op.StrOr("summary", ""),
				Deprecated:  op.BoolOr("deprecated", false),
			}
			tags := op.Child("tags")
			for i := 0; i < tags.Len(); i++ {
				info.Tags = append(info.Tags, tags.At(i).Str())
			}
			routes = append(routes, info)
		}
	}

	page := paginate(routes, input.Offset, input.Limit)
	output := listRoutesOutput{
		Total:    len(routes),
		Returned: len(page),
		Routes:   page,
	}
	return nil, output, nil
}
