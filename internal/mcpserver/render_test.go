package mcpserver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erraggy/oasguard/httpvalidator"
	"github.com/erraggy/oasguard/oaserrors"
)

func TestRenderIssue_Kinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind string
		wantName string
		wantIn   string
	}{
		{
			name:     "path not found",
			err:      &oaserrors.PathError{Method: "GET", Path: "/nope"},
			wantKind: "path",
		},
		{
			name:     "method not allowed",
			err:      &oaserrors.PathError{Method: "DELETE", Path: "/pets", MethodNotAllowed: true},
			wantKind: "method_not_allowed",
		},
		{
			name:     "security exhausted",
			err:      &oaserrors.InvalidSecurityError{Attempts: []error{errors.New("no key")}},
			wantKind: "security",
		},
		{
			name:     "missing parameter",
			err:      &oaserrors.MissingParameterError{Name: "petId", In: "path"},
			wantKind: "missing_parameter",
			wantName: "petId",
			wantIn:   "path",
		},
		{
			name:     "deserialize",
			err:      &oaserrors.DeserializeError{Name: "filter", In: "query", Message: "bad pair"},
			wantKind: "deserialize",
			wantName: "filter",
			wantIn:   "query",
		},
		{
			name:     "cast",
			err:      &oaserrors.CastError{Name: "limit", In: "query", Type: "integer"},
			wantKind: "cast",
			wantName: "limit",
			wantIn:   "query",
		},
		{
			name:     "schema on body",
			err:      &oaserrors.SchemaError{In: "body", Failures: []string{"missing name"}},
			wantKind: "schema",
			wantIn:   "body",
		},
		{
			name:     "unmarshal",
			err:      &oaserrors.UnmarshalError{Name: "since", In: "query", Format: "date-time"},
			wantKind: "unmarshal",
			wantName: "since",
			wantIn:   "query",
		},
		{
			name:     "missing body",
			err:      &oaserrors.MissingBodyError{},
			wantKind: "missing_body",
		},
		{
			name:     "media type",
			err:      &oaserrors.MediaTypeError{ContentType: "text/csv", Declared: []string{"application/json"}},
			wantKind: "media_type",
		},
		{
			name:     "undeclared status",
			err:      &oaserrors.ResponseError{Status: 404, Declared: []string{"200"}},
			wantKind: "undeclared_status",
		},
		{
			name:     "unrecognized error",
			err:      errors.New("something else"),
			wantKind: "validation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := renderIssue(tt.err)
			assert.Equal(t, tt.wantKind, issue.Kind)
			assert.Equal(t, tt.wantName, issue.Name)
			assert.Equal(t, tt.wantIn, issue.In)
			assert.NotEmpty(t, issue.Message)
		})
	}
}

func TestRenderResult_SecuritySchemesOnly(t *testing.T) {
	r := &httpvalidator.Result{
		Security: map[string]any{"ApiKey": "sk-secret-value", "Bearer": "tok"},
	}
	out := renderResult(r)
	assert.Equal(t, []string{"ApiKey", "Bearer"}, out.Security)
	// Credential values must never appear in the rendered form.
	for _, s := range out.Security {
		assert.NotContains(t, s, "sk-secret-value")
		assert.NotContains(t, s, "tok")
	}
}

func TestRenderResult_EmptyStoresOmitted(t *testing.T) {
	r := &httpvalidator.Result{
		PathParams:   map[string]any{},
		QueryParams:  map[string]any{"limit": int64(5)},
		HeaderParams: map[string]any{},
		CookieParams: map[string]any{},
	}
	out := renderResult(r)
	assert.True(t, out.Valid)
	assert.Equal(t, 0, out.ErrorCount)
	assert.NotNil(t, out.Params)
	assert.Nil(t, out.Params.Path)
	assert.Equal(t, map[string]any{"limit": int64(5)}, out.Params.Query)
}

func TestRenderResult_NoParamsAtAll(t *testing.T) {
	out := renderResult(&httpvalidator.Result{})
	assert.Nil(t, out.Params)
	assert.Nil(t, out.Security, "nil security map means resolution never ran")
}
