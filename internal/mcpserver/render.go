package mcpserver

import (
	"errors"

	"github.com/erraggy/oasguard/httpvalidator"
	"github.com/erraggy/oasguard/internal/maputil"
	"github.com/erraggy/oasguard/oaserrors"
)

// resultIssue is one validation failure on the wire. Kind is a stable
// machine-readable discriminator; Name and In locate the failing parameter
// when the failure concerns one.
type resultIssue struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Name    string `json:"name,omitempty"`
	In      string `json:"in,omitempty"`
}

// resultNotice is one advisory observation on the wire.
type resultNotice struct {
	Name    string `json:"name,omitempty"`
	In      string `json:"in,omitempty"`
	Message string `json:"message"`
}

// resultParams holds the decoded parameter stores that had any entries.
type resultParams struct {
	Path   map[string]any `json:"path,omitempty"`
	Query  map[string]any `json:"query,omitempty"`
	Header map[string]any `json:"header,omitempty"`
	Cookie map[string]any `json:"cookie,omitempty"`
}

// renderedResult is the wire form of a validation outcome, shared as the
// output type of the validate_request and validate_response tools. Status
// is set only for responses.
type renderedResult struct {
	Valid         bool           `json:"valid"`
	Status        int            `json:"status,omitempty"`
	MatchedPath   string         `json:"matched_path,omitempty"`
	MatchedMethod string         `json:"matched_method,omitempty"`
	ErrorCount    int            `json:"error_count"`
	Errors        []resultIssue  `json:"errors,omitempty"`
	Notices       []resultNotice `json:"notices,omitempty"`
	Params        *resultParams  `json:"params,omitempty"`
	// Security lists the scheme names of the satisfied security
	// alternative. Credential values are never echoed back.
	Security    []string `json:"security,omitempty"`
	Body        any      `json:"body,omitempty"`
	BodyPresent bool     `json:"body_present"`
}

// renderResult converts a validation result to its wire form.
func renderResult(r *httpvalidator.Result) renderedResult {
	out := renderedResult{
		Valid:         r.Valid(),
		MatchedPath:   r.MatchedPath,
		MatchedMethod: r.MatchedMethod,
		ErrorCount:    len(r.Errors),
		Body:          r.Body,
		BodyPresent:   r.BodyPresent,
	}

	out.Errors = makeSlice[resultIssue](len(r.Errors))
	for _, err := range r.Errors {
		out.Errors = append(out.Errors, renderIssue(err))
	}

	out.Notices = makeSlice[resultNotice](len(r.Notices))
	for _, n := range r.Notices {
		out.Notices = append(out.Notices, resultNotice{Name: n.Name, In: n.In, Message: n.Message})
	}

	params := resultParams{
		Path:   paramStore(r.PathParams),
		Query:  paramStore(r.QueryParams),
		Header: paramStore(r.HeaderParams),
		Cookie: paramStore(r.CookieParams),
	}
	if params.Path != nil || params.Query != nil || params.Header != nil || params.Cookie != nil {
		out.Params = &params
	}

	if r.Security != nil {
		out.Security = maputil.SortedKeys(r.Security)
	}

	return out
}

// paramStore returns the store itself when populated, nil otherwise so
// empty stores disappear from JSON output.
func paramStore(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return m
}

// renderIssue classifies one validation failure and extracts its location.
func renderIssue(err error) resultIssue {
	issue := resultIssue{Message: sanitizeError(err)}

	var (
		pathErr        *oaserrors.PathError
		securityErr    *oaserrors.InvalidSecurityError
		missingParam   *oaserrors.MissingParameterError
		deserializeErr *oaserrors.DeserializeError
		castErr        *oaserrors.CastError
		schemaErr      *oaserrors.SchemaError
		unmarshalErr   *oaserrors.UnmarshalError
		missingBody    *oaserrors.MissingBodyError
		mediaTypeErr   *oaserrors.MediaTypeError
		responseErr    *oaserrors.ResponseError
	)
	switch {
	case errors.As(err, &pathErr):
		issue.Kind = "path"
		if pathErr.MethodNotAllowed {
			issue.Kind = "method_not_allowed"
		}
	case errors.As(err, &securityErr):
		issue.Kind = "security"
	case errors.As(err, &missingParam):
		issue.Kind = "missing_parameter"
		issue.Name = missingParam.Name
		issue.In = missingParam.In
	case errors.As(err, &deserializeErr):
		issue.Kind = "deserialize"
		issue.Name = deserializeErr.Name
		issue.In = deserializeErr.In
	case errors.As(err, &castErr):
		issue.Kind = "cast"
		issue.Name = castErr.Name
		issue.In = castErr.In
	case errors.As(err, &schemaErr):
		issue.Kind = "schema"
		issue.Name = schemaErr.Name
		issue.In = schemaErr.In
	case errors.As(err, &unmarshalErr):
		issue.Kind = "unmarshal"
		issue.Name = unmarshalErr.Name
		issue.In = unmarshalErr.In
	case errors.As(err, &missingBody):
		issue.Kind = "missing_body"
	case errors.As(err, &mediaTypeErr):
		issue.Kind = "media_type"
	case errors.As(err, &responseErr):
		issue.Kind = "undeclared_status"
	default:
		issue.Kind = "validation"
	}

	return issue
}
