package commands

import (
	"errors"
	"io"

	"github.com/erraggy/oasguard/httpvalidator"
	"github.com/erraggy/oasguard/internal/maputil"
	"github.com/erraggy/oasguard/oaserrors"
)

// ReportIssue is one validation failure or notice in machine-readable form.
// Kind is a stable discriminator scripts can match on; Name and In locate
// the failing parameter when the failure concerns one.
type ReportIssue struct {
	Kind    string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	In      string `json:"in,omitempty" yaml:"in,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// Report is the outcome of validating one request, shaped for structured
// output. Security lists the scheme names of the satisfied security
// alternative; credential values never appear in a report. Line is set
// only by the batch command and is the 1-based input line number.
type Report struct {
	Valid       bool          `json:"valid" yaml:"valid"`
	Line        int           `json:"line,omitempty" yaml:"line,omitempty"`
	Method      string        `json:"method" yaml:"method"`
	Path        string        `json:"path" yaml:"path"`
	MatchedPath string        `json:"matched_path,omitempty" yaml:"matched_path,omitempty"`
	ErrorCount  int           `json:"error_count" yaml:"error_count"`
	Errors      []ReportIssue `json:"errors,omitempty" yaml:"errors,omitempty"`
	Notices     []ReportIssue `json:"notices,omitempty" yaml:"notices,omitempty"`
	Security    []string      `json:"security,omitempty" yaml:"security,omitempty"`
}

// NewReport converts a validation result to its report form. Method and
// path are echoed from the request so batch outputs stay self-describing.
func NewReport(method, path string, res *httpvalidator.Result) Report {
	rep := Report{
		Valid:       res.Valid(),
		Method:      method,
		Path:        path,
		MatchedPath: res.MatchedPath,
		ErrorCount:  len(res.Errors),
	}

	for _, err := range res.Errors {
		rep.Errors = append(rep.Errors, classifyIssue(err))
	}
	for _, n := range res.Notices {
		rep.Notices = append(rep.Notices, ReportIssue{Name: n.Name, In: n.In, Message: n.Message})
	}

	if res.Security != nil {
		rep.Security = maputil.SortedKeys(res.Security)
	}

	return rep
}

// WriteReportText writes the report's issues and summary in human-readable
// form. Used by the validate command for the default text format.
func WriteReportText(w io.Writer, rep Report) {
	if len(rep.Errors) > 0 {
		Writef(w, "Errors (%d):\n", rep.ErrorCount)
		for _, issue := range rep.Errors {
			Writef(w, "  ✗ %s\n", issue.Message)
		}
		Writef(w, "\n")
	}

	if len(rep.Notices) > 0 {
		Writef(w, "Notices (%d):\n", len(rep.Notices))
		for _, issue := range rep.Notices {
			Writef(w, "  ⚠ %s\n", issue.Message)
		}
		Writef(w, "\n")
	}

	if rep.Valid {
		Writef(w, "✓ Request is valid")
		if rep.MatchedPath != "" {
			Writef(w, " (matched %s)", rep.MatchedPath)
		}
		Writef(w, "\n")
	} else {
		Writef(w, "✗ Request is invalid: %d error(s)\n", rep.ErrorCount)
	}
}

// classifyIssue maps one validation failure to its report form. The kind
// strings match the ones the MCP server tools emit.
func classifyIssue(err error) ReportIssue {
	issue := ReportIssue{Message: err.Error()}

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
