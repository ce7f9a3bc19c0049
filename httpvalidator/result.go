package httpvalidator

import "errors"

// Notice is an advisory observation that does not affect validity, such as
// use of a deprecated parameter.
type Notice struct {
	// Name is the parameter name the notice concerns.
	Name string

	// In is the parameter location: "path", "query", "header", or "cookie".
	In string

	// Message describes the observation.
	Message string
}

// Result is the outcome of validating one request.
//
// The decoded stores hold only the parameters that passed every stage;
// a parameter that failed any stage appears in Errors instead. A result
// with a fatal error (unresolvable path, failed security) carries no
// decoded values at all.
type Result struct {
	// MatchedPath is the path template the request resolved to, e.g.
	// "/pets/{petId}". Empty when resolution failed.
	MatchedPath string

	// MatchedMethod is the resolved HTTP method. Set whenever the request
	// carried one, even when resolution failed.
	MatchedMethod string

	// PathParams holds decoded path parameters by name.
	PathParams map[string]any

	// QueryParams holds decoded query parameters by name.
	QueryParams map[string]any

	// HeaderParams holds decoded header parameters by name.
	HeaderParams map[string]any

	// CookieParams holds decoded cookie parameters by name.
	CookieParams map[string]any

	// Body is the decoded request body, or nil when absent or failed.
	Body any

	// BodyPresent reports whether a body was received for a declared
	// body, independent of whether it decoded successfully.
	BodyPresent bool

	// Security holds the resolved credentials of the first satisfied
	// security alternative, keyed by scheme name. An empty non-nil map
	// means the request needed no credentials.
	Security map[string]any

	// Errors holds every validation failure, parameter errors before
	// body errors.
	Errors []error

	// Notices holds advisory observations such as deprecated parameter
	// declarations.
	Notices []Notice
}

// Valid reports whether the request passed with no errors.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

// Err joins all recorded errors into one, or returns nil when valid.
func (r *Result) Err() error {
	return errors.Join(r.Errors...)
}

// newResult returns a Result with the decoded stores allocated.
func newResult() *Result {
	return &Result{
		PathParams:   make(map[string]any),
		QueryParams:  make(map[string]any),
		HeaderParams: make(map[string]any),
		CookieParams: make(map[string]any),
	}
}

// setParam records a decoded parameter in the store for its location.
func (r *Result) setParam(in, name string, value any) {
	switch in {
	case "path":
		r.PathParams[name] = value
	case "query":
		r.QueryParams[name] = value
	case "header":
		r.HeaderParams[name] = value
	case "cookie":
		r.CookieParams[name] = value
	}
}

// addError appends a validation failure.
func (r *Result) addError(err error) {
	r.Errors = append(r.Errors, err)
}

// addNotice appends an advisory observation.
func (r *Result) addNotice(n Notice) {
	r.Notices = append(r.Notices, n)
}
