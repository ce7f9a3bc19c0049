package httpvalidator

import (
	"fmt"
	"io"
	"net/http"
	"net/textproto"

	"github.com/erraggy/oasguard/oaserrors"
)

// defaultMaxBodySize caps how many body bytes NewRequest reads (10 MiB).
const defaultMaxBodySize = 10 * 1024 * 1024

// Values holds the occurrences of named entries in one request location.
// A name may carry multiple occurrences, in arrival order.
type Values map[string][]string

// Has reports whether the name has at least one occurrence.
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// Get returns the first occurrence of the name, or "" when absent.
func (v Values) Get(name string) string {
	if vs, ok := v[name]; ok && len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// GetAll returns every occurrence of the name in order, or nil when absent.
func (v Values) GetAll(name string) []string {
	return v[name]
}

// Add appends an occurrence of the name.
func (v Values) Add(name, value string) {
	v[name] = append(v[name], value)
}

// Set replaces all occurrences of the name with a single value.
func (v Values) Set(name, value string) {
	v[name] = []string{value}
}

// Parameters groups the four request locations parameters are fetched from.
type Parameters struct {
	// Path holds path variables keyed by template variable name. Left
	// empty by NewRequest; the validator fills it from the matched route.
	Path Values

	// Query holds decoded query entries keyed by name.
	Query Values

	// Header holds header entries keyed by canonical header name.
	Header Values

	// Cookie holds cookie entries keyed by cookie name.
	Cookie Values
}

// byLocation returns the store for an OpenAPI parameter location, or nil
// for an unknown location.
func (p *Parameters) byLocation(in string) Values {
	switch in {
	case "path":
		return p.Path
	case "query":
		return p.Query
	case "header":
		return p.Header
	case "cookie":
		return p.Cookie
	}
	return nil
}

// Request is the transport-independent request form the validator consumes.
//
// Build one from an *http.Request with NewRequest, or populate the fields
// directly when the request never passed through net/http (message queues,
// recorded traffic, tests).
//
// Body distinguishes absent from empty: a nil slice means no body was sent,
// while an empty non-nil slice means a body was sent with zero bytes.
type Request struct {
	// Method is the HTTP method, e.g. "GET".
	Method string

	// Path is the URL path to resolve against the document's templates.
	Path string

	// Params holds the four parameter locations.
	Params Parameters

	// ContentType is the Content-Type header value, with any media type
	// parameters intact, e.g. "application/json; charset=utf-8".
	ContentType string

	// Body is the raw request body; nil when absent.
	Body []byte
}

// Lookup fetches a single credential value from the request by OpenAPI
// security location. Header names are matched canonically.
func (r *Request) Lookup(in, name string) (string, bool) {
	var store Values
	switch in {
	case "query":
		store = r.Params.Query
	case "header":
		store = r.Params.Header
		name = textproto.CanonicalMIMEHeaderKey(name)
	case "cookie":
		store = r.Params.Cookie
	default:
		return "", false
	}
	if !store.Has(name) {
		return "", false
	}
	return store.Get(name), true
}

// requestConfig holds settings applied while building a Request.
type requestConfig struct {
	maxBodySize int64
}

// RequestOption configures how NewRequest reads an *http.Request.
type RequestOption func(*requestConfig) error

// WithMaxBodySize sets the maximum number of body bytes NewRequest reads.
// The default is 10 MiB. A negative size is a configuration error; zero
// rejects any request that carries a body.
func WithMaxBodySize(size int64) RequestOption {
	return func(c *requestConfig) error {
		if size < 0 {
			return &oaserrors.ConfigError{
				Option:  "WithMaxBodySize",
				Value:   size,
				Message: "size cannot be negative",
			}
		}
		c.maxBodySize = size
		return nil
	}
}

// NewRequest converts an *http.Request into the validator's request form.
//
// The query string, headers, and cookies are copied into their stores; the
// path variable store is left empty for the validator to fill from the
// matched template. The body is read in full, capped at the configured
// maximum, and the original r.Body is left drained.
func NewRequest(r *http.Request, opts ...RequestOption) (*Request, error) {
	if r == nil {
		return nil, fmt.Errorf("httpvalidator: http request cannot be nil")
	}

	cfg := requestConfig{maxBodySize: defaultMaxBodySize}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	req := &Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Params: Parameters{
			Path:   Values{},
			Query:  Values{},
			Header: Values{},
			Cookie: Values{},
		},
		ContentType: r.Header.Get("Content-Type"),
	}

	for name, vs := range r.URL.Query() {
		for _, v := range vs {
			req.Params.Query.Add(name, v)
		}
	}
	for name, vs := range r.Header {
		req.Params.Header[name] = append([]string(nil), vs...)
	}
	for _, c := range r.Cookies() {
		req.Params.Cookie.Add(c.Name, c.Value)
	}

	if r.Body == nil || r.ContentLength == 0 {
		return req, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, cfg.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("httpvalidator: failed to read request body: %w", err)
	}
	if int64(len(body)) > cfg.maxBodySize {
		return nil, fmt.Errorf("httpvalidator: request body exceeds %d bytes", cfg.maxBodySize)
	}
	req.Body = body

	return req, nil
}
