package httpvalidator

import (
	"errors"
	"fmt"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/erraggy/oasguard/casting"
	"github.com/erraggy/oasguard/internal/httputil"
	"github.com/erraggy/oasguard/media"
	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/paths"
	"github.com/erraggy/oasguard/spec"
	"github.com/erraggy/oasguard/styles"
	"github.com/erraggy/oasguard/unmarshal"
)

// Response is the transport-independent response form the response
// validator consumes.
//
// Body distinguishes absent from empty the same way Request does: nil
// means no body, an empty non-nil slice means a zero-byte body.
type Response struct {
	// Status is the HTTP status code, e.g. 200.
	Status int

	// Header holds response header entries keyed by canonical header name.
	Header Values

	// ContentType is the Content-Type header value with parameters intact.
	ContentType string

	// Body is the raw response body; nil when absent.
	Body []byte
}

// ResponseValidator validates responses against a loaded OpenAPI document.
//
// It mirrors Validator for the other direction of the exchange: the
// request's method and path locate the operation, the status code locates
// the response declaration, then declared headers and the body are
// validated. Unmarshalling runs in response context, so writeOnly
// properties are rejected and readOnly ones allowed.
//
// Build one per document with NewResponseValidator and reuse it; all
// methods are safe for concurrent use.
type ResponseValidator struct {
	doc        *spec.Document
	finder     *paths.Finder
	styles     *styles.Registry
	media      *media.Registry
	unm        *unmarshal.Unmarshaller
	logger     spec.Logger
	noticeSink func(Notice)
}

// NewResponseValidator builds a ResponseValidator for the document.
// It accepts the same options as New; the security registry, if given,
// is ignored since responses carry no credentials.
func NewResponseValidator(doc *spec.Document, opts ...Option) (*ResponseValidator, error) {
	if doc == nil {
		return nil, fmt.Errorf("httpvalidator: document cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	finder, err := paths.NewFinder(doc)
	if err != nil {
		return nil, err
	}

	unm, err := unmarshal.New(doc, unmarshal.WithContext(unmarshal.ContextResponse))
	if err != nil {
		return nil, err
	}

	return &ResponseValidator{
		doc:        doc,
		finder:     finder,
		styles:     cfg.styles,
		media:      cfg.media,
		unm:        unm,
		logger:     cfg.logger,
		noticeSink: cfg.noticeSink,
	}, nil
}

// Validate checks a response observed for the given request method and
// path.
//
// Path resolution and the status lookup are gates: an unresolvable path
// or an undeclared status code yields a result with that single error.
// Past the gates, declared headers and the body are validated
// independently, header errors before body errors.
func (v *ResponseValidator) Validate(method, path string, resp *Response) *Result {
	result := newResult()
	result.MatchedMethod = method

	route, err := v.finder.Find(method, path)
	if err != nil {
		result.addError(err)
		return result
	}
	result.MatchedPath = route.Template

	responses := route.Operation.Child("responses")
	def, key := lookupResponse(responses, resp.Status)
	if !def.Exists() {
		result.addError(&oaserrors.ResponseError{
			Status:   resp.Status,
			Declared: responses.Keys(),
		})
		return result
	}
	v.logger.Debug("matched response", "method", method, "template", route.Template, "status", key)

	v.validateHeaders(resp, def, result)
	v.validateData(resp, def, result)
	return result
}

// lookupResponse resolves a status code against a responses map: an exact
// match first, then the "2XX"-form range, then "default". Returns the
// matched node and the key it matched under; the zero node when nothing
// matched.
func lookupResponse(responses spec.Node, status int) (spec.Node, string) {
	exact := strconv.Itoa(status)
	if def := responses.Child(exact); def.Exists() {
		return def, exact
	}
	if wildcard := httputil.WildcardStatus(status); wildcard != "" {
		if def := responses.Child(wildcard); def.Exists() {
			return def, wildcard
		}
	}
	if def := responses.Child("default"); def.Exists() {
		return def, "default"
	}
	return spec.Node{}, ""
}

// validateHeaders runs the parameter pipeline over the response
// declaration's headers map. Response headers are always in the header
// location and default to simple style with explode off.
func (v *ResponseValidator) validateHeaders(resp *Response, def spec.Node, result *Result) {
	headers := def.Child("headers")
	for _, name := range headers.Keys() {
		// Content-Type is governed by the content map, not the
		// headers map.
		if strings.EqualFold(name, "Content-Type") {
			continue
		}
		hdr := headers.Child(name)

		if hdr.BoolOr("deprecated", false) {
			n := Notice{
				Name:    name,
				In:      "header",
				Message: fmt.Sprintf("response header %q is deprecated", name),
			}
			result.addNotice(n)
			if v.noticeSink != nil {
				v.noticeSink(n)
			}
		}

		value, ok, err := v.resolveHeader(resp, hdr, name)
		if err != nil {
			setNameIn(err, name, "header")
			result.addError(err)
			continue
		}
		if !ok {
			continue
		}
		result.setParam("header", name, value)
	}
}

// resolveHeader takes one declared response header through fetch,
// deserialize, cast, and unmarshal.
func (v *ResponseValidator) resolveHeader(resp *Response, hdr spec.Node, name string) (any, bool, error) {
	lookup := textproto.CanonicalMIMEHeaderKey(name)
	explode := hdr.BoolOr("explode", false)

	if !resp.Header.Has(lookup) {
		if hdr.BoolOr("required", false) {
			return nil, false, &oaserrors.MissingParameterError{Name: name, In: "header"}
		}
		schema := hdr.Child("schema")
		if def, ok := schema.Get("default"); ok {
			value, err := v.unm.Unmarshal(schema, def)
			if err != nil {
				return nil, false, err
			}
			return value, true, nil
		}
		return nil, false, nil
	}

	var raw styles.RawValue
	if styles.AsList(hdr) && explode {
		raw = styles.RawValue{Values: resp.Header.GetAll(lookup), IsList: true}
	} else {
		raw = styles.RawValue{Value: resp.Header.Get(lookup)}
	}

	value, err := v.styles.DeserializeStyle(hdr.StrOr("style", styles.StyleSimple), styles.Input{
		Name:    name,
		Schema:  hdr.Child("schema"),
		Explode: explode,
		Raw:     raw,
	})
	if err != nil {
		return nil, false, err
	}

	schema := hdr.Child("schema")
	value, err = casting.Cast(schema, value)
	if err != nil {
		return nil, false, err
	}

	value, err = v.unm.Unmarshal(schema, value)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// validateData runs the body pipeline against the response declaration's
// content map. A declaration with no content map leaves the body
// unchecked.
func (v *ResponseValidator) validateData(resp *Response, def spec.Node, result *Result) {
	content := def.Child("content")
	if !content.Exists() || content.Len() == 0 {
		return
	}

	if resp.Body == nil {
		result.addError(&oaserrors.MissingBodyError{Response: true})
		return
	}
	result.BodyPresent = true

	mt, _, err := media.Select(resp.ContentType, content)
	if err != nil {
		var mterr *oaserrors.MediaTypeError
		if errors.As(err, &mterr) {
			mterr.Response = true
		}
		result.addError(err)
		return
	}

	value, err := v.media.Deserialize(resp.ContentType, resp.Body)
	if err != nil {
		setNameIn(err, "", "body")
		result.addError(err)
		return
	}

	schema := mt.Child("schema")
	value, err = casting.Cast(schema, value)
	if err != nil {
		setNameIn(err, "", "body")
		result.addError(err)
		return
	}

	if !schema.Exists() {
		result.Body = value
		return
	}

	value, err = v.unm.Unmarshal(schema, value)
	if err != nil {
		setNameIn(err, "", "body")
		result.addError(err)
		return
	}
	result.Body = value
}
