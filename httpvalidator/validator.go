package httpvalidator

import (
	"errors"
	"fmt"

	"github.com/erraggy/oasguard/media"
	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/paths"
	"github.com/erraggy/oasguard/security"
	"github.com/erraggy/oasguard/spec"
	"github.com/erraggy/oasguard/styles"
	"github.com/erraggy/oasguard/unmarshal"
)

// Validator validates requests against a loaded OpenAPI document.
//
// Build one per document with New and reuse it; all methods are safe for
// concurrent use. Validation always returns a Result, never panics:
// every failure, from an unresolvable path to a single bad field, is
// recorded on the result.
type Validator struct {
	doc        *spec.Document
	finder     *paths.Finder
	styles     *styles.Registry
	media      *media.Registry
	security   *security.Registry
	unm        *unmarshal.Unmarshaller
	logger     spec.Logger
	noticeSink func(Notice)
}

// New builds a Validator for the document.
// Returns an error if the document is nil, declares a malformed path
// template, or an option is invalid.
func New(doc *spec.Document, opts ...Option) (*Validator, error) {
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

	unm, err := unmarshal.New(doc)
	if err != nil {
		return nil, err
	}

	return &Validator{
		doc:        doc,
		finder:     finder,
		styles:     cfg.styles,
		media:      cfg.media,
		security:   cfg.security,
		unm:        unm,
		logger:     cfg.logger,
		noticeSink: cfg.noticeSink,
	}, nil
}

// Validate runs the full pipeline: path resolution, security, parameters,
// and body.
//
// Path resolution and security are gates: if either fails the result
// carries that single error and nothing else runs. Past the gates,
// parameters and body are validated independently and every failure is
// collected, parameter errors before body errors.
func (v *Validator) Validate(req *Request) *Result {
	result := newResult()
	result.MatchedMethod = req.Method

	route, err := v.finder.Find(req.Method, req.Path)
	if err != nil {
		result.addError(err)
		return result
	}
	result.MatchedPath = route.Template
	v.logger.Debug("matched route", "method", req.Method, "template", route.Template)

	resolved, err := v.resolveSecurity(req, route)
	if err != nil {
		result.addError(err)
		return result
	}
	result.Security = resolved

	v.mergePathVariables(req, route)
	v.validateParameters(req, route, result)
	v.validateBody(req, route, result)
	return result
}

// ValidateParameters runs path resolution and the parameter pipeline only.
// Security and the body are not checked.
func (v *Validator) ValidateParameters(req *Request) *Result {
	result := newResult()
	result.MatchedMethod = req.Method

	route, err := v.finder.Find(req.Method, req.Path)
	if err != nil {
		result.addError(err)
		return result
	}
	result.MatchedPath = route.Template

	v.mergePathVariables(req, route)
	v.validateParameters(req, route, result)
	return result
}

// ValidateBody runs path resolution and the body pipeline only. Security,
// parameters, and path variable extraction are not touched.
func (v *Validator) ValidateBody(req *Request) *Result {
	result := newResult()
	result.MatchedMethod = req.Method

	route, err := v.finder.Find(req.Method, req.Path)
	if err != nil {
		result.addError(err)
		return result
	}
	result.MatchedPath = route.Template

	v.validateBody(req, route, result)
	return result
}

// mergePathVariables copies the matched template's variables into the
// request's path store, but only when the caller has not filled it
// already. Repeated validation of the same request stays stable.
func (v *Validator) mergePathVariables(req *Request, route *paths.Route) {
	if len(req.Params.Path) > 0 {
		return
	}
	if req.Params.Path == nil {
		req.Params.Path = Values{}
	}
	for name, value := range route.Variables {
		req.Params.Path.Set(name, value)
	}
}

// resolveSecurity checks the request against the route's security
// requirements.
//
// An operation-level security key fully overrides the document-level one,
// even when it is an empty list. Alternatives are tried in declared order;
// within an alternative every scheme must resolve. The first satisfied
// alternative wins and its credentials are returned. A scheme name with no
// definition under components.securitySchemes is skipped. When every
// alternative fails, the per-alternative failures are folded into an
// InvalidSecurityError.
func (v *Validator) resolveSecurity(req *Request, route *paths.Route) (map[string]any, error) {
	requirements := route.Operation.Child("security")
	if !requirements.Exists() {
		requirements = v.doc.Root().Child("security")
	}
	if !requirements.Exists() || requirements.Len() == 0 {
		return map[string]any{}, nil
	}

	schemes := v.doc.Root().Child("components").Child("securitySchemes")

	var attempts []error
	for i := 0; i < requirements.Len(); i++ {
		alt := requirements.At(i)

		resolved := map[string]any{}
		var altErr error
		for _, name := range alt.Keys() {
			scheme := schemes.Child(name)
			if !scheme.Exists() {
				continue
			}

			value, err := v.security.Resolve(scheme, req)
			if err != nil {
				var serr *oaserrors.SecurityError
				if errors.As(err, &serr) && serr.Scheme == "" {
					serr.Scheme = name
				}
				altErr = err
				break
			}
			resolved[name] = value
		}

		if altErr == nil {
			return resolved, nil
		}
		attempts = append(attempts, altErr)
	}

	v.logger.Debug("security exhausted", "method", req.Method, "template", route.Template, "alternatives", len(attempts))
	return nil, &oaserrors.InvalidSecurityError{Attempts: attempts}
}

// notice records an advisory observation on the result and feeds the
// configured sink, if any.
func (v *Validator) notice(result *Result, n Notice) {
	result.addNotice(n)
	if v.noticeSink != nil {
		v.noticeSink(n)
	}
}
