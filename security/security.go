// Package security resolves the credentials a specification's security
// schemes declare.
//
// Import path: github.com/erraggy/oasguard/security
//
// A [Registry] maps security scheme types (apiKey, http, oauth2,
// openIdConnect) to [Provider] functions. Providers read credentials
// through the [Source] interface so any request representation can
// supply them. The registry ships with providers for the four standard
// types; [Registry.Register] swaps in custom resolution, such as
// verifying tokens against an issuer instead of extracting them.
package security

import (
	"errors"
	"fmt"
	"strings"

	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/spec"
)

// Source supplies the request values security schemes read. Lookup
// returns the first value for name in the given location ("query",
// "header", or "cookie") and whether it was present. Header lookups are
// case-insensitive.
type Source interface {
	Lookup(in, name string) (string, bool)
}

// Provider resolves one security scheme against a request, returning the
// extracted credential value. The scheme node is the securitySchemes
// entry being resolved.
type Provider func(scheme spec.Node, src Source) (any, error)

// Registry maps security scheme types to providers. A zero Registry has
// no providers; use NewRegistry for the standard set.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry returns a Registry with providers for the four standard
// scheme types: apiKey, http, oauth2, and openIdConnect.
func NewRegistry() *Registry {
	return &Registry{providers: map[string]Provider{
		"apiKey":        resolveAPIKey,
		"http":          resolveHTTP,
		"oauth2":        resolveBearer,
		"openIdConnect": resolveBearer,
	}}
}

// Register installs a provider for a scheme type, replacing any existing
// one.
func (r *Registry) Register(schemeType string, p Provider) {
	if r.providers == nil {
		r.providers = make(map[string]Provider)
	}
	r.providers[schemeType] = p
}

// Resolve runs the provider for the scheme's declared type. Failures are
// always [oaserrors.SecurityError]; the caller fills in the scheme name.
func (r *Registry) Resolve(scheme spec.Node, src Source) (any, error) {
	schemeType := scheme.StrOr("type", "")
	provider := r.providers[schemeType]
	if provider == nil {
		return nil, &oaserrors.SecurityError{
			Type:    schemeType,
			Message: fmt.Sprintf("unsupported security scheme type %q", schemeType),
		}
	}

	value, err := provider(scheme, src)
	if err != nil {
		var secErr *oaserrors.SecurityError
		if errors.As(err, &secErr) {
			return nil, err
		}
		return nil, &oaserrors.SecurityError{Type: schemeType, Cause: err}
	}
	return value, nil
}

// resolveAPIKey reads the key named by the scheme from its declared
// location.
func resolveAPIKey(scheme spec.Node, src Source) (any, error) {
	name := scheme.StrOr("name", "")
	in := scheme.StrOr("in", "")
	value, ok := src.Lookup(in, name)
	if !ok {
		return nil, &oaserrors.SecurityError{
			Type:    "apiKey",
			Message: fmt.Sprintf("missing %s credential %q", in, name),
		}
	}
	return value, nil
}

// resolveHTTP extracts the credentials part of the Authorization header
// after checking its scheme token against the declared scheme.
func resolveHTTP(scheme spec.Node, src Source) (any, error) {
	token, credentials, err := authorization(src, "http")
	if err != nil {
		return nil, err
	}
	declared := scheme.StrOr("scheme", "")
	if !strings.EqualFold(token, declared) {
		return nil, &oaserrors.SecurityError{
			Type:    "http",
			Message: fmt.Sprintf("authorization scheme %q does not match declared scheme %q", token, declared),
		}
	}
	return credentials, nil
}

// resolveBearer extracts Bearer credentials from the Authorization
// header. oauth2 and openIdConnect schemes both carry bearer tokens.
func resolveBearer(scheme spec.Node, src Source) (any, error) {
	schemeType := scheme.StrOr("type", "")
	token, credentials, err := authorization(src, schemeType)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(token, "Bearer") {
		return nil, &oaserrors.SecurityError{
			Type:    schemeType,
			Message: fmt.Sprintf("expected Bearer credentials, got %q", token),
		}
	}
	return credentials, nil
}

// authorization splits the Authorization header into its scheme token
// and credentials part.
func authorization(src Source, schemeType string) (token, credentials string, err error) {
	header, ok := src.Lookup("header", "Authorization")
	if !ok {
		return "", "", &oaserrors.SecurityError{
			Type:    schemeType,
			Message: "missing Authorization header",
		}
	}
	token, credentials, found := strings.Cut(header, " ")
	if !found || credentials == "" {
		return "", "", &oaserrors.SecurityError{
			Type:    schemeType,
			Message: "malformed Authorization header",
		}
	}
	return token, credentials, nil
}
