package security

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/spec"
)

const securityFixture = `
openapi: 3.1.0
info:
  title: Security fixture
  version: 1.0.0
paths: {}
components:
  securitySchemes:
    ApiKeyHeader:
      type: apiKey
      name: X-API-Key
      in: header
    ApiKeyQuery:
      type: apiKey
      name: api_key
      in: query
    ApiKeyCookie:
      type: apiKey
      name: session
      in: cookie
    BasicAuth:
      type: http
      scheme: basic
    BearerAuth:
      type: http
      scheme: bearer
    OAuth:
      type: oauth2
      flows:
        clientCredentials:
          tokenUrl: https://auth.example.com/token
          scopes: {}
    OIDC:
      type: openIdConnect
      openIdConnectUrl: https://auth.example.com/.well-known/openid-configuration
    Mutual:
      type: mutualTLS
`

// mapSource satisfies Source with "in name" keys.
type mapSource map[string]string

func (m mapSource) Lookup(in, name string) (string, bool) {
	v, ok := m[in+" "+name]
	return v, ok
}

func schemeNode(t *testing.T, name string) spec.Node {
	t.Helper()
	doc, err := spec.Parse([]byte(securityFixture))
	require.NoError(t, err)
	node := doc.Root().Child("components").Child("securitySchemes").Child(name)
	require.True(t, node.Exists(), "scheme %s not found in fixture", name)
	return node
}

func TestResolveAPIKey(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		name    string
		scheme  string
		src     mapSource
		want    any
		wantMsg string
	}{
		{
			name:   "header key present",
			scheme: "ApiKeyHeader",
			src:    mapSource{"header X-API-Key": "k-123"},
			want:   "k-123",
		},
		{
			name:   "query key present",
			scheme: "ApiKeyQuery",
			src:    mapSource{"query api_key": "q-456"},
			want:   "q-456",
		},
		{
			name:   "cookie key present",
			scheme: "ApiKeyCookie",
			src:    mapSource{"cookie session": "s-789"},
			want:   "s-789",
		},
		{
			name:    "header key absent",
			scheme:  "ApiKeyHeader",
			src:     mapSource{},
			wantMsg: `missing header credential "X-API-Key"`,
		},
		{
			name:    "key in wrong location",
			scheme:  "ApiKeyQuery",
			src:     mapSource{"header api_key": "q-456"},
			wantMsg: `missing query credential "api_key"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.Resolve(schemeNode(t, tt.scheme), tt.src)
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, oaserrors.ErrSecurity)

				var secErr *oaserrors.SecurityError
				require.ErrorAs(t, err, &secErr)
				assert.Equal(t, "apiKey", secErr.Type)
				assert.Contains(t, secErr.Message, tt.wantMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveHTTP(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		name    string
		scheme  string
		auth    string
		want    any
		wantMsg string
	}{
		{
			name:   "basic credentials",
			scheme: "BasicAuth",
			auth:   "Basic dXNlcjpwYXNz",
			want:   "dXNlcjpwYXNz",
		},
		{
			name:   "scheme token case-insensitive",
			scheme: "BasicAuth",
			auth:   "basic dXNlcjpwYXNz",
			want:   "dXNlcjpwYXNz",
		},
		{
			name:   "bearer via http scheme",
			scheme: "BearerAuth",
			auth:   "Bearer tok-1",
			want:   "tok-1",
		},
		{
			name:    "scheme mismatch",
			scheme:  "BasicAuth",
			auth:    "Bearer tok-1",
			wantMsg: `authorization scheme "Bearer" does not match declared scheme "basic"`,
		},
		{
			name:    "no space in header",
			scheme:  "BasicAuth",
			auth:    "BasicdXNlcjpwYXNz",
			wantMsg: "malformed Authorization header",
		},
		{
			name:    "empty credentials",
			scheme:  "BasicAuth",
			auth:    "Basic ",
			wantMsg: "malformed Authorization header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := mapSource{"header Authorization": tt.auth}
			got, err := registry.Resolve(schemeNode(t, tt.scheme), src)
			if tt.wantMsg != "" {
				require.Error(t, err)

				var secErr *oaserrors.SecurityError
				require.ErrorAs(t, err, &secErr)
				assert.Equal(t, "http", secErr.Type)
				assert.Contains(t, secErr.Message, tt.wantMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("missing header", func(t *testing.T) {
		_, err := registry.Resolve(schemeNode(t, "BasicAuth"), mapSource{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing Authorization header")
	})
}

func TestResolveBearer(t *testing.T) {
	registry := NewRegistry()

	t.Run("oauth2 token", func(t *testing.T) {
		src := mapSource{"header Authorization": "Bearer tok-oauth"}
		got, err := registry.Resolve(schemeNode(t, "OAuth"), src)
		require.NoError(t, err)
		assert.Equal(t, "tok-oauth", got)
	})

	t.Run("openIdConnect token", func(t *testing.T) {
		src := mapSource{"header Authorization": "bearer tok-oidc"}
		got, err := registry.Resolve(schemeNode(t, "OIDC"), src)
		require.NoError(t, err)
		assert.Equal(t, "tok-oidc", got)
	})

	t.Run("non-bearer credentials", func(t *testing.T) {
		src := mapSource{"header Authorization": "Token tok-1"}
		_, err := registry.Resolve(schemeNode(t, "OAuth"), src)
		require.Error(t, err)

		var secErr *oaserrors.SecurityError
		require.ErrorAs(t, err, &secErr)
		assert.Equal(t, "oauth2", secErr.Type)
		assert.Contains(t, secErr.Message, `expected Bearer credentials, got "Token"`)
	})
}

func TestResolveUnsupportedType(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Resolve(schemeNode(t, "Mutual"), mapSource{})
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrSecurity)

	var secErr *oaserrors.SecurityError
	require.ErrorAs(t, err, &secErr)
	assert.Equal(t, "mutualTLS", secErr.Type)
	assert.Contains(t, secErr.Message, `unsupported security scheme type "mutualTLS"`)
}

func TestRegister(t *testing.T) {
	t.Run("replaces standard provider", func(t *testing.T) {
		registry := NewRegistry()
		registry.Register("apiKey", func(scheme spec.Node, src Source) (any, error) {
			return "verified", nil
		})

		got, err := registry.Resolve(schemeNode(t, "ApiKeyHeader"), mapSource{})
		require.NoError(t, err)
		assert.Equal(t, "verified", got)
	})

	t.Run("zero registry accepts providers", func(t *testing.T) {
		var registry Registry
		registry.Register("mutualTLS", func(scheme spec.Node, src Source) (any, error) {
			return "cert", nil
		})

		got, err := registry.Resolve(schemeNode(t, "Mutual"), mapSource{})
		require.NoError(t, err)
		assert.Equal(t, "cert", got)
	})

	t.Run("plain provider errors are wrapped", func(t *testing.T) {
		registry := NewRegistry()
		registry.Register("http", func(scheme spec.Node, src Source) (any, error) {
			return nil, errors.New("issuer unreachable")
		})

		_, err := registry.Resolve(schemeNode(t, "BasicAuth"), mapSource{})
		require.Error(t, err)
		assert.ErrorIs(t, err, oaserrors.ErrSecurity)

		var secErr *oaserrors.SecurityError
		require.ErrorAs(t, err, &secErr)
		assert.Equal(t, "http", secErr.Type)
		assert.Contains(t, err.Error(), "issuer unreachable")
	})
}
