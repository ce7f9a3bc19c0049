package httpvalidator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasguard/oaserrors"
)

func TestBodyRequired(t *testing.T) {
	v := newValidator(t)

	t.Run("absent required body records one error", func(t *testing.T) {
		req := newTestRequest("POST", "/pets")
		req.Params.Header.Set("X-Request-Id", "r-1")

		result := v.Validate(req)
		require.Len(t, result.Errors, 1)
		assert.ErrorIs(t, result.Errors[0], oaserrors.ErrMissingBody)
		assert.False(t, result.BodyPresent)
		assert.Nil(t, result.Body)

		// parameters were unaffected
		assert.Equal(t, "r-1", result.HeaderParams["X-Request-Id"])
	})

	t.Run("absent optional body is silent", func(t *testing.T) {
		req := newTestRequest("PUT", "/pets/42")
		req.Params.Header.Set("X-Api-Key", "secret")

		result := v.Validate(req)
		require.True(t, result.Valid(), "errors: %v", result.Errors)
		assert.False(t, result.BodyPresent)
		assert.Nil(t, result.Body)
	})

	t.Run("zero byte body is present", func(t *testing.T) {
		req := newTestRequest("POST", "/pets")
		req.Params.Header.Set("X-Request-Id", "r-1")
		req.ContentType = "application/json"
		req.Body = []byte{}

		result := v.Validate(req)
		assert.True(t, result.BodyPresent)
		require.Len(t, result.Errors, 1)
		assert.ErrorIs(t, result.Errors[0], oaserrors.ErrDeserialize)
	})
}

func TestBodyMediaTypes(t *testing.T) {
	v := newValidator(t)

	t.Run("undeclared content type records one error", func(t *testing.T) {
		req := newTestRequest("POST", "/pets")
		req.Params.Header.Set("X-Request-Id", "r-1")
		req.ContentType = "text/csv"
		req.Body = []byte("a,b,c")

		result := v.Validate(req)
		require.Len(t, result.Errors, 1)

		var mterr *oaserrors.MediaTypeError
		require.ErrorAs(t, result.Errors[0], &mterr)
		assert.Equal(t, "text/csv", mterr.ContentType)
		assert.Equal(t, []string{"application/json", "text/plain"}, mterr.Declared)
		assert.False(t, mterr.Response)
		assert.Nil(t, result.Body)
	})

	t.Run("content type parameters are tolerated", func(t *testing.T) {
		req := newTestRequest("POST", "/pets")
		req.Params.Header.Set("X-Request-Id", "r-1")
		req.ContentType = "application/json; charset=utf-8"
		req.Body = []byte(`{"name":"rex"}`)

		result := v.Validate(req)
		require.True(t, result.Valid(), "errors: %v", result.Errors)
		assert.Equal(t, map[string]any{"name": "rex"}, result.Body)
	})

	t.Run("alternate declared media type", func(t *testing.T) {
		req := newTestRequest("POST", "/pets")
		req.Params.Header.Set("X-Request-Id", "r-1")
		req.ContentType = "text/plain"
		req.Body = []byte("a plain note")

		result := v.Validate(req)
		require.True(t, result.Valid(), "errors: %v", result.Errors)
		assert.Equal(t, "a plain note", result.Body)
	})
}

func TestBodySchema(t *testing.T) {
	v := newValidator(t)

	newPost := func(body string) *Request {
		req := newTestRequest("POST", "/pets")
		req.Params.Header.Set("X-Request-Id", "r-1")
		req.ContentType = "application/json"
		req.Body = []byte(body)
		return req
	}

	t.Run("valid body decodes with coercion", func(t *testing.T) {
		result := v.Validate(newPost(`{"name":"rex","tag":"dog"}`))
		require.True(t, result.Valid(), "errors: %v", result.Errors)
		assert.True(t, result.BodyPresent)
		assert.Equal(t, map[string]any{"name": "rex", "tag": "dog"}, result.Body)
	})

	t.Run("schema violation is a body error", func(t *testing.T) {
		result := v.Validate(newPost(`{"name":"rex","tag":"lizard"}`))
		require.Len(t, result.Errors, 1)

		var scerr *oaserrors.SchemaError
		require.ErrorAs(t, result.Errors[0], &scerr)
		assert.Equal(t, "body", scerr.In)
		assert.Empty(t, scerr.Name)
		assert.Nil(t, result.Body)
	})

	t.Run("missing required property", func(t *testing.T) {
		result := v.Validate(newPost(`{"tag":"dog"}`))
		require.Len(t, result.Errors, 1)
		assert.ErrorIs(t, result.Errors[0], oaserrors.ErrSchema)
	})

	t.Run("read-only property rejected in a request", func(t *testing.T) {
		result := v.Validate(newPost(`{"name":"rex","id":7}`))
		require.Len(t, result.Errors, 1)

		var scerr *oaserrors.SchemaError
		require.ErrorAs(t, result.Errors[0], &scerr)
		assert.Equal(t, "body", scerr.In)
		require.NotEmpty(t, scerr.Failures)
		assert.Contains(t, scerr.Failures[0], "read-only")
	})

	t.Run("malformed payload is a deserialize error", func(t *testing.T) {
		result := v.Validate(newPost(`{"name":`))
		require.Len(t, result.Errors, 1)

		var dserr *oaserrors.DeserializeError
		require.ErrorAs(t, result.Errors[0], &dserr)
		assert.Equal(t, "body", dserr.In)
	})

	t.Run("undeclared body is ignored", func(t *testing.T) {
		req := newTestRequest("GET", "/pets/42")
		req.Params.Header.Set("X-Api-Key", "secret")
		req.ContentType = "application/json"
		req.Body = []byte(`{"stray": true}`)

		result := v.Validate(req)
		require.True(t, result.Valid(), "errors: %v", result.Errors)
		assert.False(t, result.BodyPresent)
		assert.Nil(t, result.Body)
	})
}

func TestBodyErrorsOrderedAfterParameterErrors(t *testing.T) {
	v := newValidator(t)

	req := newTestRequest("POST", "/pets")
	// required header missing AND body malformed
	req.ContentType = "application/json"
	req.Body = []byte(`{"name":`)

	result := v.Validate(req)
	require.Len(t, result.Errors, 2)
	assert.ErrorIs(t, result.Errors[0], oaserrors.ErrMissingParameter)
	assert.ErrorIs(t, result.Errors[1], oaserrors.ErrDeserialize)
}
