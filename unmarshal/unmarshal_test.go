package unmarshal

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/spec"
)

const unmarshalFixture = `
openapi: 3.1.0
info:
  title: Unmarshal fixture
  version: 1.0.0
paths: {}
components:
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        id:
          type: integer
          readOnly: true
        name:
          type: string
        tag:
          $ref: '#/components/schemas/Tag'
        secret:
          type: string
          writeOnly: true
    Tag:
      type: string
      enum: [dog, cat]
    Code:
      type: string
      pattern: '^[A-Z]{3}$'
    Count:
      type: integer
    Ratio:
      type: number
    Audit:
      allOf:
        - type: object
          properties:
            createdAt:
              type: string
              format: date-time
        - type: object
          properties:
            note:
              type: string
    Event:
      type: object
      properties:
        day:
          type: string
          format: date
        at:
          type: string
          format: date-time
        payload:
          type: string
          format: byte
        token:
          type: string
          format: uuid
        count:
          type: integer
        ratio:
          type: number
        flags:
          type: array
          items:
            type: boolean
`

const legacyFixture = `
openapi: 3.0.3
info:
  title: Legacy fixture
  version: 1.0.0
paths: {}
components:
  schemas:
    Score:
      type: integer
      nullable: true
      minimum: 0
      exclusiveMinimum: true
    Label:
      type: string
`

func fixtureDoc(t *testing.T, input string) *spec.Document {
	t.Helper()
	doc, err := spec.Parse([]byte(input))
	require.NoError(t, err)
	return doc
}

func schemaNode(t *testing.T, doc *spec.Document, name string) spec.Node {
	t.Helper()
	node := doc.Root().Child("components").Child("schemas").Child(name)
	require.True(t, node.Exists(), "schema %s not found in fixture", name)
	return node
}

func TestNew(t *testing.T) {
	t.Run("nil document", func(t *testing.T) {
		u, err := New(nil)
		require.Error(t, err)
		assert.Nil(t, u)
		assert.Contains(t, err.Error(), "document cannot be nil")
	})

	t.Run("invalid context option", func(t *testing.T) {
		doc := fixtureDoc(t, unmarshalFixture)
		u, err := New(doc, WithContext(Context(9)))
		require.Error(t, err)
		assert.Nil(t, u)

		var cfgErr *oaserrors.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "WithContext", cfgErr.Option)
	})

	t.Run("defaults to request context", func(t *testing.T) {
		doc := fixtureDoc(t, unmarshalFixture)
		u, err := New(doc)
		require.NoError(t, err)
		assert.Equal(t, ContextRequest, u.Context())
	})
}

func TestUnmarshalScalars(t *testing.T) {
	doc := fixtureDoc(t, unmarshalFixture)
	u, err := New(doc)
	require.NoError(t, err)

	tests := []struct {
		name    string
		schema  string
		value   any
		want    any
		wantErr bool
	}{
		{name: "enum member", schema: "Tag", value: "dog", want: "dog"},
		{name: "enum violation", schema: "Tag", value: "bird", wantErr: true},
		{name: "pattern match", schema: "Code", value: "ABC", want: "ABC"},
		{name: "pattern violation", schema: "Code", value: "abc", wantErr: true},
		{name: "integer from int64", schema: "Count", value: int64(7), want: int64(7)},
		{name: "integer from json.Number", schema: "Count", value: json.Number("42"), want: int64(42)},
		{name: "integer type violation", schema: "Count", value: "seven", wantErr: true},
		{name: "number from json.Number", schema: "Ratio", value: json.Number("2.5"), want: 2.5},
		{name: "number from whole json.Number", schema: "Ratio", value: json.Number("3"), want: 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := u.Unmarshal(schemaNode(t, doc, tt.schema), tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, oaserrors.ErrSchema)

				var schemaErr *oaserrors.SchemaError
				require.ErrorAs(t, err, &schemaErr)
				assert.NotEmpty(t, schemaErr.Failures)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalFormats(t *testing.T) {
	doc := fixtureDoc(t, unmarshalFixture)
	u, err := New(doc)
	require.NoError(t, err)
	event := schemaNode(t, doc, "Event")

	t.Run("recognized formats become typed values", func(t *testing.T) {
		got, err := u.Unmarshal(event, map[string]any{
			"day":     "2024-06-01",
			"at":      "2024-06-01T10:30:00Z",
			"payload": "aGVsbG8=",
			"token":   "550E8400-E29B-41D4-A716-446655440000",
			"count":   json.Number("7"),
			"ratio":   json.Number("2.5"),
			"flags":   []any{true, false},
		})
		require.NoError(t, err)

		result, ok := got.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), result["day"])
		assert.Equal(t, time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC), result["at"])
		assert.Equal(t, []byte("hello"), result["payload"])
		assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", result["token"])
		assert.Equal(t, int64(7), result["count"])
		assert.Equal(t, 2.5, result["ratio"])
		assert.Equal(t, []any{true, false}, result["flags"])
	})

	t.Run("invalid date fails validation", func(t *testing.T) {
		_, err := u.Unmarshal(event, map[string]any{"day": "June 1st"})
		require.Error(t, err)
		assert.ErrorIs(t, err, oaserrors.ErrSchema)
	})

	t.Run("invalid base64 fails coercion", func(t *testing.T) {
		_, err := u.Unmarshal(event, map[string]any{"payload": "not base64!!"})
		require.Error(t, err)
		assert.ErrorIs(t, err, oaserrors.ErrUnmarshal)

		var unmErr *oaserrors.UnmarshalError
		require.ErrorAs(t, err, &unmErr)
		assert.Equal(t, "byte", unmErr.Format)
	})
}

func TestUnmarshalObjects(t *testing.T) {
	doc := fixtureDoc(t, unmarshalFixture)
	u, err := New(doc)
	require.NoError(t, err)
	pet := schemaNode(t, doc, "Pet")

	t.Run("referenced schema resolves", func(t *testing.T) {
		got, err := u.Unmarshal(pet, map[string]any{"name": "rex", "tag": "dog"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "rex", "tag": "dog"}, got)
	})

	t.Run("referenced schema rejects", func(t *testing.T) {
		_, err := u.Unmarshal(pet, map[string]any{"name": "rex", "tag": "bird"})
		require.Error(t, err)

		var schemaErr *oaserrors.SchemaError
		require.ErrorAs(t, err, &schemaErr)
		require.NotEmpty(t, schemaErr.Failures)
		assert.Contains(t, schemaErr.Failures[0], "/tag")
	})

	t.Run("missing required property", func(t *testing.T) {
		_, err := u.Unmarshal(pet, map[string]any{"tag": "dog"})
		require.Error(t, err)

		var schemaErr *oaserrors.SchemaError
		require.ErrorAs(t, err, &schemaErr)
		require.NotEmpty(t, schemaErr.Failures)
		assert.Contains(t, schemaErr.Failures[0], "name")
	})

	t.Run("undeclared properties pass through", func(t *testing.T) {
		got, err := u.Unmarshal(pet, map[string]any{"name": "rex", "color": "brown"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "rex", "color": "brown"}, got)
	})
}

func TestUnmarshalContext(t *testing.T) {
	doc := fixtureDoc(t, unmarshalFixture)
	pet := schemaNode(t, doc, "Pet")

	t.Run("read-only rejected in request", func(t *testing.T) {
		u, err := New(doc, WithContext(ContextRequest))
		require.NoError(t, err)

		_, err = u.Unmarshal(pet, map[string]any{"name": "rex", "id": json.Number("1")})
		require.Error(t, err)

		var schemaErr *oaserrors.SchemaError
		require.ErrorAs(t, err, &schemaErr)
		require.NotEmpty(t, schemaErr.Failures)
		assert.Contains(t, schemaErr.Failures[0], "read-only")
		assert.Contains(t, schemaErr.Failures[0], "/id")
	})

	t.Run("write-only allowed in request", func(t *testing.T) {
		u, err := New(doc)
		require.NoError(t, err)

		got, err := u.Unmarshal(pet, map[string]any{"name": "rex", "secret": "hunter2"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "rex", "secret": "hunter2"}, got)
	})

	t.Run("write-only rejected in response", func(t *testing.T) {
		u, err := New(doc, WithContext(ContextResponse))
		require.NoError(t, err)

		_, err = u.Unmarshal(pet, map[string]any{"name": "rex", "secret": "hunter2"})
		require.Error(t, err)

		var schemaErr *oaserrors.SchemaError
		require.ErrorAs(t, err, &schemaErr)
		require.NotEmpty(t, schemaErr.Failures)
		assert.Contains(t, schemaErr.Failures[0], "write-only")
	})

	t.Run("read-only allowed in response", func(t *testing.T) {
		u, err := New(doc, WithContext(ContextResponse))
		require.NoError(t, err)

		got, err := u.Unmarshal(pet, map[string]any{"name": "rex", "id": json.Number("1")})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "rex", "id": int64(1)}, got)
	})
}

func TestUnmarshalAllOf(t *testing.T) {
	doc := fixtureDoc(t, unmarshalFixture)
	u, err := New(doc)
	require.NoError(t, err)
	audit := schemaNode(t, doc, "Audit")

	got, err := u.Unmarshal(audit, map[string]any{
		"createdAt": "2024-01-02T03:04:05Z",
		"note":      "created",
	})
	require.NoError(t, err)

	result, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), result["createdAt"])
	assert.Equal(t, "created", result["note"])
}

func TestUnmarshalNullable(t *testing.T) {
	doc := fixtureDoc(t, legacyFixture)
	u, err := New(doc)
	require.NoError(t, err)

	t.Run("nullable accepts null", func(t *testing.T) {
		got, err := u.Unmarshal(schemaNode(t, doc, "Score"), nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("non-nullable rejects null", func(t *testing.T) {
		_, err := u.Unmarshal(schemaNode(t, doc, "Label"), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, oaserrors.ErrSchema)
	})

	t.Run("boolean exclusive bound converts", func(t *testing.T) {
		_, err := u.Unmarshal(schemaNode(t, doc, "Score"), int64(0))
		require.Error(t, err)
		assert.ErrorIs(t, err, oaserrors.ErrSchema)

		got, err := u.Unmarshal(schemaNode(t, doc, "Score"), int64(1))
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)
	})
}

func TestUnmarshalZeroSchema(t *testing.T) {
	doc := fixtureDoc(t, unmarshalFixture)
	u, err := New(doc)
	require.NoError(t, err)

	got, err := u.Unmarshal(spec.Node{}, "anything")
	require.NoError(t, err)
	assert.Equal(t, "anything", got)
}

func TestUnmarshalDoesNotMutateInput(t *testing.T) {
	doc := fixtureDoc(t, unmarshalFixture)
	u, err := New(doc)
	require.NoError(t, err)

	input := map[string]any{"day": "2024-06-01"}
	got, err := u.Unmarshal(schemaNode(t, doc, "Event"), input)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"day": "2024-06-01"}, input)
	result, ok := got.(map[string]any)
	require.True(t, ok)
	assert.IsType(t, time.Time{}, result["day"])
}

func TestContextString(t *testing.T) {
	assert.Equal(t, "request", ContextRequest.String())
	assert.Equal(t, "response", ContextResponse.String())
	assert.Equal(t, "unknown", Context(9).String())
}

// errors.Is is exercised above via testify; this anchors the sentinel
// identity for callers switching on tiers.
func TestUnmarshalErrorTiers(t *testing.T) {
	doc := fixtureDoc(t, unmarshalFixture)
	u, err := New(doc)
	require.NoError(t, err)

	_, schemaErr := u.Unmarshal(schemaNode(t, doc, "Tag"), "bird")
	assert.True(t, errors.Is(schemaErr, oaserrors.ErrSchema))
	assert.False(t, errors.Is(schemaErr, oaserrors.ErrUnmarshal))
}
