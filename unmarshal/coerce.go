package unmarshal

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/erraggy/oasguard/internal/schemautil"
	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/spec"
)

// normalizeValue converts a deserialized value into the canonical form
// the schema validator expects: integer kinds become json.Number, raw
// bytes become strings, and containers are copied so callers' values are
// never mutated.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case int:
		return json.Number(strconv.FormatInt(int64(v), 10))
	case int32:
		return json.Number(strconv.FormatInt(int64(v), 10))
	case int64:
		return json.Number(strconv.FormatInt(v, 10))
	case uint:
		return json.Number(strconv.FormatUint(uint64(v), 10))
	case uint64:
		return json.Number(strconv.FormatUint(v, 10))
	case float32:
		return float64(v)
	case []byte:
		return string(v)
	case []string:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = elem
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = normalizeValue(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, elem := range v {
			out[key] = normalizeValue(elem)
		}
		return out
	default:
		return value
	}
}

// coerce walks a schema-valid value and produces the final Go value:
// numbers take their declared numeric type and recognized string formats
// become typed values. Unrecognized formats pass through unchanged.
func coerce(schema spec.Node, value any) (any, error) {
	switch v := value.(type) {
	case json.Number:
		return coerceNumber(schema, v)
	case string:
		return coerceString(schema, v)
	case []any:
		items := itemsSchema(schema)
		out := make([]any, len(v))
		for i, elem := range v {
			coerced, err := coerce(items, elem)
			if err != nil {
				return nil, err
			}
			out[i] = coerced
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, elem := range v {
			coerced, err := coerce(propertySchema(schema, key), elem)
			if err != nil {
				return nil, err
			}
			out[key] = coerced
		}
		return out, nil
	default:
		return value, nil
	}
}

// coerceNumber resolves a json.Number into int64 or float64 based on the
// declared type, preferring int64 when the schema does not say.
func coerceNumber(schema spec.Node, v json.Number) (any, error) {
	switch schemautil.PrimaryType(schema) {
	case "number":
		f, err := v.Float64()
		if err != nil {
			return nil, &oaserrors.UnmarshalError{Format: "number", Value: v.String(), Cause: err}
		}
		return f, nil
	default:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, &oaserrors.UnmarshalError{Format: "integer", Value: v.String(), Cause: err}
		}
		return f, nil
	}
}

// coerceString converts recognized string formats into their Go values:
//
//	date      -> time.Time at UTC midnight
//	date-time -> time.Time with the declared offset
//	byte      -> []byte decoded from base64
//	binary    -> []byte
//	uuid      -> canonical lowercase string
func coerceString(schema spec.Node, v string) (any, error) {
	format := schema.StrOr("format", "")
	switch format {
	case "date":
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return nil, &oaserrors.UnmarshalError{Format: format, Value: v, Cause: err}
		}
		return t, nil
	case "date-time":
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, &oaserrors.UnmarshalError{Format: format, Value: v, Cause: err}
		}
		return t, nil
	case "byte":
		decoded, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, &oaserrors.UnmarshalError{Format: format, Value: v, Cause: err}
		}
		return decoded, nil
	case "binary":
		return []byte(v), nil
	case "uuid":
		return strings.ToLower(v), nil
	default:
		return v, nil
	}
}

// propertySchema resolves the schema for a named property, looking
// through allOf compositions when the property is not declared directly.
func propertySchema(schema spec.Node, name string) spec.Node {
	if prop := schemautil.Property(schema, name); prop.Exists() {
		return prop
	}
	allOf := schema.Child("allOf")
	for i := 0; i < allOf.Len(); i++ {
		if prop := propertySchema(allOf.At(i), name); prop.Exists() {
			return prop
		}
	}
	return spec.Node{}
}

// itemsSchema resolves the element schema for an array, looking through
// allOf compositions when items is not declared directly.
func itemsSchema(schema spec.Node) spec.Node {
	if items := schemautil.Items(schema); items.Exists() {
		return items
	}
	allOf := schema.Child("allOf")
	for i := 0; i < allOf.Len(); i++ {
		if items := itemsSchema(allOf.At(i)); items.Exists() {
			return items
		}
	}
	return spec.Node{}
}
