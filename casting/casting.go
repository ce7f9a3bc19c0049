// Package casting converts deserialized values toward the primitive shape
// their schema declares.
//
// Import path: github.com/erraggy/oasguard/casting
//
// Style deserializers and textual media types produce string tokens; [Cast]
// converts those tokens to Go values for integer, number, and boolean
// schemas and recurses into array items. Strings, objects, and untyped
// schemas pass through unchanged, as do nil values; schema validation
// happens in a later stage.
package casting

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/erraggy/oasguard/internal/schemautil"
	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/spec"
)

// Cast converts value toward the primitive type schema declares.
// Values already of the declared type pass through. Failures are reported
// as [oaserrors.CastError].
func Cast(schema spec.Node, value any) (any, error) {
	if value == nil || !schema.Exists() {
		return value, nil
	}

	switch schemautil.PrimaryType(schema) {
	case "integer":
		return castInteger(value)
	case "number":
		return castNumber(value)
	case "boolean":
		return castBoolean(value)
	case "array":
		return castArray(schema, value)
	default:
		// string, object, and untyped schemas keep the value as-is
		return value, nil
	}
}

func castInteger(value any) (any, error) {
	switch v := value.(type) {
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, &oaserrors.CastError{Value: value, Type: "integer", Cause: err}
		}
		return i, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, &oaserrors.CastError{Value: value, Type: "integer"}
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, &oaserrors.CastError{Value: value, Type: "integer"}
		}
		return int64(v), nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil, &oaserrors.CastError{Value: value, Type: "integer", Cause: err}
		}
		return i, nil
	}
	return nil, &oaserrors.CastError{Value: value, Type: "integer"}
}

func castNumber(value any) (any, error) {
	switch v := value.(type) {
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, &oaserrors.CastError{Value: value, Type: "number", Cause: err}
		}
		return f, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, &oaserrors.CastError{Value: value, Type: "number", Cause: err}
		}
		return f, nil
	}
	return nil, &oaserrors.CastError{Value: value, Type: "number"}
}

func castBoolean(value any) (any, error) {
	switch v := value.(type) {
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, &oaserrors.CastError{Value: value, Type: "boolean", Cause: err}
		}
		return b, nil
	case bool:
		return v, nil
	}
	return nil, &oaserrors.CastError{Value: value, Type: "boolean"}
}

func castArray(schema spec.Node, value any) (any, error) {
	items := schemautil.Items(schema)

	var elems []any
	switch v := value.(type) {
	case []any:
		elems = v
	case []string:
		elems = make([]any, len(v))
		for i, s := range v {
			elems[i] = s
		}
	default:
		return nil, &oaserrors.CastError{
			Value: value,
			Type:  "array",
			Cause: fmt.Errorf("value is not a sequence"),
		}
	}

	out := make([]any, len(elems))
	for i, elem := range elems {
		cast, err := Cast(items, elem)
		if err != nil {
			return nil, err
		}
		out[i] = cast
	}
	return out, nil
}
