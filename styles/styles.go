// Package styles deserializes HTTP parameter values according to OpenAPI
// serialization styles.
//
// Import path: github.com/erraggy/oasguard/styles
//
// Each parameter location has default styles:
//
//	| Location | Default Style | Default Explode |
//	|----------|---------------|-----------------|
//	| path     | simple        | false           |
//	| query    | form          | true            |
//	| header   | simple        | false           |
//	| cookie   | form          | true            |
//
// A [Registry] maps style names to deserialization functions. The seven
// styles the OpenAPI specification defines are built in; custom styles can
// be registered. Deserializers produce structural values (string, []any,
// map[string]any) without primitive coercion; coercion toward the declared
// schema happens in the casting package.
package styles

import (
	"errors"
	"fmt"
	"strings"

	"github.com/erraggy/oasguard/internal/schemautil"
	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/spec"
)

// Style names defined by the OpenAPI specification.
const (
	StyleSimple         = "simple"
	StyleLabel          = "label"
	StyleMatrix         = "matrix"
	StyleForm           = "form"
	StyleSpaceDelimited = "spaceDelimited"
	StylePipeDelimited  = "pipeDelimited"
	StyleDeepObject     = "deepObject"
)

// Style returns the parameter's declared style, or the default for its
// location: simple for path and header, form for query and cookie.
func Style(param spec.Node) string {
	if s := param.StrOr("style", ""); s != "" {
		return s
	}
	switch param.StrOr("in", "") {
	case "path", "header":
		return StyleSimple
	default:
		return StyleForm
	}
}

// Explode returns the parameter's declared explode flag, defaulting to
// true only for form style.
func Explode(param spec.Node) bool {
	if v, ok := param.Get("explode"); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return Style(param) == StyleForm
}

// AsList reports whether the parameter's raw value is fetched as the full
// sequence of occurrences rather than a single value. True when the
// declared schema's type is array or object.
func AsList(param spec.Node) bool {
	if !param.Has("schema") {
		return false
	}
	switch schemautil.PrimaryType(param.Child("schema")) {
	case "array", "object":
		return true
	}
	return false
}

// RawValue is the raw, undecoded fetch result for one parameter.
type RawValue struct {
	// Value is the single fetched occurrence
	Value string

	// Values holds every occurrence in order; set when the parameter is
	// fetched as a list
	Values []string

	// Fields holds the location entries whose keys carry the parameter
	// name as a bracket prefix; set for deepObject parameters
	Fields map[string][]string

	// IsList reports whether Values is the fetched form
	IsList bool
}

// Input is what a style deserializer receives for one parameter.
type Input struct {
	// Name is the parameter name
	Name string

	// Schema is the declared schema; the zero node when absent
	Schema spec.Node

	// Explode is the effective explode flag
	Explode bool

	// Raw is the fetched value
	Raw RawValue
}

// Func deserializes one raw parameter value into its structural form.
type Func func(in Input) (any, error)

// Registry maps style names to deserialization functions.
type Registry struct {
	funcs map[string]Func
}

// NewRegistry returns a registry with the seven built-in styles registered.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]Func, 7)}
	r.Register(StyleSimple, deserializeSimple)
	r.Register(StyleLabel, deserializeLabel)
	r.Register(StyleMatrix, deserializeMatrix)
	r.Register(StyleForm, deserializeForm)
	r.Register(StyleSpaceDelimited, delimited(" "))
	r.Register(StylePipeDelimited, delimited("|"))
	r.Register(StyleDeepObject, deserializeDeepObject)
	return r
}

// Register installs fn for the given style name, replacing any existing
// registration.
func (r *Registry) Register(style string, fn Func) {
	r.funcs[style] = fn
}

// Deserialize runs the style deserializer declared (or defaulted) by the
// parameter against the raw fetched value. Failures are reported as
// [oaserrors.DeserializeError].
func (r *Registry) Deserialize(param spec.Node, raw RawValue) (any, error) {
	out, err := r.DeserializeStyle(Style(param), Input{
		Name:    param.StrOr("name", ""),
		Schema:  param.Child("schema"),
		Explode: Explode(param),
		Raw:     raw,
	})
	if err != nil {
		var dserr *oaserrors.DeserializeError
		if errors.As(err, &dserr) && dserr.In == "" {
			dserr.In = param.StrOr("in", "")
		}
		return nil, err
	}
	return out, nil
}

// DeserializeStyle runs the named style against a caller-built input. Use
// this where the style is fixed by context rather than declared on a
// parameter object, as with response headers.
func (r *Registry) DeserializeStyle(style string, in Input) (any, error) {
	fn, ok := r.funcs[style]
	if !ok {
		return nil, &oaserrors.DeserializeError{
			Name:    in.Name,
			Style:   style,
			Value:   in.Raw.Value,
			Message: "unknown style",
		}
	}

	out, err := fn(in)
	if err != nil {
		var dserr *oaserrors.DeserializeError
		if errors.As(err, &dserr) {
			return nil, err
		}
		return nil, &oaserrors.DeserializeError{
			Name:  in.Name,
			Style: style,
			Value: in.Raw.Value,
			Cause: err,
		}
	}
	return out, nil
}

// deserializeSimple handles the "simple" style (comma-separated).
// Used by path and header parameters by default.
func deserializeSimple(in Input) (any, error) {
	value := in.Raw.Value
	if in.Raw.IsList {
		// repeated occurrences and comma segments are equivalent items
		value = strings.Join(in.Raw.Values, ",")
	}
	if !in.Schema.Exists() {
		return value, nil
	}
	if schemautil.IsArray(in.Schema) {
		return toList(strings.Split(value, ",")), nil
	}
	if schemautil.IsObject(in.Schema) {
		return pairObject(strings.Split(value, ","), in.Explode), nil
	}
	return value, nil
}

// deserializeLabel handles the "label" style (dot-prefixed).
func deserializeLabel(in Input) (any, error) {
	value := in.Raw.Value
	if !strings.HasPrefix(value, ".") {
		return value, nil
	}
	value = value[1:]

	if !in.Schema.Exists() {
		return value, nil
	}
	if schemautil.IsArray(in.Schema) {
		// explode=true: .a.b.c; explode=false: .a,b,c
		sep := ","
		if in.Explode {
			sep = "."
		}
		return toList(strings.Split(value, sep)), nil
	}
	if schemautil.IsObject(in.Schema) {
		if in.Explode {
			// .key=value.key2=value2
			return exploded(strings.Split(value, ".")), nil
		}
		// .key,value,key2,value2
		return pairObject(strings.Split(value, ","), false), nil
	}
	return value, nil
}

// deserializeMatrix handles the "matrix" style (semicolon-prefixed).
func deserializeMatrix(in Input) (any, error) {
	value := in.Raw.Value
	if !strings.HasPrefix(value, ";") {
		return value, nil
	}
	value = value[1:]
	prefix := in.Name + "="

	if !in.Schema.Exists() {
		return strings.TrimPrefix(value, prefix), nil
	}
	if schemautil.IsArray(in.Schema) {
		if in.Explode {
			// ;id=3;id=4;id=5
			var values []string
			for _, part := range strings.Split(value, ";") {
				if strings.HasPrefix(part, prefix) {
					values = append(values, part[len(prefix):])
				}
			}
			return toList(values), nil
		}
		// ;id=3,4,5
		if !strings.HasPrefix(value, prefix) {
			return nil, fmt.Errorf("matrix value %q missing %q prefix", value, prefix)
		}
		return toList(strings.Split(value[len(prefix):], ",")), nil
	}
	if schemautil.IsObject(in.Schema) {
		if in.Explode {
			// ;role=admin;firstName=Alex
			return exploded(strings.Split(value, ";")), nil
		}
		// ;obj=role,admin,firstName,Alex
		if !strings.HasPrefix(value, prefix) {
			return nil, fmt.Errorf("matrix value %q missing %q prefix", value, prefix)
		}
		return pairObject(strings.Split(value[len(prefix):], ","), false), nil
	}
	return strings.TrimPrefix(value, prefix), nil
}

// deserializeForm handles the "form" style (standard query string format).
func deserializeForm(in Input) (any, error) {
	single := in.Raw.Value
	if in.Raw.IsList && len(in.Raw.Values) > 0 {
		single = in.Raw.Values[0]
	}

	if !in.Schema.Exists() {
		return single, nil
	}
	if schemautil.IsArray(in.Schema) {
		if in.Raw.IsList && in.Explode {
			// explode=true: one occurrence per item (id=3&id=4&id=5)
			return toList(in.Raw.Values), nil
		}
		// explode=false: comma-separated in a single value (id=3,4,5)
		return toList(strings.Split(single, ",")), nil
	}
	if schemautil.IsObject(in.Schema) {
		if in.Explode {
			// exploded objects encode each property as its own key and
			// cannot be recovered from an occurrence of the bare name
			return single, nil
		}
		// explode=false: key,value pairs (obj=role,admin,firstName,Alex)
		return pairObject(strings.Split(single, ","), false), nil
	}
	return single, nil
}

// delimited builds the spaceDelimited and pipeDelimited deserializers.
func delimited(sep string) Func {
	return func(in Input) (any, error) {
		// repeated occurrences and delimited segments are equivalent items
		joined := in.Raw.Value
		if in.Raw.IsList {
			joined = strings.Join(in.Raw.Values, sep)
		}
		parts := strings.Split(joined, sep)

		if schemautil.IsArray(in.Schema) {
			return toList(parts), nil
		}
		if len(parts) == 1 {
			return parts[0], nil
		}
		return toList(parts), nil
	}
}

// deserializeDeepObject handles nested object notation like
// "filter[status]=active&filter[type]=user".
func deserializeDeepObject(in Input) (any, error) {
	prefix := in.Name + "["
	result := make(map[string]any)
	for key, values := range in.Raw.Fields {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := key[len(prefix):]
		end := strings.Index(rest, "]")
		if end < 1 {
			continue
		}
		prop := rest[:end]
		if len(values) == 1 {
			result[prop] = values[0]
		} else {
			result[prop] = toList(values)
		}
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("no %s[...] keys present", in.Name)
	}
	return result, nil
}

// exploded parses key=value segments into an object, skipping empty and
// malformed segments.
func exploded(parts []string) map[string]any {
	result := make(map[string]any)
	for _, part := range parts {
		if part == "" {
			continue
		}
		if idx := strings.Index(part, "="); idx > 0 {
			result[part[:idx]] = part[idx+1:]
		}
	}
	return result
}

// pairObject parses segments into an object. With explode the segments are
// key=value; without it they alternate key,value,key2,value2 and a
// trailing odd key is dropped.
func pairObject(parts []string, explode bool) map[string]any {
	if explode {
		return exploded(parts)
	}
	result := make(map[string]any)
	for i := 0; i+1 < len(parts); i += 2 {
		result[parts[i]] = parts[i+1]
	}
	return result
}

// toList converts string segments to the structural []any form.
func toList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
