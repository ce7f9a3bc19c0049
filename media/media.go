// Package media selects request and response media-type declarations and
// deserializes payloads.
//
// Import path: github.com/erraggy/oasguard/media
//
// [Select] resolves a Content-Type header against the media types a
// request body or response declares, trying an exact match before wildcard
// ranges ("text/*", "*/*"). A [Registry] maps media-type patterns to
// [DeserializeFunc] implementations; JSON (including "+json" suffix
// types), form-urlencoded, text (charset-aware), and octet-stream are
// built in, and custom deserializers can be registered.
package media

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/spec"
)

// Select resolves contentType against the declared content map and returns
// the matching media-type node along with the declared key that matched.
// Exact matches win over "type/*" ranges, which win over "*/*"; within a
// tier the first declared key wins. No match is reported as
// [oaserrors.MediaTypeError].
func Select(contentType string, content spec.Node) (spec.Node, string, error) {
	parsed, _ := splitMediaType(contentType)
	declared := content.Keys()

	if parsed != "" {
		for _, key := range declared {
			if strings.EqualFold(key, parsed) {
				return content.Child(key), key, nil
			}
		}
		for _, key := range declared {
			if key != "*/*" && strings.Contains(key, "*") && matchPattern(key, parsed) {
				return content.Child(key), key, nil
			}
		}
		for _, key := range declared {
			if key == "*/*" {
				return content.Child(key), key, nil
			}
		}
	}

	return spec.Node{}, "", &oaserrors.MediaTypeError{
		ContentType: contentType,
		Declared:    declared,
	}
}

// DeserializeFunc decodes one payload. params carries the media-type
// parameters from the Content-Type header (such as charset).
type DeserializeFunc func(data []byte, params map[string]string) (any, error)

// Registry maps media-type patterns to deserializers.
type Registry struct {
	funcs map[string]DeserializeFunc
}

// NewRegistry returns a registry with the built-in deserializers
// registered: application/json, application/x-www-form-urlencoded,
// text/*, and application/octet-stream.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]DeserializeFunc, 4)}
	r.Register("application/json", DeserializeJSON)
	r.Register("application/x-www-form-urlencoded", DeserializeForm)
	r.Register("text/*", DeserializeText)
	r.Register("application/octet-stream", DeserializeBytes)
	return r
}

// Register installs fn for the given media-type pattern, replacing any
// existing registration. The pattern may be concrete ("application/xml")
// or a range ("image/*").
func (r *Registry) Register(pattern string, fn DeserializeFunc) {
	r.funcs[strings.ToLower(pattern)] = fn
}

// Deserialize decodes data according to mediaType. Suffix types such as
// "application/vnd.api+json" resolve to their base deserializer. Failures
// and unregistered media types are reported as
// [oaserrors.DeserializeError].
func (r *Registry) Deserialize(mediaType string, data []byte) (any, error) {
	mt, params := splitMediaType(mediaType)

	fn := r.lookup(mt)
	if fn == nil {
		return nil, &oaserrors.DeserializeError{
			MediaType: mediaType,
			Message:   "no deserializer registered",
		}
	}

	out, err := fn(data, params)
	if err != nil {
		var dserr *oaserrors.DeserializeError
		if errors.As(err, &dserr) {
			return nil, err
		}
		return nil, &oaserrors.DeserializeError{MediaType: mediaType, Cause: err}
	}
	return out, nil
}

func (r *Registry) lookup(mt string) DeserializeFunc {
	if fn, ok := r.funcs[mt]; ok {
		return fn
	}

	// "+json" style structured-syntax suffixes resolve to the base type
	if plus := strings.LastIndex(mt, "+"); plus != -1 {
		if slash := strings.Index(mt, "/"); slash != -1 && slash < plus {
			if fn, ok := r.funcs[mt[:slash+1]+mt[plus+1:]]; ok {
				return fn
			}
		}
	}

	for pattern, fn := range r.funcs {
		if strings.Contains(pattern, "*") && matchPattern(pattern, mt) {
			return fn
		}
	}
	return nil
}

// DeserializeJSON decodes a JSON payload. Numbers decode as json.Number to
// preserve precision for later casting.
func DeserializeJSON(data []byte, _ map[string]string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("invalid JSON: trailing data after top-level value")
	}
	return v, nil
}

// DeserializeForm decodes an application/x-www-form-urlencoded payload.
// Single-valued keys map to their value, repeated keys to a list.
func DeserializeForm(data []byte, _ map[string]string) (any, error) {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, fmt.Errorf("invalid form payload: %w", err)
	}

	out := make(map[string]any, len(values))
	for key, vs := range values {
		if len(vs) == 1 {
			out[key] = vs[0]
			continue
		}
		list := make([]any, len(vs))
		for i, v := range vs {
			list[i] = v
		}
		out[key] = list
	}
	return out, nil
}

// DeserializeText decodes a textual payload, honoring the charset
// media-type parameter. Payloads without a charset (or in UTF-8) pass
// through unchanged.
func DeserializeText(data []byte, params map[string]string) (any, error) {
	charset := params["charset"]
	if charset == "" || strings.EqualFold(charset, "utf-8") {
		return string(data), nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("decode charset %q: %w", charset, err)
	}
	return string(decoded), nil
}

// DeserializeBytes passes the raw payload through.
func DeserializeBytes(data []byte, _ map[string]string) (any, error) {
	return data, nil
}

// splitMediaType parses a Content-Type value into its lowercase media type
// and parameters, tolerating bare values mime.ParseMediaType rejects.
func splitMediaType(contentType string) (string, map[string]string) {
	mt, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType)), nil
	}
	return mt, params
}

// matchPattern reports whether a declared media-type range such as
// "text/*" or "*/*" covers the concrete media type.
func matchPattern(pattern, mediaType string) bool {
	ps := strings.SplitN(strings.ToLower(pattern), "/", 2)
	ms := strings.SplitN(mediaType, "/", 2)
	if len(ps) != 2 || len(ms) != 2 {
		return false
	}
	if ps[0] != "*" && ps[0] != ms[0] {
		return false
	}
	return ps[1] == "*" || ps[1] == ms[1]
}
