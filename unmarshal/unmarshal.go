// Package unmarshal validates values against the schemas a specification
// declares and produces the final typed result.
//
// Import path: github.com/erraggy/oasguard/unmarshal
//
// An [Unmarshaller] is built once per document. The whole document is
// registered as a single JSON Schema compiler resource, so internal $ref
// chains resolve naturally; individual schema nodes compile on first use
// and are cached by JSON Pointer. [Unmarshaller.Unmarshal] validates a
// value, enforces the readOnly/writeOnly direction declared by its
// context, and coerces string formats (date, date-time, byte, binary,
// uuid) into Go values.
package unmarshal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/spec"
)

// Context selects which direction a value travels, deciding whether
// readOnly or writeOnly properties are rejected.
type Context int

const (
	// ContextRequest validates values arriving in requests; readOnly
	// properties must be absent
	ContextRequest Context = iota

	// ContextResponse validates values returned in responses; writeOnly
	// properties must be absent
	ContextResponse
)

// String returns the context name.
func (c Context) String() string {
	switch c {
	case ContextRequest:
		return "request"
	case ContextResponse:
		return "response"
	default:
		return "unknown"
	}
}

// schemaResourceURL is the compiler resource the document registers under.
// Schema nodes compile as fragments of this URL.
const schemaResourceURL = "https://oasguard.local/document.json"

// maxSchemaCacheSize is the upper bound on cached compiled schemas.
// When exceeded, the cache is cleared to prevent unbounded growth.
const maxSchemaCacheSize = 1000

// config holds Unmarshaller configuration.
type config struct {
	ctx Context
}

// Option configures an Unmarshaller.
type Option func(*config) error

func defaultConfig() *config {
	return &config{ctx: ContextRequest}
}

// WithContext sets the validation direction. The default is
// [ContextRequest].
func WithContext(ctx Context) Option {
	return func(c *config) error {
		if ctx != ContextRequest && ctx != ContextResponse {
			return &oaserrors.ConfigError{
				Option:  "WithContext",
				Value:   ctx,
				Message: "context must be ContextRequest or ContextResponse",
			}
		}
		c.ctx = ctx
		return nil
	}
}

// Unmarshaller validates and coerces values against a document's schemas.
// It is safe for concurrent use.
type Unmarshaller struct {
	doc *spec.Document
	ctx Context

	// compiler is guarded by mu; compiled schemas are concurrency-safe
	compiler *jsonschema.Compiler
	mu       sync.Mutex

	// cache maps schema JSON Pointers to compiled schemas
	cache      sync.Map
	cacheCount atomic.Int32

	printer *message.Printer
}

// New builds an Unmarshaller for the given document.
func New(doc *spec.Document, opts ...Option) (*Unmarshaller, error) {
	if doc == nil {
		return nil, fmt.Errorf("unmarshal: document cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	resource, err := documentResource(doc)
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft2020)
	compiler.AssertFormat()
	if err := compiler.AddResource(schemaResourceURL, resource); err != nil {
		return nil, fmt.Errorf("unmarshal: register document resource: %w", err)
	}

	return &Unmarshaller{
		doc:      doc,
		ctx:      cfg.ctx,
		compiler: compiler,
		printer:  message.NewPrinter(language.English),
	}, nil
}

// Context returns the validation direction this Unmarshaller enforces.
func (u *Unmarshaller) Context() Context {
	return u.ctx
}

// Unmarshal validates value against the schema node and returns the final
// coerced value. Validation failures are reported as
// [oaserrors.SchemaError], coercion failures as
// [oaserrors.UnmarshalError]. A zero schema node passes the value through.
func (u *Unmarshaller) Unmarshal(schema spec.Node, value any) (any, error) {
	if !schema.Exists() {
		return value, nil
	}

	compiled, err := u.compiled(schema)
	if err != nil {
		return nil, &oaserrors.SchemaError{Value: value, Cause: err}
	}

	normalized := normalizeValue(value)
	if err := compiled.Validate(normalized); err != nil {
		return nil, u.schemaError(value, err)
	}

	if violations := u.contextViolations(schema, normalized, ""); len(violations) > 0 {
		return nil, &oaserrors.SchemaError{Value: value, Failures: violations}
	}

	return coerce(schema, normalized)
}

// compiled returns the compiled schema for a node, compiling and caching
// it on first use.
func (u *Unmarshaller) compiled(schema spec.Node) (*jsonschema.Schema, error) {
	ptr := schema.Pointer()
	if cached, ok := u.cache.Load(ptr); ok {
		return cached.(*jsonschema.Schema), nil
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if cached, ok := u.cache.Load(ptr); ok {
		return cached.(*jsonschema.Schema), nil
	}

	compiled, err := u.compiler.Compile(schemaResourceURL + "#" + ptr)
	if err != nil {
		return nil, fmt.Errorf("compile schema at %q: %w", ptr, err)
	}

	// Size cap: clearing on overflow beats unbounded growth; worst case
	// is recompilation
	if u.cacheCount.Add(1) > maxSchemaCacheSize {
		u.cache.Range(func(key, _ any) bool {
			u.cache.Delete(key)
			return true
		})
		u.cacheCount.Store(1)
	}
	u.cache.Store(ptr, compiled)
	return compiled, nil
}

// schemaError converts a jsonschema validation error into a SchemaError
// with one flattened failure message per leaf cause.
func (u *Unmarshaller) schemaError(value any, err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &oaserrors.SchemaError{Value: value, Cause: err}
	}

	var failures []string
	u.flatten(ve, &failures)
	return &oaserrors.SchemaError{Value: value, Failures: failures, Cause: err}
}

func (u *Unmarshaller) flatten(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/" + strings.Join(ve.InstanceLocation, "/")
		*out = append(*out, fmt.Sprintf("at %q: %s", loc, ve.ErrorKind.LocalizedString(u.printer)))
		return
	}
	for _, cause := range ve.Causes {
		u.flatten(cause, out)
	}
}

// contextViolations walks value against the schema node and collects
// properties that must not appear in this direction: readOnly in
// requests, writeOnly in responses.
func (u *Unmarshaller) contextViolations(schema spec.Node, value any, path string) []string {
	var out []string

	switch v := value.(type) {
	case map[string]any:
		props := schema.Child("properties")
		for _, name := range props.Keys() {
			val, present := v[name]
			if !present {
				continue
			}
			prop := props.Child(name)
			switch {
			case u.ctx == ContextRequest && prop.BoolOr("readOnly", false):
				out = append(out, fmt.Sprintf("at %q: read-only property %q is not allowed in a request", path+"/"+name, name))
			case u.ctx == ContextResponse && prop.BoolOr("writeOnly", false):
				out = append(out, fmt.Sprintf("at %q: write-only property %q is not allowed in a response", path+"/"+name, name))
			}
			out = append(out, u.contextViolations(prop, val, path+"/"+name)...)
		}
	case []any:
		items := schema.Child("items")
		if items.Exists() {
			for i, elem := range v {
				out = append(out, u.contextViolations(items, elem, fmt.Sprintf("%s/%d", path, i))...)
			}
		}
	}

	allOf := schema.Child("allOf")
	for i := 0; i < allOf.Len(); i++ {
		out = append(out, u.contextViolations(allOf.At(i), value, path)...)
	}

	return out
}

// documentResource converts the document's decoded tree into the
// canonical JSON value form the schema compiler expects. OAS 3.0
// documents additionally have nullable and boolean exclusive bounds
// rewritten into their draft 2020-12 equivalents.
func documentResource(doc *spec.Document) (any, error) {
	raw, err := json.Marshal(doc.Value())
	if err != nil {
		return nil, fmt.Errorf("unmarshal: encode document: %w", err)
	}
	resource, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal: decode document: %w", err)
	}
	if strings.HasPrefix(doc.Version(), "3.0") {
		normalizeOAS30(resource)
	}
	return resource, nil
}

// normalizeOAS30 rewrites OAS 3.0 schema keywords that draft 2020-12
// encodes differently, in place:
//
//   - nullable: true      -> type: [T, "null"]
//   - exclusiveMinimum: true + minimum: N -> exclusiveMinimum: N
//   - exclusiveMaximum: true + maximum: N -> exclusiveMaximum: N
//
// Key structure is preserved so JSON Pointers into the document stay
// valid.
func normalizeOAS30(v any) {
	switch node := v.(type) {
	case map[string]any:
		if nullable, ok := node["nullable"].(bool); ok {
			if t, isStr := node["type"].(string); nullable && isStr {
				node["type"] = []any{t, "null"}
			}
			delete(node, "nullable")
		}
		if excl, ok := node["exclusiveMinimum"].(bool); ok {
			if bound, has := node["minimum"]; excl && has {
				node["exclusiveMinimum"] = bound
				delete(node, "minimum")
			} else {
				delete(node, "exclusiveMinimum")
			}
		}
		if excl, ok := node["exclusiveMaximum"].(bool); ok {
			if bound, has := node["maximum"]; excl && has {
				node["exclusiveMaximum"] = bound
				delete(node, "maximum")
			} else {
				delete(node, "exclusiveMaximum")
			}
		}
		for _, child := range node {
			normalizeOAS30(child)
		}
	case []any:
		for _, child := range node {
			normalizeOAS30(child)
		}
	}
}
