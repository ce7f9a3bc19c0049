package spec

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasguard/oaserrors"
)

// MaxFileSize is the default maximum size (in bytes) allowed for a
// specification file. This prevents resource exhaustion from loading
// arbitrarily large files.
const MaxFileSize = 10 * 1024 * 1024 // 10MB

// Document is a loaded OpenAPI 3.x specification.
//
// A Document is immutable once loaded and safe for concurrent use. Access
// its contents through Root, which returns a Node accessor that resolves
// $ref objects transparently during traversal.
type Document struct {
	source  string
	version string
	root    *yaml.Node
	value   any
	logger  Logger
}

// Option is a functional option for loading a specification.
type Option func(*config) error

// config holds the configuration for loading operations.
type config struct {
	logger      Logger
	maxFileSize int64
}

// defaultConfig returns the default configuration.
func defaultConfig() *config {
	return &config{
		logger:      NopLogger{},
		maxFileSize: MaxFileSize,
	}
}

// WithLogger sets the logger used during loading.
// The default is NopLogger, which discards all output.
func WithLogger(logger Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return fmt.Errorf("spec: logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithMaxFileSize sets the maximum specification file size in bytes.
// Default: 10 MiB.
func WithMaxFileSize(n int64) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("spec: maxFileSize must be positive")
		}
		c.maxFileSize = n
		return nil
	}
}

// Load reads and parses an OpenAPI specification from a file.
// Both YAML and JSON files are supported; JSON is parsed as YAML since
// every JSON document is also a YAML document.
//
// Load verifies the document up front: it must carry an OpenAPI 3.x version
// field, and every $ref in it must resolve to a location inside the
// document. Broken or external references fail here rather than surfacing
// as absent nodes during validation.
func Load(path string, opts ...Option) (*Document, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	cfg.logger.Debug("loading specification", "path", path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat specification file: %w", err)
	}
	if info.Size() > cfg.maxFileSize {
		return nil, &oaserrors.ParseError{
			Path:    path,
			Message: fmt.Sprintf("file size %d exceeds maximum %d bytes", info.Size(), cfg.maxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read specification file: %w", err)
	}

	return parse(data, path, cfg)
}

// Parse parses an OpenAPI specification from raw YAML or JSON bytes.
// It performs the same up-front verification as Load.
func Parse(data []byte, opts ...Option) (*Document, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return parse(data, "", cfg)
}

// parse decodes the document and runs structural and reference checks.
func parse(data []byte, source string, cfg *config) (*Document, error) {
	var rootNode yaml.Node
	if err := yaml.Unmarshal(data, &rootNode); err != nil {
		return nil, &oaserrors.ParseError{
			Path:    source,
			Message: "invalid YAML/JSON",
			Cause:   err,
		}
	}
	if rootNode.Kind != yaml.DocumentNode || len(rootNode.Content) == 0 {
		return nil, &oaserrors.ParseError{
			Path:    source,
			Message: "empty document",
		}
	}
	root := rootNode.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &oaserrors.ParseError{
			Path:    source,
			Line:    root.Line,
			Column:  root.Column,
			Message: "document root must be a mapping",
		}
	}

	var value any
	if err := yaml.Unmarshal(data, &value); err != nil {
		return nil, &oaserrors.ParseError{
			Path:    source,
			Message: "invalid YAML/JSON",
			Cause:   err,
		}
	}

	d := &Document{
		source: source,
		root:   root,
		value:  value,
		logger: cfg.logger,
	}

	version, err := detectVersion(root, source)
	if err != nil {
		return nil, err
	}
	d.version = version

	if err := d.checkRefs(); err != nil {
		return nil, err
	}

	cfg.logger.Debug("specification parsed",
		"version", d.version,
		"paths", d.Root().Child("paths").Len(),
		"source", source)

	return d, nil
}

// detectVersion extracts and validates the "openapi" version field.
func detectVersion(root *yaml.Node, source string) (string, error) {
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "openapi" {
			continue
		}
		vn := root.Content[i+1]
		if vn.Kind != yaml.ScalarNode || vn.Value == "" {
			return "", &oaserrors.ParseError{
				Path:    source,
				Line:    vn.Line,
				Column:  vn.Column,
				Message: "openapi version must be a non-empty string",
			}
		}
		if !strings.HasPrefix(vn.Value, "3.") {
			return "", &oaserrors.ParseError{
				Path:    source,
				Line:    vn.Line,
				Column:  vn.Column,
				Message: fmt.Sprintf("unsupported OpenAPI version %q (3.x required)", vn.Value),
			}
		}
		return vn.Value, nil
	}
	return "", &oaserrors.ParseError{
		Path:    source,
		Message: `missing "openapi" version field`,
	}
}

// Root returns the accessor for the document's root mapping.
func (d *Document) Root() Node {
	return d.wrap(d.root, "")
}

// Version returns the document's declared OpenAPI version, such as "3.0.4".
func (d *Document) Version() string {
	return d.version
}

// Source returns the file path the document was loaded from, or "" for
// documents parsed from bytes.
func (d *Document) Source() string {
	return d.source
}

// Value returns the document decoded into plain Go values: scalars,
// map[string]any, and []any. $ref objects are kept as written.
func (d *Document) Value() any {
	return d.value
}

// Resolve returns the node a local reference points at.
// The reference must use the "#/path/to/component" form.
func (d *Document) Resolve(ref string) (Node, error) {
	target, ptr, err := d.locate(ref)
	if err != nil {
		return Node{}, refError(ref, err)
	}
	return d.wrap(target, ptr), nil
}

// checkRefs walks the whole document and verifies that every $ref resolves
// to a location inside it and that no reference chain loops back onto
// itself. Recursive schemas that cycle through structural keys (such as a
// tree node whose properties reference the node schema) are legal and pass.
func (d *Document) checkRefs() error {
	return d.walkRefs(d.root, make(map[*yaml.Node]bool))
}

func (d *Document) walkRefs(yn *yaml.Node, visited map[*yaml.Node]bool) error {
	if yn == nil || visited[yn] {
		return nil
	}
	visited[yn] = true

	switch yn.Kind {
	case yaml.AliasNode:
		return d.walkRefs(yn.Alias, visited)
	case yaml.MappingNode:
		if ref, ok := refTarget(yn); ok {
			if err := d.checkRefChain(ref); err != nil {
				return err
			}
		}
		for i := 1; i < len(yn.Content); i += 2 {
			if err := d.walkRefs(yn.Content[i], visited); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for _, child := range yn.Content {
			if err := d.walkRefs(child, visited); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkRefChain follows a reference through any ref-to-ref hops and fails
// on unresolvable targets and pure reference loops.
func (d *Document) checkRefChain(ref string) error {
	seen := make(map[string]bool)
	for range maxRefDepth {
		if seen[ref] {
			return &oaserrors.ReferenceError{Ref: ref, IsCircular: true}
		}
		seen[ref] = true

		target, _, err := d.locate(ref)
		if err != nil {
			return refError(ref, err)
		}
		next, ok := refTarget(target)
		if !ok {
			return nil
		}
		ref = next
	}
	return &oaserrors.ReferenceError{
		Ref:        ref,
		IsCircular: true,
		Message:    "reference chain too deep",
	}
}

// refError converts an internal pointer-walk failure into the public
// reference error type.
func refError(ref string, err error) error {
	var lookupErr *refLookupError
	if errors.As(err, &lookupErr) {
		return &oaserrors.ReferenceError{Ref: ref, Message: lookupErr.reason}
	}
	return &oaserrors.ReferenceError{Ref: ref, Cause: err}
}
