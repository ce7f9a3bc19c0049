package spec

import (
	"strconv"
	"strings"

	"go.yaml.in/yaml/v4"
)

// maxRefDepth is the maximum number of consecutive $ref hops followed while
// resolving a single node. This prevents unbounded loops on pathological
// reference chains; legitimate recursive schemas are not affected because
// recursion there passes through structural keys, not ref-to-ref hops.
const maxRefDepth = 100

// Node is a read-only accessor over one location in a specification document.
//
// A Node wraps the underlying YAML node together with the document it came
// from, so traversal can resolve $ref objects transparently: asking for a
// child that is a reference object yields the referenced node instead. Key
// order from the source document is preserved, which matters for constructs
// where the first declared entry wins.
//
// The zero Node represents an absent location. All methods are safe to call
// on it: lookups report absence and accessors return zero values, so chains
// like n.Child("content").Child("application/json").Child("schema") never
// panic part-way through.
type Node struct {
	doc *Document
	yn  *yaml.Node
	ptr string
}

// Exists reports whether the node is present in the document.
func (n Node) Exists() bool {
	return n.yn != nil
}

// IsMapping reports whether the node is a mapping (object).
func (n Node) IsMapping() bool {
	return n.yn != nil && n.yn.Kind == yaml.MappingNode
}

// IsSequence reports whether the node is a sequence (array).
func (n Node) IsSequence() bool {
	return n.yn != nil && n.yn.Kind == yaml.SequenceNode
}

// IsScalar reports whether the node is a scalar value.
func (n Node) IsScalar() bool {
	return n.yn != nil && n.yn.Kind == yaml.ScalarNode
}

// Pointer returns the JSON Pointer of this node from the document root,
// such as "/paths/~1pets/get/parameters/0/schema". Following a $ref moves
// the pointer to the referenced location.
func (n Node) Pointer() string {
	return n.ptr
}

// Has reports whether the mapping node contains the given key.
// It returns false for absent nodes and non-mappings.
func (n Node) Has(key string) bool {
	return n.lookup(key) != nil
}

// Get returns the decoded value of the given key and whether it was present.
// Scalars decode to string, bool, int, or float64; mappings and sequences
// decode to map[string]any and []any. The value is decoded as written, so
// nested $ref objects are not resolved; use Child for resolving traversal.
func (n Node) Get(key string) (any, bool) {
	child := n.lookup(key)
	if child == nil {
		return nil, false
	}
	var v any
	if err := child.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

// GetOrDefault returns the decoded value of the given key, or def when the
// key is absent.
func (n Node) GetOrDefault(key string, def any) any {
	if v, ok := n.Get(key); ok {
		return v
	}
	return def
}

// Child returns the node at the given key of a mapping. If the target is a
// reference object its referent is returned instead. Absent keys and
// non-mapping nodes yield the zero Node.
func (n Node) Child(key string) Node {
	child := n.lookup(key)
	if child == nil {
		return Node{}
	}
	return n.doc.wrap(child, n.ptr+"/"+escapePointerToken(key))
}

// At returns the node at index i of a sequence, resolving a reference object
// at that position. Out-of-range indexes and non-sequence nodes yield the
// zero Node.
func (n Node) At(i int) Node {
	if !n.IsSequence() || i < 0 || i >= len(n.yn.Content) {
		return Node{}
	}
	return n.doc.wrap(n.yn.Content[i], n.ptr+"/"+strconv.Itoa(i))
}

// Len returns the number of elements in a sequence or entries in a mapping,
// and 0 for anything else.
func (n Node) Len() int {
	if n.yn == nil {
		return 0
	}
	switch n.yn.Kind {
	case yaml.SequenceNode:
		return len(n.yn.Content)
	case yaml.MappingNode:
		return len(n.yn.Content) / 2
	default:
		return 0
	}
}

// Keys returns the keys of a mapping node in document order.
// It returns nil for absent nodes and non-mappings.
func (n Node) Keys() []string {
	if !n.IsMapping() {
		return nil
	}
	keys := make([]string, 0, len(n.yn.Content)/2)
	for i := 0; i+1 < len(n.yn.Content); i += 2 {
		keys = append(keys, n.yn.Content[i].Value)
	}
	return keys
}

// Str returns the scalar value of the node as a string, or "" when the node
// is absent or not a scalar.
func (n Node) Str() string {
	if !n.IsScalar() {
		return ""
	}
	return n.yn.Value
}

// StrOr returns the scalar string value of the given key, or def when the
// key is absent or not a scalar.
func (n Node) StrOr(key, def string) string {
	child := n.Child(key)
	if !child.IsScalar() {
		return def
	}
	return child.yn.Value
}

// BoolOr returns the boolean value of the given key, or def when the key is
// absent or not a boolean.
func (n Node) BoolOr(key string, def bool) bool {
	child := n.lookup(key)
	if child == nil {
		return def
	}
	var b bool
	if err := child.Decode(&b); err != nil {
		return def
	}
	return b
}

// Value returns the node's subtree decoded into plain Go values: scalars,
// map[string]any, and []any. Nested $ref objects are kept as written.
func (n Node) Value() any {
	if n.yn == nil {
		return nil
	}
	var v any
	if err := n.yn.Decode(&v); err != nil {
		return nil
	}
	return v
}

// lookup finds the raw value node for a mapping key, before ref resolution.
func (n Node) lookup(key string) *yaml.Node {
	if !n.IsMapping() {
		return nil
	}
	for i := 0; i+1 < len(n.yn.Content); i += 2 {
		if n.yn.Content[i].Value == key {
			return n.yn.Content[i+1]
		}
	}
	return nil
}

// wrap builds a Node for a raw YAML node, following alias nodes and $ref
// objects until a plain node is reached. Broken references yield the zero
// Node; Load verifies all references up front so that cannot happen for
// documents it returns.
func (d *Document) wrap(yn *yaml.Node, ptr string) Node {
	for depth := 0; yn != nil && depth < maxRefDepth; depth++ {
		if yn.Kind == yaml.AliasNode {
			yn = yn.Alias
			continue
		}
		ref, ok := refTarget(yn)
		if !ok {
			return Node{doc: d, yn: yn, ptr: ptr}
		}
		target, targetPtr, err := d.locate(ref)
		if err != nil {
			return Node{}
		}
		yn = target
		ptr = targetPtr
	}
	return Node{}
}

// refTarget reports whether the node is a reference object and returns its
// $ref value.
func refTarget(yn *yaml.Node) (string, bool) {
	if yn == nil || yn.Kind != yaml.MappingNode {
		return "", false
	}
	for i := 0; i+1 < len(yn.Content); i += 2 {
		if yn.Content[i].Value == "$ref" && yn.Content[i+1].Kind == yaml.ScalarNode {
			return yn.Content[i+1].Value, true
		}
	}
	return "", false
}

// locate walks a local JSON Pointer reference ("#/components/...") from the
// document root and returns the raw target node with its pointer.
func (d *Document) locate(ref string) (*yaml.Node, string, error) {
	if d == nil || d.root == nil {
		return nil, "", &refLookupError{ref: ref, reason: "no document"}
	}
	if !strings.HasPrefix(ref, "#") {
		return nil, "", &refLookupError{ref: ref, reason: "external references are not supported"}
	}
	frag := strings.TrimPrefix(ref, "#")
	if frag == "" || frag == "/" {
		return d.root, "", nil
	}

	current := d.root
	ptr := ""
	for _, token := range strings.Split(strings.TrimPrefix(frag, "/"), "/") {
		token = unescapePointerToken(token)
		next, err := step(current, token)
		if err != nil {
			return nil, "", &refLookupError{ref: ref, reason: err.Error()}
		}
		current = next
		ptr += "/" + escapePointerToken(token)
	}
	return current, ptr, nil
}

// step descends one pointer token into a mapping or sequence node.
func step(yn *yaml.Node, token string) (*yaml.Node, error) {
	if yn.Kind == yaml.AliasNode {
		yn = yn.Alias
	}
	switch yn.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(yn.Content); i += 2 {
			if yn.Content[i].Value == token {
				return yn.Content[i+1], nil
			}
		}
		return nil, &refLookupError{reason: "missing key " + strconv.Quote(token)}
	case yaml.SequenceNode:
		idx, err := strconv.Atoi(token)
		if err != nil {
			return nil, &refLookupError{reason: "invalid array index " + strconv.Quote(token)}
		}
		if idx < 0 || idx >= len(yn.Content) {
			return nil, &refLookupError{reason: "array index " + token + " out of bounds"}
		}
		return yn.Content[idx], nil
	default:
		return nil, &refLookupError{reason: "cannot traverse into scalar"}
	}
}

// refLookupError is the internal failure mode of pointer walks. Load wraps
// it into an oaserrors.ReferenceError before it reaches callers.
type refLookupError struct {
	ref    string
	reason string
}

func (e *refLookupError) Error() string {
	if e.ref != "" {
		return e.ref + ": " + e.reason
	}
	return e.reason
}

// escapePointerToken escapes a JSON Pointer token per RFC 6901.
func escapePointerToken(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

// unescapePointerToken unescapes a JSON Pointer token per RFC 6901.
func unescapePointerToken(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}
