// Package spec loads OpenAPI 3.x documents and exposes them through a
// uniform node accessor.
//
// Import path: github.com/erraggy/oasguard/spec
//
// The package deliberately does not model the OpenAPI object tree as typed
// structs. Validation only ever reads a handful of fields from any given
// object, and the set of fields varies by version and by vendor extension.
// Instead, [Document.Root] returns a [Node]: a read-only accessor over the
// raw document that preserves declaration order and resolves $ref objects
// transparently as it is traversed.
//
// # Loading
//
// Load a document from a file, or parse raw bytes:
//
//	doc, err := spec.Load("openapi.yaml")
//	doc, err := spec.Parse(data)
//
// JSON documents are supported through the same entry points. Loading
// verifies the document up front: the openapi version field must be 3.x,
// and every $ref must resolve inside the document. A Document that loads
// without error never produces reference failures during validation.
//
// # Traversal
//
// Node methods never panic on absent locations, so lookups chain without
// intermediate checks:
//
//	op := doc.Root().Child("paths").Child("/pets/{petId}").Child("get")
//	if op.Exists() {
//	    required := op.Child("parameters").At(0).BoolOr("required", false)
//	}
//
// A Child or At step that lands on a reference object yields the referenced
// node, so callers never see $ref indirection.
//
// # Logging
//
// Loading accepts a structured [Logger]; see [NewSlogAdapter] for wiring the
// standard library's slog. The default discards all output.
package spec
