// Package schemautil provides utilities for working with OpenAPI schema types.
//
// This package centralizes type inspection for schema nodes, particularly
// handling the differences between OAS 3.0 (string types plus a nullable
// flag) and OAS 3.1+ (array types for nullable support).
package schemautil

import "github.com/erraggy/oasguard/spec"

// Types returns the type(s) from a schema node, handling both
// string (OAS 3.0) and sequence (OAS 3.1+) representations.
//
// Examples:
//   - OAS 3.0: {"type": "string"} returns ["string"]
//   - OAS 3.1: {"type": ["string", "null"]} returns ["string", "null"]
func Types(schema spec.Node) []string {
	v, ok := schema.Get("type")
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		result := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				result = append(result, s)
			}
		}
		return result
	}
	return nil
}

// PrimaryType returns the first non-null type from a schema.
// This is useful for OAS 3.1+ where type arrays may include "null".
//
// Returns an empty string if the schema declares no types.
func PrimaryType(schema spec.Node) string {
	types := Types(schema)
	for _, t := range types {
		if t != "null" {
			return t
		}
	}
	if len(types) > 0 {
		return types[0]
	}
	return ""
}

// IsNullable checks if the schema allows null values.
// In OAS 3.1+, this is indicated by "null" in the type array.
// In OAS 3.0, this is indicated by the nullable flag.
func IsNullable(schema spec.Node) bool {
	for _, t := range Types(schema) {
		if t == "null" {
			return true
		}
	}
	return schema.BoolOr("nullable", false)
}

// HasType checks if the schema includes the specified type.
func HasType(schema spec.Node, targetType string) bool {
	for _, t := range Types(schema) {
		if t == targetType {
			return true
		}
	}
	return false
}

// IsArray reports whether the schema's primary type is "array".
func IsArray(schema spec.Node) bool {
	return PrimaryType(schema) == "array"
}

// IsObject reports whether the schema's primary type is "object".
func IsObject(schema spec.Node) bool {
	return PrimaryType(schema) == "object"
}

// Items returns the items schema of an array schema.
// The zero node is returned when no items schema is declared.
func Items(schema spec.Node) spec.Node {
	return schema.Child("items")
}

// Property returns the declared schema for one property of an object
// schema. The zero node is returned when the property is not declared.
func Property(schema spec.Node, name string) spec.Node {
	return schema.Child("properties").Child(name)
}
