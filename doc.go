// Package oasguard provides runtime validation of HTTP requests and responses
// against OpenAPI Specification (OAS) documents.
//
// oasguard checks live traffic, not specification files: given a parsed OAS 3.x
// document and an incoming *http.Request, it locates the matching path template
// and operation, enforces the declared security requirements, and validates
// every parameter and the request body through a staged pipeline of
// deserialization, type casting, and JSON Schema unmarshalling.
//
// # Overview
//
// The library consists of these primary packages:
//
//   - spec: Load OAS documents and navigate them through a uniform node accessor
//   - paths: Match concrete request URLs against templated spec paths
//   - styles: Deserialize styled parameter values (form, simple, deepObject, ...)
//   - media: Select media types and decode raw request/response bodies
//   - casting: Cast decoded values toward their schema-declared types
//   - unmarshal: Validate values against JSON Schema and coerce declared formats
//   - security: Extract and verify apiKey, http, oauth2, and openIdConnect credentials
//   - httpvalidator: The request/response validation pipeline tying it all together
//
// Validation targets OAS 3.0.x and 3.1.x documents:
//   - OAS 3.0.x (3.0.0 - 3.0.4): https://spec.openapis.org/oas/v3.0.0.html
//   - OAS 3.1.x (3.1.0 - 3.1.2): https://spec.openapis.org/oas/v3.1.0.html
//
// # Installation
//
// Install the library using go get:
//
//	go get github.com/erraggy/oasguard
//
// # Quick Start
//
// Load a specification and validate a request:
//
//	import (
//		"github.com/erraggy/oasguard/httpvalidator"
//		"github.com/erraggy/oasguard/spec"
//	)
//
//	doc, err := spec.Load("openapi.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	v, err := httpvalidator.New(doc)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	req, err := httpvalidator.NewRequest(httpReq)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result := v.Validate(req)
//	if !result.Valid() {
//		for _, verr := range result.Errors {
//			fmt.Println(verr)
//		}
//	}
//
// Validate only the parameters, or only the body:
//
//	pResult := v.ValidateParameters(req)
//	bResult := v.ValidateBody(req)
//
// # Validation Pipeline
//
// A full request validation proceeds in a fixed order. Path resolution and
// security enforcement are gates: if either fails, validation stops and the
// result carries a single fatal error. Parameter and body validation then run
// to completion, accumulating every error they find:
//
//  1. Resolve the request path against the spec's templated paths and extract
//     path variables.
//  2. Enforce the operation's security requirements. Alternatives are tried in
//     declared order; the first satisfied alternative wins, and an alternative
//     is satisfied only when every scheme inside it yields a credential.
//  3. Validate parameters from every declared location (path, query, header,
//     cookie). Operation-level parameters shadow path-item parameters that
//     share the same name and location.
//  4. Validate the request body against the media type object matching the
//     request's Content-Type.
//
// Each parameter and the body pass through the same staged conversion:
// deserialize the raw wire value according to its declared style (or media
// type), cast it toward the schema's declared type, then unmarshal it against
// the JSON Schema, coercing well-known formats (date, date-time, uuid, byte)
// into Go types.
//
// # Error Handling
//
// All validation errors are typed values in the oaserrors package. Each type
// carries the fields a caller needs to act on it (parameter name, location,
// security scheme, media type), implements Unwrap for errors.Is/errors.As
// chains, and reports its handling tier:
//
//   - Fatal errors (path or security failures) abort validation immediately
//   - Recoverable errors (parameter or body failures) are accumulated
//   - Silent outcomes (optional absent parameters) produce no error at all
//   - Advisory notices (deprecated parameters) are reported without failing
//
// Check Result.Valid() for the overall outcome, Result.Errors for accumulated
// failures, and Result.Notices for advisory notices such as deprecation.
//
// # Command-Line Interface
//
// In addition to the library packages, oasguard provides a command-line
// interface for validating captured requests against a spec:
//
//	# Validate a single captured request
//	oasguard validate -spec openapi.yaml -method GET -path /pets/42
//
//	# Validate a file of captured requests concurrently (one JSON object per line)
//	oasguard batch -spec openapi.yaml requests.ndjson
//
//	# List the routes a spec declares
//	oasguard routes -spec openapi.yaml
//
//	# Serve validation tools over the Model Context Protocol
//	oasguard mcp
//
// Install the CLI:
//
//	go install github.com/erraggy/oasguard/cmd/oasguard@latest
//
// # Performance Tips
//
// For best performance:
//
//   - Reuse a single Validator per spec; compiled path patterns and JSON
//     Schemas are cached internally
//   - Validators are safe for concurrent use once constructed
//   - Stream advisory notices through httpvalidator.WithNoticeSink instead
//     of inspecting every Result when only deprecations matter
//
// # Additional Resources
//
//   - GitHub Repository: https://github.com/erraggy/oasguard
//   - OpenAPI Specification: https://spec.openapis.org
//   - JSON Schema Specification: https://json-schema.org
//   - Go Package Documentation: https://pkg.go.dev/github.com/erraggy/oasguard
package oasguard
