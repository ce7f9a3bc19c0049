// Package oaserrors provides structured error types for oasguard.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing callers to distinguish between different categories
// of errors and implement appropriate recovery strategies.
//
// # Error Categories
//
// Pipeline errors are produced while validating a request or response:
//
//   - PathError: No path template or operation matched the request
//   - SecurityError: A single security scheme failed to yield a credential
//   - InvalidSecurityError: No security alternative was satisfied
//   - MissingParameterError: A required parameter was absent
//   - DeserializeError: A styled value or body could not be decoded
//   - CastError: A decoded value could not be cast to its schema type
//   - SchemaError: A value failed JSON Schema validation
//   - UnmarshalError: A validated value failed format coercion
//   - MissingBodyError: A required body was absent
//   - MediaTypeError: No declared media type matched the content type
//   - ResponseError: No declared response matched the status code
//
// Document errors are returned while loading a specification:
//
//   - ParseError: YAML/JSON parsing failures and structural issues
//   - ReferenceError: $ref resolution failures and circular references
//   - ConfigError: Invalid configuration or input options
//
// # Usage with errors.Is
//
//	result := v.Validate(req)
//	for _, err := range result.Errors {
//	    var missErr *oaserrors.MissingParameterError
//	    if errors.As(err, &missErr) {
//	        // Handle the missing parameter specifically
//	    }
//	}
package oaserrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
// These allow quick checks without type assertions.
var (
	// ErrPath indicates a path resolution failure.
	ErrPath = errors.New("path resolution error")

	// ErrPathNotFound indicates no path template matched the request URL.
	ErrPathNotFound = errors.New("path not found")

	// ErrMethodNotAllowed indicates the matched path does not declare the request method.
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrSecurity indicates a single security scheme failed.
	ErrSecurity = errors.New("security scheme error")

	// ErrInvalidSecurity indicates no security alternative was satisfied.
	ErrInvalidSecurity = errors.New("security requirements not satisfied")

	// ErrMissingParameter indicates a required parameter was absent.
	ErrMissingParameter = errors.New("missing required parameter")

	// ErrDeserialize indicates a styled value or raw body could not be decoded.
	ErrDeserialize = errors.New("deserialization error")

	// ErrCast indicates a decoded value could not be cast to its schema type.
	ErrCast = errors.New("cast error")

	// ErrSchema indicates a value failed JSON Schema validation.
	ErrSchema = errors.New("schema validation error")

	// ErrUnmarshal indicates a validated value failed format coercion.
	ErrUnmarshal = errors.New("unmarshal error")

	// ErrMissingBody indicates a required body was absent.
	ErrMissingBody = errors.New("missing required body")

	// ErrMediaType indicates no declared media type matched the content type.
	ErrMediaType = errors.New("media type not supported")

	// ErrResponse indicates the operation declares no response for a status code.
	ErrResponse = errors.New("response not declared")

	// ErrParse indicates a parsing failure occurred.
	ErrParse = errors.New("parse error")

	// ErrReference indicates a reference resolution failure.
	ErrReference = errors.New("reference error")

	// ErrCircularReference indicates a circular $ref was detected.
	ErrCircularReference = errors.New("circular reference")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// Tier classifies how the validation pipeline handles an error.
type Tier int

const (
	// TierNone indicates an error the pipeline does not produce, such as
	// document loading or configuration failures.
	TierNone Tier = iota

	// TierFatal indicates a gate failure. Validation stops immediately and
	// the result carries this single error.
	TierFatal

	// TierField indicates a parameter or body failure. Validation continues
	// and the error is accumulated alongside any others.
	TierField
)

// String returns the string representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierFatal:
		return "fatal"
	case TierField:
		return "field"
	default:
		return "none"
	}
}

// TierOf reports how the validation pipeline handles err.
// Path and security failures are fatal; parameter and body failures
// accumulate. Errors from outside the pipeline report TierNone.
func TierOf(err error) Tier {
	switch {
	case errors.Is(err, ErrPath),
		errors.Is(err, ErrInvalidSecurity),
		errors.Is(err, ErrSecurity),
		errors.Is(err, ErrResponse):
		return TierFatal
	case errors.Is(err, ErrMissingParameter),
		errors.Is(err, ErrDeserialize),
		errors.Is(err, ErrCast),
		errors.Is(err, ErrSchema),
		errors.Is(err, ErrUnmarshal),
		errors.Is(err, ErrMissingBody),
		errors.Is(err, ErrMediaType):
		return TierField
	}
	return TierNone
}

// PathError represents a failure to resolve a request against the spec's paths.
// Either no path template matched the URL, or the matched path item does not
// declare the request's HTTP method.
type PathError struct {
	// Method is the HTTP method of the request (e.g., "GET")
	Method string
	// Path is the request path that failed to resolve (e.g., "/pets/42")
	Path string
	// MethodNotAllowed is true if a template matched but the method is not declared
	MethodNotAllowed bool
	// Message provides additional context about the failure
	Message string
}

// Error returns a human-readable error message.
func (e *PathError) Error() string {
	msg := "path not found"
	if e.MethodNotAllowed {
		msg = "method not allowed"
	}
	if e.Method != "" && e.Path != "" {
		msg += fmt.Sprintf(": %s %s", e.Method, e.Path)
	} else if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap returns nil as PathError has no underlying cause.
func (e *PathError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
// Matches ErrPath, and also ErrPathNotFound or ErrMethodNotAllowed
// depending on the MethodNotAllowed flag.
func (e *PathError) Is(target error) bool {
	if target == ErrPath {
		return true
	}
	if target == ErrMethodNotAllowed {
		return e.MethodNotAllowed
	}
	if target == ErrPathNotFound {
		return !e.MethodNotAllowed
	}
	return false
}

// SecurityError represents the failure of a single security scheme to yield
// a credential. These occur while evaluating one scheme inside a security
// alternative; a request fails overall only with InvalidSecurityError.
type SecurityError struct {
	// Scheme is the security scheme name from the spec (e.g., "api_key")
	Scheme string
	// Type is the scheme type: "apiKey", "http", "oauth2", or "openIdConnect"
	Type string
	// Message describes the failure (e.g., "missing header X-API-Key")
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *SecurityError) Error() string {
	msg := "security scheme error"
	if e.Scheme != "" {
		msg += fmt.Sprintf(" in %q", e.Scheme)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *SecurityError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *SecurityError) Is(target error) bool {
	return target == ErrSecurity
}

// InvalidSecurityError represents the exhaustion of every security alternative
// declared for an operation. An alternative is satisfied only when all of its
// schemes succeed; this error is produced once no alternative is satisfied.
type InvalidSecurityError struct {
	// Attempts holds the first failure from each alternative, in declared order
	Attempts []error
}

// Error returns a human-readable error message.
func (e *InvalidSecurityError) Error() string {
	msg := "security requirements not satisfied"
	if n := len(e.Attempts); n > 0 {
		msg += fmt.Sprintf(": %d alternative(s) failed", n)
	}
	return msg
}

// Unwrap returns the per-alternative failures for error chaining.
func (e *InvalidSecurityError) Unwrap() []error {
	return e.Attempts
}

// Is reports whether target matches this error type.
func (e *InvalidSecurityError) Is(target error) bool {
	return target == ErrInvalidSecurity
}

// MissingParameterError represents a required parameter that was absent from
// its declared location. Optional absent parameters are skipped silently and
// never produce this error.
type MissingParameterError struct {
	// Name is the parameter name from the spec
	Name string
	// In is the parameter location: "path", "query", "header", or "cookie"
	In string
}

// Error returns a human-readable error message.
func (e *MissingParameterError) Error() string {
	msg := "missing required parameter"
	if e.Name != "" {
		msg += fmt.Sprintf(" %q", e.Name)
	}
	if e.In != "" {
		msg += " in " + e.In
	}
	return msg
}

// Unwrap returns nil as MissingParameterError has no underlying cause.
func (e *MissingParameterError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
func (e *MissingParameterError) Is(target error) bool {
	return target == ErrMissingParameter
}

// DeserializeError represents a failure to decode a raw wire value. For
// parameters this covers style-based deserialization; for bodies it covers
// media type decoding (JSON syntax errors, malformed form data).
type DeserializeError struct {
	// Name is the parameter name (empty for body errors)
	Name string
	// In is the parameter location (empty for body errors)
	In string
	// Style is the serialization style being applied (parameters only)
	Style string
	// MediaType is the media type being decoded (bodies and content parameters)
	MediaType string
	// Value is the raw value that failed to decode
	Value string
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *DeserializeError) Error() string {
	msg := "deserialization error"
	switch {
	case e.Name != "":
		msg += fmt.Sprintf(" for parameter %q", e.Name)
		if e.In != "" {
			msg += " in " + e.In
		}
		if e.Style != "" {
			msg += fmt.Sprintf(" (style %s)", e.Style)
		} else if e.MediaType != "" {
			msg += fmt.Sprintf(" (media type %s)", e.MediaType)
		}
	case e.MediaType != "":
		msg += fmt.Sprintf(" for media type %q", e.MediaType)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(": value %q", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *DeserializeError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *DeserializeError) Is(target error) bool {
	return target == ErrDeserialize
}

// CastError represents a failure to cast a decoded value toward the primitive
// type its schema declares, such as a non-numeric string for an integer schema.
type CastError struct {
	// Name is the parameter name (empty for body errors)
	Name string
	// In is the parameter location (empty for body errors)
	In string
	// Value is the value that failed to cast
	Value any
	// Type is the schema type the cast targeted (e.g., "integer")
	Type string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *CastError) Error() string {
	msg := "cast error"
	if e.Name != "" {
		msg += fmt.Sprintf(" for parameter %q", e.Name)
		if e.In != "" {
			msg += " in " + e.In
		}
	}
	if e.Type != "" {
		msg += fmt.Sprintf(": failed to cast %v to type %s", e.Value, e.Type)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *CastError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *CastError) Is(target error) bool {
	return target == ErrCast
}

// SchemaError represents a value that failed validation against its JSON
// Schema. Failures carries one message per schema violation, each prefixed
// with the instance location inside the value.
type SchemaError struct {
	// Name is the parameter name (empty for body errors)
	Name string
	// In is the location: a parameter location, "body", or "response"
	In string
	// Value is the value that failed validation
	Value any
	// Failures holds one message per schema violation
	Failures []string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *SchemaError) Error() string {
	msg := "schema validation error"
	if e.Name != "" {
		msg += fmt.Sprintf(" for parameter %q", e.Name)
		if e.In != "" {
			msg += " in " + e.In
		}
	} else if e.In != "" {
		msg += " for " + e.In
	}
	if len(e.Failures) > 0 {
		msg += ": " + strings.Join(e.Failures, "; ")
	} else if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// UnmarshalError represents a schema-valid value that could not be coerced
// into its declared format's Go type, such as a base64 "byte" string that
// fails to decode.
type UnmarshalError struct {
	// Name is the parameter name (empty for body errors)
	Name string
	// In is the location: a parameter location, "body", or "response"
	In string
	// Format is the schema format being coerced (e.g., "date-time")
	Format string
	// Value is the value that failed coercion
	Value any
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *UnmarshalError) Error() string {
	msg := "unmarshal error"
	if e.Name != "" {
		msg += fmt.Sprintf(" for parameter %q", e.Name)
		if e.In != "" {
			msg += " in " + e.In
		}
	} else if e.In != "" {
		msg += " for " + e.In
	}
	if e.Format != "" {
		msg += fmt.Sprintf(": invalid %s value %v", e.Format, e.Value)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *UnmarshalError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *UnmarshalError) Is(target error) bool {
	return target == ErrUnmarshal
}

// MissingBodyError represents a required body that was absent. Optional
// absent bodies are skipped silently and never produce this error.
type MissingBodyError struct {
	// Response is true when a response body was missing rather than a request body
	Response bool
}

// Error returns a human-readable error message.
func (e *MissingBodyError) Error() string {
	if e.Response {
		return "missing required response body"
	}
	return "missing required request body"
}

// Unwrap returns nil as MissingBodyError has no underlying cause.
func (e *MissingBodyError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
func (e *MissingBodyError) Is(target error) bool {
	return target == ErrMissingBody
}

// ResponseError represents a status code for which the operation declares no
// response, neither exactly nor by range pattern nor as a default.
type ResponseError struct {
	// Status is the HTTP status code that failed to resolve
	Status int
	// Declared lists the response keys the operation declares
	Declared []string
}

// Error returns a human-readable error message.
func (e *ResponseError) Error() string {
	msg := fmt.Sprintf("no declared response for status %d", e.Status)
	if len(e.Declared) > 0 {
		msg += fmt.Sprintf(" (declared: %s)", strings.Join(e.Declared, ", "))
	}
	return msg
}

// Unwrap returns nil as ResponseError has no underlying cause.
func (e *ResponseError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
func (e *ResponseError) Is(target error) bool {
	return target == ErrResponse
}

// MediaTypeError represents a content type for which the operation declares
// no matching media type object, neither exactly nor by range pattern.
type MediaTypeError struct {
	// ContentType is the content type from the message (e.g., "text/csv")
	ContentType string
	// Declared lists the media types the spec declares for this body
	Declared []string
	// Response is true when the failure occurred on a response body
	Response bool
}

// Error returns a human-readable error message.
func (e *MediaTypeError) Error() string {
	msg := "media type not supported"
	if e.ContentType != "" {
		msg += fmt.Sprintf(": %q", e.ContentType)
	}
	if len(e.Declared) > 0 {
		msg += fmt.Sprintf(" (declared: %s)", strings.Join(e.Declared, ", "))
	}
	return msg
}

// Unwrap returns nil as MediaTypeError has no underlying cause.
func (e *MediaTypeError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
func (e *MediaTypeError) Is(target error) bool {
	return target == ErrMediaType
}

// ParseError represents a failure to parse an OpenAPI document.
// This includes YAML/JSON deserialization errors and structural issues.
type ParseError struct {
	// Path is the file path or source identifier
	Path string
	// Line is the line number where the error occurred (0 if unknown)
	Line int
	// Column is the column number where the error occurred (0 if unknown)
	Column int
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
		if e.Column > 0 {
			msg += fmt.Sprintf(", column %d", e.Column)
		}
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ReferenceError represents a failure to resolve a $ref.
// This includes missing reference targets and circular references.
type ReferenceError struct {
	// Ref is the reference string that failed to resolve
	Ref string
	// IsCircular is true if this error is due to a circular reference
	IsCircular bool
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ReferenceError) Error() string {
	msg := "reference error"
	if e.IsCircular {
		msg = "circular reference"
	}
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ReferenceError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrReference, and also ErrCircularReference when the
// IsCircular flag is set.
func (e *ReferenceError) Is(target error) bool {
	if target == ErrReference {
		return true
	}
	if target == ErrCircularReference && e.IsCircular {
		return true
	}
	return false
}

// ConfigError represents an invalid configuration or input.
// This includes invalid options, missing required inputs, and conflicting settings.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
