// Package oaserrors provides structured error types for the oasguard library.
//
// Import path: github.com/erraggy/oasguard/oaserrors
//
// This package enables programmatic error handling via [errors.Is] and [errors.As],
// allowing callers to distinguish between different categories of errors and implement
// appropriate recovery strategies.
//
// # Pipeline Error Types
//
// These types are produced while validating a request or response and appear
// in validation results:
//
//   - [PathError]: No path template or operation matched the request
//   - [SecurityError]: A single security scheme failed to yield a credential
//   - [InvalidSecurityError]: No security alternative was satisfied
//   - [MissingParameterError]: A required parameter was absent from its location
//   - [DeserializeError]: A styled value or raw body could not be decoded
//   - [CastError]: A decoded value could not be cast to its schema type
//   - [SchemaError]: A value failed JSON Schema validation
//   - [UnmarshalError]: A schema-valid value failed format coercion
//   - [MissingBodyError]: A required request or response body was absent
//   - [MediaTypeError]: No declared media type matched the content type
//   - [ResponseError]: The operation declares no response for the status code
//
// # Document Error Types
//
// These types are returned from constructors while loading a specification
// and never appear in validation results:
//
//   - [ParseError]: YAML/JSON parsing failures and structural issues
//   - [ReferenceError]: $ref resolution failures and circular references
//   - [ConfigError]: Invalid configuration or input options
//
// # Sentinel Errors
//
// Each error type has a corresponding sentinel error for use with errors.Is():
//
//   - [ErrPath]: Matches any [PathError]
//   - [ErrPathNotFound]: Matches [PathError] with MethodNotAllowed=false
//   - [ErrMethodNotAllowed]: Matches [PathError] with MethodNotAllowed=true
//   - [ErrSecurity]: Matches any [SecurityError]
//   - [ErrInvalidSecurity]: Matches any [InvalidSecurityError]
//   - [ErrMissingParameter]: Matches any [MissingParameterError]
//   - [ErrDeserialize]: Matches any [DeserializeError]
//   - [ErrCast]: Matches any [CastError]
//   - [ErrSchema]: Matches any [SchemaError]
//   - [ErrUnmarshal]: Matches any [UnmarshalError]
//   - [ErrMissingBody]: Matches any [MissingBodyError]
//   - [ErrMediaType]: Matches any [MediaTypeError]
//   - [ErrResponse]: Matches any [ResponseError]
//   - [ErrParse]: Matches any [ParseError]
//   - [ErrReference]: Matches any [ReferenceError]
//   - [ErrCircularReference]: Matches [ReferenceError] with IsCircular=true
//   - [ErrConfig]: Matches any [ConfigError]
//
// # Handling Tiers
//
// The validation pipeline treats errors in two tiers. Path and security
// failures are fatal: validation stops immediately and the result carries a
// single error. Parameter and body failures accumulate: validation continues
// so a single pass reports every problem. Use [TierOf] to classify an error
// without enumerating types:
//
//	for _, err := range result.Errors {
//	    if oaserrors.TierOf(err) == oaserrors.TierFatal {
//	        // The request never reached parameter validation
//	    }
//	}
//
// # Usage Examples
//
// Check error category with errors.Is():
//
//	if errors.Is(err, oaserrors.ErrMethodNotAllowed) {
//	    w.WriteHeader(http.StatusMethodNotAllowed)
//	}
//
// Extract error details with errors.As():
//
//	var missErr *oaserrors.MissingParameterError
//	if errors.As(err, &missErr) {
//	    fmt.Printf("missing %s parameter: %s\n", missErr.In, missErr.Name)
//	}
//
// Inspect why security failed:
//
//	var secErr *oaserrors.InvalidSecurityError
//	if errors.As(err, &secErr) {
//	    for _, attempt := range secErr.Attempts {
//	        fmt.Println(attempt)
//	    }
//	}
//
// # Error Chaining
//
// All error types support error chaining via the Cause field and Unwrap()
// method. [InvalidSecurityError] unwraps to the full list of per-alternative
// failures, so errors.Is() searches every attempted scheme:
//
//	var schemaErr *oaserrors.SchemaError
//	if errors.As(err, &schemaErr) {
//	    for _, failure := range schemaErr.Failures {
//	        fmt.Println(failure)
//	    }
//	}
package oaserrors
