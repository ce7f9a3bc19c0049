// Package httpvalidator validates HTTP requests and responses against an
// OpenAPI 3.x document at runtime.
//
// A Validator is built once per document and reused across requests. Each
// validation resolves the request's method and URL path to an operation,
// checks its security requirements, then runs every declared parameter
// and the body through deserialization, casting, and schema validation.
// The outcome is always a Result; validation never panics and never stops
// at the first field error.
//
// # Pipeline
//
// Validate runs stages in a fixed order:
//
//  1. Path resolution. The URL path is matched against the document's
//     templates. Failure is fatal: the result carries the path error and
//     nothing else runs.
//  2. Security. The operation's security requirements (or the document's)
//     are resolved against the request's credentials. Failure is fatal.
//  3. Parameters. Every declared parameter is fetched from its location,
//     deserialized by style, cast toward its schema, and validated. Each
//     failure is recorded and processing continues.
//  4. Body. The request body is matched to a declared media type,
//     deserialized, cast, and validated. Failures are recorded after any
//     parameter errors.
//
// ValidateParameters and ValidateBody run the path gate plus just their
// stage, for callers that split the work.
//
// # Basic Usage
//
//	doc, err := spec.Load("openapi.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	v, err := httpvalidator.New(doc)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	req, err := httpvalidator.NewRequest(httpReq)
//	if err != nil {
//		log.Fatal(err)
//	}
//	result := v.Validate(req)
//	if !result.Valid() {
//		for _, err := range result.Errors {
//			log.Println(err)
//		}
//	}
//
// # Middleware Pattern
//
//	func Validate(v *httpvalidator.Validator, next http.Handler) http.Handler {
//		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//			req, err := httpvalidator.NewRequest(r)
//			if err != nil {
//				http.Error(w, err.Error(), http.StatusBadRequest)
//				return
//			}
//			if result := v.Validate(req); !result.Valid() {
//				http.Error(w, result.Err().Error(), http.StatusBadRequest)
//				return
//			}
//			next.ServeHTTP(w, r)
//		})
//	}
//
// # Error Model
//
// Failures surface as typed errors from the oaserrors package, matchable
// with errors.Is against its sentinels and errors.As against its types.
// An unresolvable path yields a PathError, a failed security check an
// InvalidSecurityError wrapping one failure per attempted alternative,
// and field-level failures land in Result.Errors as MissingParameterError,
// DeserializeError, CastError, SchemaError, UnmarshalError,
// MissingBodyError, or MediaTypeError. Deprecated declarations produce
// advisory Notices, never errors.
//
// # Responses
//
// ResponseValidator covers the other direction: the status code is
// resolved against the operation's declared responses (exact, then range
// pattern like "2XX", then "default"), declared headers run through the
// parameter stages, and the body through the media type stages. Schema
// validation runs in response context, so writeOnly properties are
// rejected where readOnly would be on a request.
//
// # Custom Registries
//
// Style deserializers, media type deserializers, and security scheme
// providers live in registries injected through options. Registering a
// deserializer for a vendor media type or a provider for a custom scheme
// type extends validation without touching the pipeline:
//
//	m := media.NewRegistry()
//	m.Register("application/vnd.acme+json", decodeAcme)
//	v, err := httpvalidator.New(doc, httpvalidator.WithMediaRegistry(m))
//
// # Concurrency
//
// A Validator is read-only after New. Validate, ValidateParameters, and
// ValidateBody are safe for concurrent use from any number of goroutines;
// results are freshly allocated per call and never shared.
package httpvalidator
