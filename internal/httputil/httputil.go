// Package httputil provides HTTP-related helpers shared by the validation packages.
package httputil

import (
	"mime"
	"strconv"
	"strings"
)

// HTTP method keys as they appear in path item objects.
const (
	MethodGet     = "get"
	MethodPut     = "put"
	MethodPost    = "post"
	MethodDelete  = "delete"
	MethodOptions = "options"
	MethodHead    = "head"
	MethodPatch   = "patch"
	MethodTrace   = "trace"
)

// Methods lists every HTTP method key a path item may declare, in the order
// the OpenAPI specification documents them.
var Methods = []string{
	MethodGet,
	MethodPut,
	MethodPost,
	MethodDelete,
	MethodOptions,
	MethodHead,
	MethodPatch,
	MethodTrace,
}

// IsMethod reports whether key is an HTTP method key a path item may declare.
// Keys are the lowercase spec field names, such as "get".
func IsMethod(key string) bool {
	for _, m := range Methods {
		if m == key {
			return true
		}
	}
	return false
}

// HTTP status code constants
const (
	statusCodeLength = 3   // Standard length of HTTP status codes (e.g., "200", "404")
	minStatusCode    = 100 // Minimum valid HTTP status code
	maxStatusCode    = 599 // Maximum valid HTTP status code
	wildcardChar     = 'X' // Wildcard character used in status code patterns (e.g., "2XX")
)

// ValidateStatusCode checks if a status code string is valid according to OpenAPI spec.
// Valid values are:
//   - "default" for default response
//   - Wildcard patterns: 1XX, 2XX, 3XX, 4XX, 5XX
//   - Numeric codes: 100-599
func ValidateStatusCode(code string) bool {
	if code == "default" {
		return true
	}

	if len(code) != statusCodeLength {
		return false
	}

	// Check for wildcard patterns (e.g., "2XX", "4XX")
	if code[1] == wildcardChar && code[2] == wildcardChar {
		return code[0] >= '1' && code[0] <= '5'
	}

	// Check for numeric codes
	statusCode, err := strconv.Atoi(code)
	if err != nil {
		return false
	}
	return statusCode >= minStatusCode && statusCode <= maxStatusCode
}

// WildcardStatus returns the wildcard response key covering the given status
// code, such as "2XX" for 204. It returns "" for codes outside 100-599.
func WildcardStatus(status int) string {
	if status < minStatusCode || status > maxStatusCode {
		return ""
	}
	return string(rune('0'+status/100)) + "XX"
}

// IsValidMediaType validates a media type string according to RFC 2045/2046.
// Handles wildcards (*/* and type/*) and prevents invalid combinations (*/subtype).
func IsValidMediaType(mediaType string) bool {
	if mediaType == "*/*" {
		return true
	}

	if strings.HasSuffix(mediaType, "/*") {
		// Check format: type/* (e.g., application/*)
		parts := strings.Split(mediaType, "/")
		return len(parts) == 2 && parts[0] != "" && parts[0] != "*"
	}

	// Use standard MIME type parser for regular types
	_, _, err := mime.ParseMediaType(mediaType)
	return err == nil
}
