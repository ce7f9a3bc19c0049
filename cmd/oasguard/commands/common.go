// Package commands provides CLI command handlers for oasguard.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/erraggy/oasguard"
	"github.com/erraggy/oasguard/spec"
	"gopkg.in/yaml.v3"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// OutputStructured outputs data in the specified format (json or yaml) to stdout.
// Returns an error if marshaling fails.
func OutputStructured(data any, format string) error {
	var bytes []byte
	var err error

	switch format {
	case FormatJSON:
		bytes, err = json.MarshalIndent(data, "", "  ")
	case FormatYAML:
		bytes, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	fmt.Println(string(bytes))
	return nil
}

// LoadDocument loads an OpenAPI document from a file path, or from stdin
// when the path is StdinFilePath.
func LoadDocument(specPath string) (*spec.Document, error) {
	if specPath == StdinFilePath {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return spec.Parse(data)
	}
	return spec.Load(specPath)
}

// FormatSpecPath returns a display-friendly path for the specification.
// Returns "<stdin>" if the path is StdinFilePath, otherwise returns the path as-is.
func FormatSpecPath(specPath string) string {
	if specPath == StdinFilePath {
		return "<stdin>"
	}
	return specPath
}

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// OutputSpecHeader outputs the common specification header to stderr.
// This includes oasguard version, specification path, and OpenAPI version.
func OutputSpecHeader(specPath string, doc *spec.Document) {
	Writef(os.Stderr, "oasguard version: %s\n", oasguard.Version())
	Writef(os.Stderr, "Specification: %s\n", FormatSpecPath(specPath))
	Writef(os.Stderr, "Title: %s\n", doc.Root().Child("info").StrOr("title", "(untitled)"))
	Writef(os.Stderr, "OpenAPI Version: %s\n", doc.Root().StrOr("openapi", "(unknown)"))
}

// repeatedFlag collects every value of a flag given more than once, in
// command-line order.
type repeatedFlag []string

func (r *repeatedFlag) String() string {
	return strings.Join(*r, ", ")
}

func (r *repeatedFlag) Set(value string) error {
	*r = append(*r, value)
	return nil
}
