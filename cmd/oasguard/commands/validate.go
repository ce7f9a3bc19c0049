package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/textproto"
	"net/url"
	"os"
	"strings"

	"github.com/erraggy/oasguard/httpvalidator"
)

// ValidateFlags contains flags for the validate command
type ValidateFlags struct {
	Spec        string
	Method      string
	Path        string
	Headers     repeatedFlag
	Cookies     repeatedFlag
	Body        string
	BodyFile    string
	ContentType string
	Format      string
	Quiet       bool
}

// SetupValidateFlags creates and configures a FlagSet for the validate command.
// Returns the FlagSet and a ValidateFlags struct with bound flag variables.
func SetupValidateFlags() (*flag.FlagSet, *ValidateFlags) {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	flags := &ValidateFlags{}

	fs.StringVar(&flags.Spec, "spec", "", "OpenAPI specification file, or '-' for stdin (required)")
	fs.StringVar(&flags.Method, "method", "", "HTTP method of the request (required)")
	fs.StringVar(&flags.Path, "path", "", "request path, optionally with a query string (required)")
	fs.Var(&flags.Headers, "header", "request header as 'Name: value' (repeatable)")
	fs.Var(&flags.Headers, "H", "request header as 'Name: value' (repeatable)")
	fs.Var(&flags.Cookies, "cookie", "request cookie as 'name=value' (repeatable)")
	fs.StringVar(&flags.Body, "body", "", "request body as a literal string")
	fs.StringVar(&flags.BodyFile, "body-file", "", "read the request body from a file, or '-' for stdin")
	fs.StringVar(&flags.ContentType, "content-type", "", "request content type (overrides a Content-Type header)")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only output the validation result, no diagnostic messages")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only output the validation result, no diagnostic messages")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: oasguard validate -spec <file> -method <method> -path <path> [flags]\n\n")
		Writef(fs.Output(), "Validate a single HTTP request against an OpenAPI specification.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nOutput Formats:\n")
		Writef(fs.Output(), "  text (default)  Human-readable text output\n")
		Writef(fs.Output(), "  json            JSON format for programmatic processing\n")
		Writef(fs.Output(), "  yaml            YAML format for programmatic processing\n")
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  oasguard validate -spec openapi.yaml -method get -path '/pets?limit=5'\n")
		Writef(fs.Output(), "  oasguard validate -spec openapi.yaml -method post -path /pets \\\n")
		Writef(fs.Output(), "      -header 'Content-Type: application/json' -body '{\"name\":\"Rex\"}'\n")
		Writef(fs.Output(), "  oasguard validate -spec openapi.yaml -method get -path /pets \\\n")
		Writef(fs.Output(), "      -H 'X-Api-Key: secret' -cookie 'session=abc123'\n")
		Writef(fs.Output(), "  cat openapi.yaml | oasguard validate -spec - -method get -path /pets\n")
		Writef(fs.Output(), "  oasguard validate -spec openapi.yaml -method get -path /pets -format json | jq '.valid'\n")
		Writef(fs.Output(), "\nNotes:\n")
		Writef(fs.Output(), "  - Query parameters ride in the -path query string\n")
		Writef(fs.Output(), "  - Repeat -header and -cookie for multiple values\n")
		Writef(fs.Output(), "  - -body and -body-file are mutually exclusive\n")
		Writef(fs.Output(), "\nExit Codes:\n")
		Writef(fs.Output(), "  0    Request is valid\n")
		Writef(fs.Output(), "  1    Request is invalid\n")
		Writef(fs.Output(), "  2    Usage error or specification load failure\n")
	}

	return fs, flags
}

// HandleValidate executes the validate command
func HandleValidate(args []string) error {
	fs, flags := SetupValidateFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("validate command takes no positional arguments (got %q)", fs.Arg(0))
	}

	if flags.Spec == "" || flags.Method == "" || flags.Path == "" {
		fs.Usage()
		return fmt.Errorf("validate command requires -spec, -method, and -path")
	}

	// Validate format flag early to fail fast before expensive operations
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	body, err := readBody(flags)
	if err != nil {
		return err
	}

	doc, err := LoadDocument(flags.Spec)
	if err != nil {
		return fmt.Errorf("loading specification: %w", err)
	}

	v, err := httpvalidator.New(doc)
	if err != nil {
		return fmt.Errorf("building validator: %w", err)
	}

	req, err := buildRequest(flags.Method, flags.Path, flags.Headers, flags.Cookies, flags.ContentType, body)
	if err != nil {
		return err
	}

	rep := NewReport(req.Method, flags.Path, v.Validate(req))

	// Handle structured output formats
	if flags.Format == FormatJSON || flags.Format == FormatYAML {
		if err := OutputStructured(rep, flags.Format); err != nil {
			return err
		}
		if !rep.Valid {
			os.Exit(1)
		}
		return nil
	}

	// Text format output, always to stderr so stdout stays pipeline-clean
	if !flags.Quiet {
		Writef(os.Stderr, "OpenAPI Request Validator\n")
		Writef(os.Stderr, "=========================\n\n")
		OutputSpecHeader(flags.Spec, doc)
		Writef(os.Stderr, "Request: %s %s\n\n", strings.ToUpper(req.Method), flags.Path)
		WriteReportText(os.Stderr, rep)
	}

	if !rep.Valid {
		os.Exit(1)
	}

	return nil
}

// readBody resolves the request body from the -body and -body-file flags.
// A nil return with no error means the request carries no body.
func readBody(flags *ValidateFlags) ([]byte, error) {
	if flags.Body != "" && flags.BodyFile != "" {
		return nil, fmt.Errorf("cannot use both -body and -body-file")
	}
	if flags.Body != "" {
		return []byte(flags.Body), nil
	}
	if flags.BodyFile == "" {
		return nil, nil
	}
	if flags.BodyFile == StdinFilePath {
		if flags.Spec == StdinFilePath {
			return nil, fmt.Errorf("cannot read both -spec and -body-file from stdin")
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading body from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(flags.BodyFile)
	if err != nil {
		return nil, fmt.Errorf("reading body file: %w", err)
	}
	return data, nil
}

// buildRequest assembles a validator request from command-line inputs. The
// path may carry a query string; headers use 'Name: value' and cookies
// 'name=value'. Header names are canonicalized to match the header store.
func buildRequest(method, rawPath string, headers, cookies []string, contentType string, body []byte) (*httpvalidator.Request, error) {
	u, err := url.Parse(rawPath)
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", rawPath, err)
	}

	req := &httpvalidator.Request{
		Method: method,
		Path:   u.Path,
		Params: httpvalidator.Parameters{
			Path:   httpvalidator.Values{},
			Query:  httpvalidator.Values{},
			Header: httpvalidator.Values{},
			Cookie: httpvalidator.Values{},
		},
		Body: body,
	}

	for name, vals := range u.Query() {
		for _, val := range vals {
			req.Params.Query.Add(name, val)
		}
	}

	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header %q (expected 'Name: value')", h)
		}
		req.Params.Header.Add(textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(name)), strings.TrimSpace(value))
	}

	for _, c := range cookies {
		name, value, ok := strings.Cut(c, "=")
		if !ok {
			return nil, fmt.Errorf("invalid cookie %q (expected 'name=value')", c)
		}
		req.Params.Cookie.Add(strings.TrimSpace(name), value)
	}

	ct := req.Params.Header.Get("Content-Type")
	if contentType != "" {
		ct = contentType
		req.Params.Header.Set("Content-Type", contentType)
	}
	req.ContentType = ct

	return req, nil
}
