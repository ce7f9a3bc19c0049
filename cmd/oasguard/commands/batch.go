package commands

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/textproto"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/erraggy/oasguard/httpvalidator"
)

// maxBatchLineSize caps how long a single NDJSON input line may be (10 MiB).
const maxBatchLineSize = 10 * 1024 * 1024

// BatchFlags contains flags for the batch command
type BatchFlags struct {
	Spec    string
	Workers int
	Format  string
	Quiet   bool
}

// SetupBatchFlags creates and configures a FlagSet for the batch command.
// Returns the FlagSet and a BatchFlags struct with bound flag variables.
func SetupBatchFlags() (*flag.FlagSet, *BatchFlags) {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	flags := &BatchFlags{}

	fs.StringVar(&flags.Spec, "spec", "", "OpenAPI specification file, or '-' for stdin (required)")
	fs.IntVar(&flags.Workers, "workers", runtime.NumCPU(), "number of requests validated in parallel")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: suppress the summary line")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: suppress the summary line")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: oasguard batch -spec <file> [flags] <requests.ndjson|->\n\n")
		Writef(fs.Output(), "Validate many HTTP requests against an OpenAPI specification.\n")
		Writef(fs.Output(), "Requests are read one JSON object per line; results are written in input order.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nInput Format (one JSON object per line):\n")
		Writef(fs.Output(), "  {\"method\": \"get\", \"path\": \"/pets?limit=5\",\n")
		Writef(fs.Output(), "   \"query\": {...}, \"headers\": {...}, \"cookies\": {...},\n")
		Writef(fs.Output(), "   \"body\": \"...\", \"content_type\": \"...\"}\n")
		Writef(fs.Output(), "\nOutput Formats:\n")
		Writef(fs.Output(), "  text (default)  One human-readable row per request\n")
		Writef(fs.Output(), "  json            One JSON report per line (NDJSON)\n")
		Writef(fs.Output(), "  yaml            A single YAML list of reports\n")
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  oasguard batch -spec openapi.yaml requests.ndjson\n")
		Writef(fs.Output(), "  oasguard batch -spec openapi.yaml -workers 8 -format json requests.ndjson\n")
		Writef(fs.Output(), "  tail -f access.ndjson | oasguard batch -spec openapi.yaml -\n")
		Writef(fs.Output(), "\nNotes:\n")
		Writef(fs.Output(), "  - Blank lines are skipped; reports carry 1-based input line numbers\n")
		Writef(fs.Output(), "  - Malformed lines are reported as invalid rather than aborting the run\n")
		Writef(fs.Output(), "\nExit Codes:\n")
		Writef(fs.Output(), "  0    Every request is valid\n")
		Writef(fs.Output(), "  1    At least one request is invalid\n")
		Writef(fs.Output(), "  2    Usage error or specification load failure\n")
	}

	return fs, flags
}

// HandleBatch executes the batch command
func HandleBatch(args []string) error {
	fs, flags := SetupBatchFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("batch command requires exactly one NDJSON request file, or '-' for stdin")
	}

	requestsPath := fs.Arg(0)

	if flags.Spec == "" {
		fs.Usage()
		return fmt.Errorf("batch command requires -spec")
	}
	if flags.Spec == StdinFilePath && requestsPath == StdinFilePath {
		return fmt.Errorf("cannot read both the specification and the requests from stdin")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}
	if flags.Workers < 1 {
		return fmt.Errorf("-workers must be at least 1 (got %d)", flags.Workers)
	}

	lines, err := readBatchLines(requestsPath)
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

	reports := RunBatch(v, lines, flags.Workers)

	switch flags.Format {
	case FormatJSON:
		for _, rep := range reports {
			data, err := json.Marshal(rep)
			if err != nil {
				return fmt.Errorf("marshaling report: %w", err)
			}
			fmt.Println(string(data))
		}
	case FormatYAML:
		if err := OutputStructured(reports, FormatYAML); err != nil {
			return err
		}
	default:
		for _, rep := range reports {
			writeBatchRow(os.Stdout, rep)
		}
	}

	invalid := 0
	for _, rep := range reports {
		if !rep.Valid {
			invalid++
		}
	}

	if !flags.Quiet && flags.Format == FormatText {
		if invalid == 0 {
			Writef(os.Stderr, "\n✓ All %d request(s) valid\n", len(reports))
		} else {
			Writef(os.Stderr, "\n✗ %d of %d request(s) invalid\n", invalid, len(reports))
		}
	}

	if invalid > 0 {
		os.Exit(1)
	}

	return nil
}

// batchLine is one non-blank input line with its 1-based position.
type batchLine struct {
	no   int
	text string
}

// batchRequest is the JSON shape of one input line.
type batchRequest struct {
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Query       map[string]string `json:"query,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Cookies     map[string]string `json:"cookies,omitempty"`
	Body        string            `json:"body,omitempty"`
	ContentType string            `json:"content_type,omitempty"`
}

// toRequest converts the line to the validator's request form.
func (b batchRequest) toRequest() (*httpvalidator.Request, error) {
	if b.Method == "" || b.Path == "" {
		return nil, fmt.Errorf("method and path are required")
	}

	var body []byte
	if b.Body != "" {
		body = []byte(b.Body)
	}

	req, err := buildRequest(b.Method, b.Path, nil, nil, "", body)
	if err != nil {
		return nil, err
	}

	for name, val := range b.Query {
		req.Params.Query.Add(name, val)
	}
	for name, val := range b.Headers {
		req.Params.Header.Add(textproto.CanonicalMIMEHeaderKey(name), val)
	}
	for name, val := range b.Cookies {
		req.Params.Cookie.Add(name, val)
	}

	ct := req.Params.Header.Get("Content-Type")
	if b.ContentType != "" {
		ct = b.ContentType
		req.Params.Header.Set("Content-Type", b.ContentType)
	}
	req.ContentType = ct

	return req, nil
}

// readBatchLines reads the NDJSON input, keeping 1-based line numbers and
// dropping blank lines.
func readBatchLines(path string) ([]batchLine, error) {
	var r io.Reader
	if path == StdinFilePath {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening request file: %w", err)
		}
		defer f.Close()
		r = f
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxBatchLineSize)

	var lines []batchLine
	no := 0
	for scanner.Scan() {
		no++
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		lines = append(lines, batchLine{no: no, text: scanner.Text()})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading requests: %w", err)
	}
	return lines, nil
}

// RunBatch validates every line with at most workers running in parallel.
// Reports come back in input order, one per line. The validator is safe
// for concurrent use, so workers share it.
func RunBatch(v *httpvalidator.Validator, lines []batchLine, workers int) []Report {
	if workers < 1 {
		workers = 1
	}

	reports := make([]Report, len(lines))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, line := range lines {
		g.Go(func() error {
			reports[i] = validateLine(v, line)
			return nil
		})
	}
	// Workers never return errors; every outcome lands in its report.
	_ = g.Wait()
	return reports
}

// validateLine validates one input line. Malformed lines become invalid
// reports with a single "input" issue instead of failing the whole run.
func validateLine(v *httpvalidator.Validator, line batchLine) Report {
	var breq batchRequest
	if err := json.Unmarshal([]byte(line.text), &breq); err != nil {
		return Report{
			Line:       line.no,
			ErrorCount: 1,
			Errors:     []ReportIssue{{Kind: "input", Message: fmt.Sprintf("invalid JSON: %v", err)}},
		}
	}

	req, err := breq.toRequest()
	if err != nil {
		return Report{
			Line:       line.no,
			Method:     breq.Method,
			Path:       breq.Path,
			ErrorCount: 1,
			Errors:     []ReportIssue{{Kind: "input", Message: err.Error()}},
		}
	}

	rep := NewReport(req.Method, breq.Path, v.Validate(req))
	rep.Line = line.no
	return rep
}

// writeBatchRow writes one report as a human-readable row, with error
// details indented under invalid requests.
func writeBatchRow(w io.Writer, rep Report) {
	if rep.Valid {
		Writef(w, "✓ line %d: %s %s\n", rep.Line, rep.Method, rep.Path)
		return
	}
	if rep.Method == "" && rep.Path == "" {
		Writef(w, "✗ line %d: %s\n", rep.Line, rep.Errors[0].Message)
		return
	}
	Writef(w, "✗ line %d: %s %s: %d error(s)\n", rep.Line, rep.Method, rep.Path, rep.ErrorCount)
	for _, issue := range rep.Errors {
		Writef(w, "    %s\n", issue.Message)
	}
}
