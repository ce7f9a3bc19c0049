package commands

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/erraggy/oasguard/internal/httputil"
	"github.com/erraggy/oasguard/paths"
	"github.com/erraggy/oasguard/spec"
)

// RoutesFlags contains flags for the routes command
type RoutesFlags struct {
	Spec   string
	Method string
	Format string
}

// RouteRow is one route in the compiled matching table.
type RouteRow struct {
	Method      string `json:"method" yaml:"method"`
	Path        string `json:"path" yaml:"path"`
	OperationID string `json:"operation_id,omitempty" yaml:"operation_id,omitempty"`
	Summary     string `json:"summary,omitempty" yaml:"summary,omitempty"`
	Deprecated  bool   `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
}

// SetupRoutesFlags creates and configures a FlagSet for the routes command.
// Returns the FlagSet and a RoutesFlags struct with bound flag variables.
func SetupRoutesFlags() (*flag.FlagSet, *RoutesFlags) {
	fs := flag.NewFlagSet("routes", flag.ContinueOnError)
	flags := &RoutesFlags{}

	fs.StringVar(&flags.Spec, "spec", "", "OpenAPI specification file, or '-' for stdin (required)")
	fs.StringVar(&flags.Method, "method", "", "only list routes for this HTTP method")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: oasguard routes -spec <file> [flags]\n\n")
		Writef(fs.Output(), "List the compiled route table in matching order: requests are resolved\n")
		Writef(fs.Output(), "against these templates top to bottom.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  oasguard routes -spec openapi.yaml\n")
		Writef(fs.Output(), "  oasguard routes -spec openapi.yaml -method get\n")
		Writef(fs.Output(), "  oasguard routes -spec openapi.yaml -format json | jq '.[].path'\n")
		Writef(fs.Output(), "\nExit Codes:\n")
		Writef(fs.Output(), "  0    Route table listed\n")
		Writef(fs.Output(), "  2    Usage error or specification load failure\n")
	}

	return fs, flags
}

// HandleRoutes executes the routes command
func HandleRoutes(args []string) error {
	fs, flags := SetupRoutesFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("routes command takes no positional arguments (got %q)", fs.Arg(0))
	}

	if flags.Spec == "" {
		fs.Usage()
		return fmt.Errorf("routes command requires -spec")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	doc, err := LoadDocument(flags.Spec)
	if err != nil {
		return fmt.Errorf("loading specification: %w", err)
	}

	finder, err := paths.NewFinder(doc)
	if err != nil {
		return fmt.Errorf("building route table: %w", err)
	}

	rows := CollectRoutes(doc, finder, flags.Method)

	if flags.Format == FormatJSON || flags.Format == FormatYAML {
		return OutputStructured(rows, flags.Format)
	}

	for _, row := range rows {
		line := fmt.Sprintf("%-8s %s", row.Method, row.Path)
		if row.OperationID != "" {
			line += "  " + row.OperationID
		}
		if row.Deprecated {
			line += "  (deprecated)"
		}
		Writef(os.Stdout, "%s\n", line)
	}
	Writef(os.Stderr, "\n%d route(s)\n", len(rows))

	return nil
}

// CollectRoutes walks the route table in specificity order, the same order
// request validation tries templates in. An empty method lists every route.
func CollectRoutes(doc *spec.Document, finder *paths.Finder, method string) []RouteRow {
	methodFilter := strings.ToLower(method)

	var rows []RouteRow
	pathsNode := doc.Root().Child("paths")
	for _, template := range finder.Templates() {
		item := pathsNode.Child(template)
		for _, m := range httputil.Methods {
			if methodFilter != "" && m != methodFilter {
				continue
			}
			op := item.Child(m)
			if !op.Exists() {
				continue
			}
			rows = append(rows, RouteRow{
				Method:      strings.ToUpper(m),
				Path:        template,
				OperationID: op.StrOr("operationId", ""),
				Summary:     op.StrOr("summary", ""),
				Deprecated:  op.BoolOr("deprecated", false),
			})
		}
	}
	return rows
}
