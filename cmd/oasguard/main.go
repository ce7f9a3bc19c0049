package main

import (
	"fmt"
	"os"

	"github.com/erraggy/oasguard"
	"github.com/erraggy/oasguard/cmd/oasguard/commands"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	command := os.Args[1]

	switch command {
	case "version", "-v", "--version":
		fmt.Printf("oasguard v%s\n", oasguard.Version())
	case "help", "-h", "--help":
		printUsage()
	case "validate":
		if err := commands.HandleValidate(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
	case "batch":
		if err := commands.HandleBatch(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
	case "routes":
		if err := commands.HandleRoutes(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
	case "mcp":
		if err := commands.HandleMCP(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		if suggestion := suggestCommand(command); suggestion != "" {
			fmt.Fprintf(os.Stderr, "Did you mean '%s'?\n", suggestion)
		}
		fmt.Fprintln(os.Stderr)
		printUsage()
		os.Exit(2)
	}
}

// suggestCommand returns the closest known command within edit distance 2,
// or "" when nothing is close enough to suggest.
func suggestCommand(input string) string {
	commands := []string{"validate", "batch", "routes", "mcp", "version", "help"}

	best := ""
	bestDist := 3
	for _, cmd := range commands {
		if d := editDistance(input, cmd); d < bestDist {
			best, bestDist = cmd, d
		}
	}
	return best
}

// editDistance is the Levenshtein distance between two strings.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func printUsage() {
	fmt.Println(`oasguard - OpenAPI Request Validation

Usage:
  oasguard <command> [options]

Commands:
  validate    Validate a single HTTP request against an OpenAPI specification
  batch       Validate many requests from an NDJSON file
  routes      List the compiled route table of a specification
  mcp         Serve validation as MCP tools over stdio
  version     Show version information
  help        Show this help message

Examples:
  oasguard validate -spec openapi.yaml -method get -path '/pets?limit=5'
  oasguard validate -spec openapi.yaml -method post -path /pets -body '{"name":"Rex"}'
  oasguard batch -spec openapi.yaml -workers 8 requests.ndjson
  oasguard routes -spec openapi.yaml -format json
  oasguard mcp

Exit Codes:
  0    Success; the request (or every batch request) is valid
  1    Validation ran and found at least one invalid request
  2    Usage error or specification load failure

Run 'oasguard <command> --help' for more information on a command.`)
}
