package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/erraggy/oasguard/internal/mcpserver"
)

// SetupMCPFlags creates and configures a FlagSet for the mcp command.
func SetupMCPFlags() *flag.FlagSet {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: oasguard mcp\n\n")
		Writef(fs.Output(), "Serve oasguard validation as MCP tools over stdio. The server exposes\n")
		Writef(fs.Output(), "validate_request, validate_response, and list_routes, and runs until its\n")
		Writef(fs.Output(), "client disconnects or the process receives SIGINT or SIGTERM.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nConfiguration (environment variables):\n")
		Writef(fs.Output(), "  OASGUARD_CACHE_ENABLED     enable the parsed-spec cache (default true)\n")
		Writef(fs.Output(), "  OASGUARD_CACHE_MAX_SIZE    maximum cached specs (default 10)\n")
		Writef(fs.Output(), "  OASGUARD_MAX_INLINE_SIZE   inline/fetched spec size cap in bytes (default 10485760)\n")
		Writef(fs.Output(), "  OASGUARD_ALLOW_PRIVATE_IPS allow fetching specs from private addresses (default false)\n")
		Writef(fs.Output(), "  OASGUARD_FETCH_TIMEOUT     spec fetch timeout (default 30s)\n")
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  oasguard mcp\n")
		Writef(fs.Output(), "  OASGUARD_CACHE_MAX_SIZE=50 oasguard mcp\n")
	}

	return fs
}

// HandleMCP executes the mcp command
func HandleMCP(args []string) error {
	fs := SetupMCPFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("mcp command takes no positional arguments (got %q)", fs.Arg(0))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := mcpserver.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
