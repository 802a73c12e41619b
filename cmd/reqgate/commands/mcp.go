package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/erraggy/reqgate/internal/mcpserver"
)

// MCPFlags contains flags for the mcp command
type MCPFlags struct {
	Models  string
	EnvFile string
	Verbose bool
}

// SetupMCPFlags creates and configures a FlagSet for the mcp command.
func SetupMCPFlags() (*flag.FlagSet, *MCPFlags) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	flags := &MCPFlags{}

	fs.StringVar(&flags.Models, "models", "", "default model description file (default $REQGATE_MODEL_FILE)")
	fs.StringVar(&flags.EnvFile, "env-file", "", "load REQGATE_* settings from a dotenv file")
	fs.BoolVar(&flags.Verbose, "verbose", false, "log tool activity to stderr")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: reqgate mcp [flags]\n\n")
		Writef(fs.Output(), "Serve the validate_body, match_path and list_models tools over MCP on stdio.\n")
		Writef(fs.Output(), "Logs go to stderr; stdout carries the protocol.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
	}

	return fs, flags
}

// HandleMCP executes the mcp command
func HandleMCP(args []string, streams Streams) error {
	fs, flags := SetupMCPFlags()
	fs.SetOutput(streams.Err)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("mcp command takes no arguments")
	}

	cfg, err := loadConfig(flags.EnvFile)
	if err != nil {
		return err
	}
	if flags.Models != "" {
		cfg.ModelFile = flags.Models
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return mcpserver.Run(ctx, cfg, newLogger(cfg, flags.Verbose, streams.Err))
}
