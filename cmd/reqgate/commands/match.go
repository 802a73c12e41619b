package commands

import (
	"errors"
	"flag"
	"fmt"

	"github.com/erraggy/reqgate/internal/maputil"
	"github.com/erraggy/reqgate/pathpattern"
)

// MatchFlags contains flags for the match command
type MatchFlags struct {
	Format string
	Quiet  bool
}

// SetupMatchFlags creates and configures a FlagSet for the match command.
func SetupMatchFlags() (*flag.FlagSet, *MatchFlags) {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	flags := &MatchFlags{}

	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only set the exit status")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only set the exit status")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: reqgate match [flags] <path> <template>...\n\n")
		Writef(fs.Output(), "Match a concrete URL path against route templates. Placeholders such as {id}\n")
		Writef(fs.Output(), "match exactly one non-empty segment; the most specific template wins.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  reqgate match /item/42 '/item/{id}'\n")
		Writef(fs.Output(), "  reqgate match --format json /users/7/orders/9 '/users/{uid}/orders/{oid}' '/users/{uid}'\n")
		Writef(fs.Output(), "\nExit Codes:\n")
		Writef(fs.Output(), "  0    A template matched\n")
		Writef(fs.Output(), "  1    No template matched, or a template is invalid\n")
	}

	return fs, flags
}

// MatchResult is the structured output of the match command.
type MatchResult struct {
	Path     string            `json:"path"`
	Matched  bool              `json:"matched"`
	Template string            `json:"template,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
}

// HandleMatch executes the match command
func HandleMatch(args []string, streams Streams) error {
	fs, flags := SetupMatchFlags()
	fs.SetOutput(streams.Err)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() < 2 {
		fs.Usage()
		return fmt.Errorf("match command requires a path and at least one template")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	set, err := pathpattern.NewSet(fs.Args()[1:]...)
	if err != nil {
		return err
	}

	result := MatchResult{Path: fs.Arg(0)}
	result.Template, result.Params, result.Matched = set.Match(result.Path)

	switch {
	case flags.Quiet:
	case flags.Format == FormatJSON || flags.Format == FormatYAML:
		if err := OutputStructured(streams.Out, result, flags.Format); err != nil {
			return err
		}
	case result.Matched:
		Writef(streams.Out, "✓ %s matches %s\n", result.Path, result.Template)
		for _, name := range maputil.SortedKeys(result.Params) {
			Writef(streams.Out, "  %s = %s\n", name, result.Params[name])
		}
	default:
		Writef(streams.Out, "✗ %s matches none of %d template(s)\n", result.Path, set.Len())
	}

	if !result.Matched {
		return ErrFailed
	}
	return nil
}
