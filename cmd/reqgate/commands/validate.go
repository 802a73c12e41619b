package commands

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/segmentio/encoding/json"

	"github.com/erraggy/reqgate"
	"github.com/erraggy/reqgate/gateerrors"
	"github.com/erraggy/reqgate/materialize"
)

// ValidateFlags contains flags for the validate command
type ValidateFlags struct {
	Models           string
	Model            string
	Format           string
	Quiet            bool
	NormalizeUnicode bool
	EnvFile          string
	Verbose          bool
}

// SetupValidateFlags creates and configures a FlagSet for the validate command.
// Returns the FlagSet and a ValidateFlags struct with bound flag variables.
func SetupValidateFlags() (*flag.FlagSet, *ValidateFlags) {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	flags := &ValidateFlags{}

	fs.StringVar(&flags.Models, "models", "", "model description file (default $REQGATE_MODEL_FILE)")
	fs.StringVar(&flags.Model, "model", "", "name of the model to validate against (required)")
	fs.StringVar(&flags.Model, "m", "", "name of the model to validate against (required)")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only set the exit status")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only set the exit status")
	fs.BoolVar(&flags.NormalizeUnicode, "normalize-unicode", false, "convert strings to Unicode NFC before validation")
	fs.StringVar(&flags.EnvFile, "env-file", "", "load REQGATE_* settings from a dotenv file")
	fs.BoolVar(&flags.Verbose, "verbose", false, "log cache and validation activity to stderr")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: reqgate validate [flags] --model <name> <file|->\n\n")
		Writef(fs.Output(), "Validate a JSON request body against a model from a model description file.\n")
		Writef(fs.Output(), "Every violation is reported, ordered by field path.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nOutput Formats:\n")
		Writef(fs.Output(), "  text (default)  Issues on stderr, materialized value as JSON on stdout\n")
		Writef(fs.Output(), "  json            JSON result for programmatic processing\n")
		Writef(fs.Output(), "  yaml            YAML result for programmatic processing\n")
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  reqgate validate --models models.yaml --model Item body.json\n")
		Writef(fs.Output(), "  curl -s https://example.com/item | reqgate validate -m Item -q -\n")
		Writef(fs.Output(), "  reqgate validate -m Item --format json body.json | jq '.issues'\n")
		Writef(fs.Output(), "\nExit Codes:\n")
		Writef(fs.Output(), "  0    Body is valid\n")
		Writef(fs.Output(), "  1    Body is invalid, or the command failed\n")
	}

	return fs, flags
}

// ValidateResult is the structured output of the validate command.
type ValidateResult struct {
	Valid      bool               `json:"valid"`
	Model      string             `json:"model"`
	Source     string             `json:"source"`
	IssueCount int                `json:"issue_count"`
	Issues     []gateerrors.Issue `json:"issues,omitempty"`
	Value      any                `json:"value,omitempty"`
}

// HandleValidate executes the validate command
func HandleValidate(args []string, streams Streams) error {
	fs, flags := SetupValidateFlags()
	fs.SetOutput(streams.Err)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("validate command requires exactly one file path or '-' for stdin")
	}
	if flags.Model == "" {
		return fmt.Errorf("validate command requires --model")
	}

	// Validate format flag early to fail fast before expensive operations
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	cfg, err := loadConfig(flags.EnvFile)
	if err != nil {
		return err
	}
	if flags.Models == "" {
		flags.Models = cfg.ModelFile
	}

	desc, err := lookupModel(flags.Models, flags.Model)
	if err != nil {
		return err
	}

	inputPath := fs.Arg(0)
	body, err := readInput(inputPath, streams.In)
	if err != nil {
		return err
	}

	opts := cfg.MaterializerOptions(newLogger(cfg, flags.Verbose, streams.Err))
	if flags.NormalizeUnicode {
		opts = append(opts, materialize.WithNormalizeUnicode(true))
	}
	m, err := materialize.New(opts...)
	if err != nil {
		return err
	}

	startTime := time.Now()
	value, err := m.Object(body, desc)
	elapsed := time.Since(startTime)

	result := ValidateResult{
		Model:  desc.Name(),
		Source: FormatInputPath(inputPath),
	}
	var verr *gateerrors.ValidationError
	switch {
	case errors.As(err, &verr):
		result.IssueCount = len(verr.Issues)
		result.Issues = verr.Issues
	case err != nil:
		return err
	default:
		result.Valid = true
		result.Value = value
	}

	if flags.Quiet {
		return validateExit(result)
	}

	if flags.Format == FormatJSON || flags.Format == FormatYAML {
		if err := OutputStructured(streams.Out, result, flags.Format); err != nil {
			return err
		}
		return validateExit(result)
	}

	Writef(streams.Err, "reqgate version: %s\n", reqgate.Version())
	Writef(streams.Err, "Body: %s (%d bytes)\n", result.Source, len(body))
	Writef(streams.Err, "Model: %s\n", result.Model)
	Writef(streams.Err, "Validation Time: %v\n\n", elapsed)

	if !result.Valid {
		Writef(streams.Err, "Issues (%d):\n", result.IssueCount)
		for _, issue := range result.Issues {
			Writef(streams.Err, "  %s [%s] %s\n", issue.Field, issue.Validator, issue.Message)
		}
		Writef(streams.Err, "\n✗ Validation failed: %d issue(s)\n", result.IssueCount)
		return ErrFailed
	}

	Writef(streams.Err, "✓ Validation passed\n")
	out, err := json.MarshalIndent(result.Value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling value: %w", err)
	}
	Writef(streams.Out, "%s\n", out)
	return nil
}

func validateExit(result ValidateResult) error {
	if !result.Valid {
		return ErrFailed
	}
	return nil
}
