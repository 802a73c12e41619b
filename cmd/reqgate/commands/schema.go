package commands

import (
	"errors"
	"flag"
	"fmt"

	"github.com/erraggy/reqgate/validation"
)

// SchemaFlags contains flags for the schema command
type SchemaFlags struct {
	Models  string
	Format  string
	EnvFile string
}

// SetupSchemaFlags creates and configures a FlagSet for the schema command.
func SetupSchemaFlags() (*flag.FlagSet, *SchemaFlags) {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	flags := &SchemaFlags{}

	fs.StringVar(&flags.Models, "models", "", "model description file (default $REQGATE_MODEL_FILE)")
	fs.StringVar(&flags.Format, "format", FormatJSON, "output format: json or yaml")
	fs.StringVar(&flags.EnvFile, "env-file", "", "load REQGATE_* settings from a dotenv file")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: reqgate schema [flags] <model>\n\n")
		Writef(fs.Output(), "Compile a model and print the JSON Schema it is validated against.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  reqgate schema --models models.yaml Item\n")
		Writef(fs.Output(), "  reqgate schema --format yaml Item\n")
	}

	return fs, flags
}

// HandleSchema executes the schema command
func HandleSchema(args []string, streams Streams) error {
	fs, flags := SetupSchemaFlags()
	fs.SetOutput(streams.Err)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("schema command requires exactly one model name")
	}
	if flags.Format != FormatJSON && flags.Format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s", flags.Format, FormatJSON, FormatYAML)
	}

	cfg, err := loadConfig(flags.EnvFile)
	if err != nil {
		return err
	}
	if flags.Models == "" {
		flags.Models = cfg.ModelFile
	}

	desc, err := lookupModel(flags.Models, fs.Arg(0))
	if err != nil {
		return err
	}
	compiled, err := validation.Compile(desc)
	if err != nil {
		return err
	}
	return OutputStructured(streams.Out, compiled.Schema(), flags.Format)
}
