package commands

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

// ModelsFlags contains flags for the models command
type ModelsFlags struct {
	Models  string
	Format  string
	EnvFile string
}

// SetupModelsFlags creates and configures a FlagSet for the models command.
func SetupModelsFlags() (*flag.FlagSet, *ModelsFlags) {
	fs := flag.NewFlagSet("models", flag.ContinueOnError)
	flags := &ModelsFlags{}

	fs.StringVar(&flags.Models, "models", "", "model description file (default $REQGATE_MODEL_FILE)")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")
	fs.StringVar(&flags.EnvFile, "env-file", "", "load REQGATE_* settings from a dotenv file")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: reqgate models [flags]\n\n")
		Writef(fs.Output(), "List the models defined in a model description file.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
	}

	return fs, flags
}

// ModelInfo describes one model in the models command output.
type ModelInfo struct {
	Name     string   `json:"name"`
	Type     string   `json:"type,omitempty"`
	Required []string `json:"required,omitempty"`
}

// HandleModels executes the models command
func HandleModels(args []string, streams Streams) error {
	fs, flags := SetupModelsFlags()
	fs.SetOutput(streams.Err)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("models command takes no arguments")
	}
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
	reg, err := loadModels(flags.Models)
	if err != nil {
		return err
	}

	infos := make([]ModelInfo, 0, reg.Len())
	for _, desc := range reg.Descriptors() {
		schema, err := desc.DeriveSchema()
		if err != nil {
			return err
		}
		info := ModelInfo{Name: desc.Name(), Type: schema.Type, Required: schema.Required}
		if info.Type == "" {
			info.Type = strings.Join(schema.Types, "|")
		}
		infos = append(infos, info)
	}

	if flags.Format != FormatText {
		return OutputStructured(streams.Out, infos, flags.Format)
	}
	for _, info := range infos {
		Writef(streams.Out, "%s\t%s", info.Name, info.Type)
		if len(info.Required) > 0 {
			Writef(streams.Out, "\trequired: %s", strings.Join(info.Required, ", "))
		}
		Writef(streams.Out, "\n")
	}
	return nil
}
