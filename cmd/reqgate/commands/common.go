// Package commands provides CLI command handlers for reqgate.
package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/segmentio/encoding/json"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/reqgate/internal/config"
	"github.com/erraggy/reqgate/logging"
	"github.com/erraggy/reqgate/model"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// ErrFailed is returned when a command ran to completion but its result is
// negative (an invalid body, an unmatched path). main exits with status 1
// without printing it again.
var ErrFailed = errors.New("command failed")

// Streams are the standard streams a command reads from and writes to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the process streams.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// OutputStructured writes data in the specified format (json or yaml) to w.
func OutputStructured(w io.Writer, data any, format string) error {
	var out []byte
	var err error

	switch format {
	case FormatJSON:
		out, err = json.MarshalIndent(data, "", "  ")
	case FormatYAML:
		// Round-trip through JSON so yaml output honors json tags and
		// json.Marshaler implementations.
		var generic any
		if out, err = json.Marshal(data); err == nil {
			if err = json.Unmarshal(out, &generic); err == nil {
				out, err = yaml.Marshal(generic)
			}
		}
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	Writef(w, "%s\n", out)
	return nil
}

// FormatInputPath returns a display-friendly path for an input file.
// Returns "<stdin>" if the path is StdinFilePath, otherwise returns the path as-is.
func FormatInputPath(path string) string {
	if path == StdinFilePath {
		return "<stdin>"
	}
	return path
}

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil { //nolint:gosec // G705 - CLI tool, not a web server
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// readInput returns the contents of path, or of in when path is "-".
func readInput(path string, in io.Reader) ([]byte, error) {
	if path == StdinFilePath {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304 - path is the user's own input
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// loadConfig reads REQGATE_* settings, seeding them from envFile when set.
func loadConfig(envFile string) (*config.Config, error) {
	if envFile == "" {
		return config.Load()
	}
	return config.Load(envFile)
}

// newLogger builds the stderr logger for a command. verbose forces debug.
func newLogger(cfg *config.Config, verbose bool, w io.Writer) logging.Logger {
	level := cfg.Level()
	if verbose {
		level = slog.LevelDebug
	}
	return logging.New(w, level, cfg.Format())
}

// lookupModel loads the model description file and returns the named model.
func lookupModel(path, name string) (*model.Descriptor, error) {
	reg, err := loadModels(path)
	if err != nil {
		return nil, err
	}
	desc, ok := reg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown model %q in %s (available: %v)", name, path, reg.Names())
	}
	return desc, nil
}

func loadModels(path string) (*model.Registry, error) {
	if path == "" {
		return nil, errors.New("no model file: pass --models or set REQGATE_MODEL_FILE")
	}
	return model.LoadFile(path)
}
