package main

import (
	"errors"
	"os"

	"github.com/erraggy/reqgate"
	"github.com/erraggy/reqgate/cmd/reqgate/commands"
)

// handlers maps each command name to its handler.
var handlers = map[string]func([]string, commands.Streams) error{
	"validate": commands.HandleValidate,
	"match":    commands.HandleMatch,
	"schema":   commands.HandleSchema,
	"models":   commands.HandleModels,
	"mcp":      commands.HandleMCP,
}

// commandNames lists every command, including the built-in ones, for
// typo suggestions.
var commandNames = []string{"validate", "match", "schema", "models", "mcp", "version", "help"}

func main() {
	os.Exit(run(os.Args[1:], commands.StdStreams()))
}

func run(args []string, streams commands.Streams) int {
	if len(args) < 1 {
		printUsage(streams)
		return 1
	}

	command := args[0]
	switch command {
	case "version", "-v", "--version":
		commands.Writef(streams.Out, "reqgate %s\n%s\n", reqgate.Version(), reqgate.BuildInfo())
		return 0
	case "help", "-h", "--help":
		printUsage(streams)
		return 0
	}

	handler, ok := handlers[command]
	if !ok {
		commands.Writef(streams.Err, "Unknown command: %s\n", command)
		if suggestion := suggestCommand(command); suggestion != "" {
			commands.Writef(streams.Err, "Did you mean '%s'?\n", suggestion)
		}
		commands.Writef(streams.Err, "\n")
		printUsage(streams)
		return 1
	}

	if err := handler(args[1:], streams); err != nil {
		if !errors.Is(err, commands.ErrFailed) {
			commands.Writef(streams.Err, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// suggestCommand returns the closest known command within edit distance 2,
// or "" when none is close enough.
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, name := range commandNames {
		if d := levenshtein(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

func levenshtein(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func printUsage(streams commands.Streams) {
	commands.Writef(streams.Out, `reqgate - Request validation and route matching

Usage:
  reqgate <command> [options]

Commands:
  validate    Validate a JSON body against a model
  match       Match a URL path against route templates
  schema      Print the compiled JSON Schema of a model
  models      List the models in a model description file
  mcp         Serve reqgate tools over MCP (stdio)
  version     Show version information
  help        Show this help message

Examples:
  reqgate validate --models models.yaml --model Item body.json
  echo '{"id": 1}' | reqgate validate -m Item -
  reqgate match /item/42 '/item/{id}' '/item/new'
  reqgate schema --models models.yaml Item

Environment:
  REQGATE_MODEL_FILE, REQGATE_CACHE_SIZE, REQGATE_MAX_BODY_SIZE,
  REQGATE_LOG_LEVEL, REQGATE_NORMALIZE_UNICODE

Run 'reqgate <command> --help' for more information on a command.
`)
}
