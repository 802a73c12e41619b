// Package mcpserver serves reqgate's body validation and route matching to
// MCP (Model Context Protocol) clients over stdio.
package mcpserver

import (
	"context"
	"net/http"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/reqgate"
	"github.com/erraggy/reqgate/internal/config"
	"github.com/erraggy/reqgate/logging"
	"github.com/erraggy/reqgate/materialize"
)

const serverInstructions = `reqgate MCP server: validates JSON request bodies against data models and matches URL paths against route templates.

Models come from a model description file (YAML or JSON, a "models" list of name + JSON Schema). Every tool that needs models takes a "models" object with exactly one of file, url or content; when it is omitted the file named by REQGATE_MODEL_FILE is used.

Configuration: defaults are set with REQGATE_* environment variables in your MCP client config.
- REQGATE_CACHE_SIZE (default: 128): compiled validators kept in memory
- REQGATE_MAX_BODY_SIZE (default: 10485760): largest accepted body in bytes
- REQGATE_NORMALIZE_UNICODE (default: false): NFC-normalize strings before validation
- REQGATE_MCP_MODEL_TTL (default: 15m): cache TTL for model files and inline models
- REQGATE_MCP_MODEL_URL_TTL (default: 5m): cache TTL for fetched model files
- REQGATE_MCP_ISSUE_LIMIT (default: 100): default page size for issue lists

Parsed model files are cached per session. File entries are keyed by path and modification time, so edits are picked up on the next call.`

// Run serves the tools on stdin/stdout until the client hangs up or ctx is done.
func Run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	tools, err := newToolset(cfg, logger)
	if err != nil {
		return err
	}
	return newServer(tools).Run(ctx, &mcp.StdioTransport{})
}

func newServer(tools *toolset) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "reqgate", Version: reqgate.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server, tools)
	return server
}

// toolset carries the state shared by all tool handlers.
type toolset struct {
	cfg          *config.Config
	logger       logging.Logger
	materializer *materialize.Materializer
	models       *modelCache
	httpClient   *http.Client
}

func newToolset(cfg *config.Config, logger logging.Logger) (*toolset, error) {
	logger = logging.OrNop(logger)
	m, err := materialize.New(cfg.MaterializerOptions(logger)...)
	if err != nil {
		return nil, err
	}
	return &toolset{
		cfg:          cfg,
		logger:       logger.With("component", "mcpserver"),
		materializer: m,
		models:       newModelCache(cfg.MCP),
		httpClient:   newHTTPClient(cfg.MCP.AllowPrivateIPs),
	}, nil
}

func registerAllTools(server *mcp.Server, tools *toolset) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_body",
		Description: "Validate a JSON request body against a named model. Returns every violation at once, ordered by field path (\"$.items[0].id\"), each with the rule that failed. On success returns the materialized value with defaults applied and numbers coerced to the declared types. Use offset/limit to page through long issue lists; the default limit is configurable via REQGATE_MCP_ISSUE_LIMIT.",
	}, tools.handleValidateBody)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "match_path",
		Description: "Match a concrete URL path against one or more route templates such as /items/{id}. Placeholders match exactly one non-empty segment. When several templates match, the most specific wins (most literal characters, then longest template). Returns the matching template and the captured parameters.",
	}, tools.handleMatchPath)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_models",
		Description: "List the models defined by a model description file with their top-level type and required properties. Set schema=true to include each model's JSON Schema. Also reports validator cache statistics for the session.",
	}, tools.handleListModels)
}

// paginate returns the page of items starting at offset. A non-positive
// limit means the configured issue limit.
func (s *toolset) paginate(items []issueOutput, offset, limit int) []issueOutput {
	if offset < 0 || offset >= len(items) {
		return nil
	}
	if limit <= 0 {
		limit = s.cfg.MCP.IssueLimit
	}
	return items[offset : offset+min(limit, len(items)-offset)]
}

// makeSlice keeps empty results nil so omitempty drops them.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// pathPattern matches absolute paths under the usual system roots.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

// sanitizeError renders err with absolute paths replaced by "<path>".
func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
