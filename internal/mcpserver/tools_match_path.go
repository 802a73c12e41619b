package mcpserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/reqgate/pathpattern"
)

type matchPathInput struct {
	Templates []string `json:"templates" jsonschema:"Route templates such as /items/{id}; the most specific match wins"`
	Path      string   `json:"path"      jsonschema:"The concrete URL path to match, without query string"`
}

type matchPathOutput struct {
	Matched  bool              `json:"matched"`
	Template string            `json:"template,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
}

func (s *toolset) handleMatchPath(_ context.Context, _ *mcp.CallToolRequest, input matchPathInput) (*mcp.CallToolResult, matchPathOutput, error) {
	if len(input.Templates) == 0 {
		return errResult(errors.New("at least one template is required")), matchPathOutput{}, nil
	}

	set, err := pathpattern.NewSet(input.Templates...)
	if err != nil {
		return errResult(err), matchPathOutput{}, nil
	}

	template, params, ok := set.Match(input.Path)
	if !ok {
		return nil, matchPathOutput{}, nil
	}
	return nil, matchPathOutput{Matched: true, Template: template, Params: params}, nil
}
