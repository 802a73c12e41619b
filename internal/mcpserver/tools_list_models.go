package mcpserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/segmentio/encoding/json"

	"github.com/erraggy/reqgate/validation"
)

type listModelsInput struct {
	Models modelsInput `json:"models,omitempty" jsonschema:"Where to read the model description from; defaults to REQGATE_MODEL_FILE"`
	Schema bool        `json:"schema,omitempty" jsonschema:"Include each model's JSON Schema"`
}

type modelSummary struct {
	Name     string         `json:"name"`
	Type     string         `json:"type,omitempty"`
	Required []string       `json:"required,omitempty"`
	Schema   map[string]any `json:"schema,omitempty"`
}

type listModelsOutput struct {
	Count  int                   `json:"count"`
	Models []modelSummary        `json:"models"`
	Cache  validation.CacheStats `json:"cache"`
}

func (s *toolset) handleListModels(ctx context.Context, _ *mcp.CallToolRequest, input listModelsInput) (*mcp.CallToolResult, listModelsOutput, error) {
	reg, err := s.resolveModels(ctx, input.Models)
	if err != nil {
		return errResult(err), listModelsOutput{}, nil
	}

	descs := reg.Descriptors()
	output := listModelsOutput{
		Count:  len(descs),
		Models: make([]modelSummary, 0, len(descs)),
	}
	for _, desc := range descs {
		schema, err := desc.DeriveSchema()
		if err != nil {
			return errResult(err), listModelsOutput{}, nil
		}

		summary := modelSummary{
			Name:     desc.Name(),
			Type:     schema.Type,
			Required: schema.Required,
		}
		if summary.Type == "" {
			summary.Type = strings.Join(schema.Types, ",")
		}
		if input.Schema {
			raw, err := json.Marshal(schema)
			if err == nil {
				err = json.Unmarshal(raw, &summary.Schema)
			}
			if err != nil {
				return errResult(err), listModelsOutput{}, nil
			}
		}
		output.Models = append(output.Models, summary)
	}
	output.Cache = s.materializer.Cache().Stats()

	return nil, output, nil
}
