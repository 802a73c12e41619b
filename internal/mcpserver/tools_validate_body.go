package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/reqgate/gateerrors"
)

type validateBodyInput struct {
	Models modelsInput `json:"models,omitempty" jsonschema:"Where to read the model description from; defaults to REQGATE_MODEL_FILE"`
	Model  string      `json:"model"            jsonschema:"Name of the model to validate against"`
	Body   string      `json:"body"             jsonschema:"The raw JSON request body"`
	Offset int         `json:"offset,omitempty" jsonschema:"Skip the first N issues (for pagination)"`
	Limit  int         `json:"limit,omitempty"  jsonschema:"Maximum number of issues to return (default 100)"`
}

type issueOutput struct {
	Field     string `json:"field"`
	Message   string `json:"message"`
	Validator string `json:"validator"`
}

type validateBodyOutput struct {
	Valid      bool          `json:"valid"`
	Model      string        `json:"model"`
	IssueCount int           `json:"issue_count"`
	Returned   int           `json:"returned"`
	Issues     []issueOutput `json:"issues,omitempty"`
	Value      any           `json:"value,omitempty"`
}

func (s *toolset) handleValidateBody(ctx context.Context, _ *mcp.CallToolRequest, input validateBodyInput) (*mcp.CallToolResult, validateBodyOutput, error) {
	reg, err := s.resolveModels(ctx, input.Models)
	if err != nil {
		return errResult(err), validateBodyOutput{}, nil
	}

	desc, ok := reg.Lookup(input.Model)
	if !ok {
		return errResult(fmt.Errorf("unknown model %q; available models: %s", input.Model, strings.Join(reg.Names(), ", "))),
			validateBodyOutput{}, nil
	}

	output := validateBodyOutput{Model: desc.Name()}

	value, err := s.materializer.Object(input.Body, desc)
	var verr *gateerrors.ValidationError
	switch {
	case errors.As(err, &verr):
		output.IssueCount = len(verr.Issues)
		output.Issues = makeSlice[issueOutput](len(verr.Issues))
		for _, issue := range verr.Issues {
			output.Issues = append(output.Issues, issueOutput{
				Field:     issue.Field,
				Message:   issue.Message,
				Validator: issue.Validator,
			})
		}
		output.Issues = s.paginate(output.Issues, input.Offset, input.Limit)
		output.Returned = len(output.Issues)
	case err != nil:
		return errResult(err), validateBodyOutput{}, nil
	default:
		output.Valid = true
		output.Value = value
	}

	return nil, output, nil
}
