package mcpserver

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListModelsTool(t *testing.T) {
	tools := newTestToolset(t, nil)

	result, output, err := tools.handleListModels(context.Background(), &mcp.CallToolRequest{}, listModelsInput{
		Models: modelsInput{Content: testModels},
	})
	require.NoError(t, err)
	assert.Nil(t, result)

	assert.Equal(t, 2, output.Count)
	assert.Equal(t, []modelSummary{
		{Name: "Item", Type: "object", Required: []string{"id", "name"}},
		{Name: "Ping", Type: "object"},
	}, output.Models)
	assert.Equal(t, 128, output.Cache.Capacity)
}

func TestListModelsTool_WithSchema(t *testing.T) {
	tools := newTestToolset(t, nil)

	_, output, err := tools.handleListModels(context.Background(), &mcp.CallToolRequest{}, listModelsInput{
		Models: modelsInput{Content: testModels},
		Schema: true,
	})
	require.NoError(t, err)
	require.Len(t, output.Models, 2)

	schema := output.Models[0].Schema
	require.NotNil(t, schema)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, false, schema["additionalProperties"])
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "tags")
}

func TestListModelsTool_NoSource(t *testing.T) {
	tools := newTestToolset(t, nil)
	result, _, err := tools.handleListModels(context.Background(), &mcp.CallToolRequest{}, listModelsInput{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}
