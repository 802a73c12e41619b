package commands

import (
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleSchema(t *testing.T) {
	isolateEnv(t)
	models := writeFile(t, "models.yaml", testModels)

	t.Run("json", func(t *testing.T) {
		streams, out, _ := newStreams("")
		require.NoError(t, HandleSchema([]string{"--models", models, "Item"}, streams))

		var schema map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &schema))
		assert.Equal(t, "object", schema["type"])
		assert.Equal(t, []any{"id", "name"}, schema["required"])
	})

	t.Run("yaml", func(t *testing.T) {
		streams, out, _ := newStreams("")
		require.NoError(t, HandleSchema([]string{"--models", models, "--format", "yaml", "Tags"}, streams))
		assert.Contains(t, out.String(), "type: array")
	})

	t.Run("errors", func(t *testing.T) {
		streams, _, _ := newStreams("")
		assert.Error(t, HandleSchema([]string{"--models", models}, streams))
		assert.Error(t, HandleSchema([]string{"--models", models, "--format", "text", "Item"}, streams))
		assert.Error(t, HandleSchema([]string{"--models", models, "Order"}, streams))
	})
}

func TestHandleModels(t *testing.T) {
	isolateEnv(t)
	models := writeFile(t, "models.yaml", testModels)

	t.Run("text", func(t *testing.T) {
		streams, out, _ := newStreams("")
		require.NoError(t, HandleModels([]string{"--models", models}, streams))
		assert.Equal(t, "Item\tobject\trequired: id, name\nTags\tarray\n", out.String())
	})

	t.Run("json", func(t *testing.T) {
		streams, out, _ := newStreams("")
		require.NoError(t, HandleModels([]string{"--models", models, "--format", "json"}, streams))

		var infos []ModelInfo
		require.NoError(t, json.Unmarshal(out.Bytes(), &infos))
		assert.Equal(t, []ModelInfo{
			{Name: "Item", Type: "object", Required: []string{"id", "name"}},
			{Name: "Tags", Type: "array"},
		}, infos)
	})

	t.Run("extra argument", func(t *testing.T) {
		streams, _, _ := newStreams("")
		assert.Error(t, HandleModels([]string{"--models", models, "Item"}, streams))
	})
}

func TestHandleMCP_RejectsArguments(t *testing.T) {
	streams, _, _ := newStreams("")
	assert.Error(t, HandleMCP([]string{"extra"}, streams))
	assert.NoError(t, HandleMCP([]string{"--help"}, streams))
}
