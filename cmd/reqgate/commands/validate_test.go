package commands

import (
	"errors"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidateFlags(t *testing.T) {
	fs, flags := SetupValidateFlags()

	t.Run("default values", func(t *testing.T) {
		assert.Empty(t, flags.Models)
		assert.Empty(t, flags.Model)
		assert.Equal(t, FormatText, flags.Format)
		assert.False(t, flags.Quiet)
		assert.False(t, flags.NormalizeUnicode)
	})

	t.Run("parse flags", func(t *testing.T) {
		args := []string{"--models", "m.yaml", "-m", "Item", "-q", "--format", "json", "--normalize-unicode", "body.json"}
		require.NoError(t, fs.Parse(args))

		assert.Equal(t, "m.yaml", flags.Models)
		assert.Equal(t, "Item", flags.Model)
		assert.True(t, flags.Quiet)
		assert.True(t, flags.NormalizeUnicode)
		assert.Equal(t, "json", flags.Format)
		assert.Equal(t, "body.json", fs.Arg(0))
	})
}

func TestHandleValidate(t *testing.T) {
	isolateEnv(t)
	models := writeFile(t, "models.yaml", testModels)

	t.Run("valid body prints the materialized value", func(t *testing.T) {
		streams, out, errOut := newStreams(`{"id": 1, "name": "a"}`)
		err := HandleValidate([]string{"--models", models, "-m", "Item", "-"}, streams)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id": 1, "name": "a", "qty": 1}`, out.String())
		assert.Contains(t, errOut.String(), "✓ Validation passed")
		assert.Contains(t, errOut.String(), "Body: <stdin>")
	})

	t.Run("invalid body lists every issue", func(t *testing.T) {
		body := writeFile(t, "body.json", `{"name": 123}`)
		streams, out, errOut := newStreams("")
		err := HandleValidate([]string{"--models", models, "-m", "Item", body}, streams)
		assert.True(t, errors.Is(err, ErrFailed))
		assert.Empty(t, out.String())
		assert.Contains(t, errOut.String(), "Issues (2):")
		assert.Contains(t, errOut.String(), `$ [required] required property "id" is missing`)
		assert.Contains(t, errOut.String(), "$.name [type] expected type string but got integer")
	})

	t.Run("json output", func(t *testing.T) {
		streams, out, _ := newStreams(`{"name": 123}`)
		err := HandleValidate([]string{"--models", models, "-m", "Item", "--format", "json", "-"}, streams)
		assert.True(t, errors.Is(err, ErrFailed))

		var result ValidateResult
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.False(t, result.Valid)
		assert.Equal(t, "Item", result.Model)
		assert.Equal(t, 2, result.IssueCount)
		require.Len(t, result.Issues, 2)
		assert.Equal(t, "$.name", result.Issues[1].Field)
	})

	t.Run("yaml output", func(t *testing.T) {
		streams, out, _ := newStreams(`["a"]`)
		err := HandleValidate([]string{"--models", models, "-m", "Tags", "--format", "yaml", "-"}, streams)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "valid: true")
		assert.Contains(t, out.String(), "- a")
	})

	t.Run("malformed json", func(t *testing.T) {
		streams, _, errOut := newStreams(`{"id": `)
		err := HandleValidate([]string{"--models", models, "-m", "Item", "-"}, streams)
		assert.True(t, errors.Is(err, ErrFailed))
		assert.Contains(t, errOut.String(), "$ [json]")
	})

	t.Run("quiet", func(t *testing.T) {
		streams, out, errOut := newStreams(`{"id": 1, "name": "a"}`)
		require.NoError(t, HandleValidate([]string{"--models", models, "-m", "Item", "-q", "-"}, streams))
		assert.Empty(t, out.String())
		assert.Empty(t, errOut.String())
	})

	t.Run("model file from environment", func(t *testing.T) {
		t.Setenv("REQGATE_MODEL_FILE", models)
		streams, _, _ := newStreams(`{"id": 1, "name": "a"}`)
		assert.NoError(t, HandleValidate([]string{"-m", "Item", "-q", "-"}, streams))
	})

	t.Run("body size limit from environment", func(t *testing.T) {
		t.Setenv("REQGATE_MAX_BODY_SIZE", "8")
		streams, _, errOut := newStreams(`{"id": 1, "name": "a"}`)
		err := HandleValidate([]string{"--models", models, "-m", "Item", "-"}, streams)
		assert.True(t, errors.Is(err, ErrFailed))
		assert.Contains(t, errOut.String(), "[maxBodySize]")
	})
}

func TestHandleValidate_Errors(t *testing.T) {
	isolateEnv(t)
	models := writeFile(t, "models.yaml", testModels)

	tests := []struct {
		name string
		args []string
	}{
		{"no args", []string{}},
		{"no model", []string{"--models", models, "-"}},
		{"invalid format", []string{"--models", models, "-m", "Item", "--format", "xml", "-"}},
		{"unknown model", []string{"--models", models, "-m", "Order", "-"}},
		{"no model file", []string{"-m", "Item", "-"}},
		{"missing body file", []string{"--models", models, "-m", "Item", "/nonexistent/body.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streams, _, _ := newStreams("{}")
			err := HandleValidate(tt.args, streams)
			require.Error(t, err)
			assert.False(t, errors.Is(err, ErrFailed))
		})
	}
}

func TestHandleValidate_Help(t *testing.T) {
	streams, _, errOut := newStreams("")
	assert.NoError(t, HandleValidate([]string{"--help"}, streams))
	assert.Contains(t, errOut.String(), "Usage: reqgate validate")
}
