package mcpserver

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/reqgate/internal/config"
	"github.com/erraggy/reqgate/logging"
)

// testModels is a small model description shared by the tool tests.
const testModels = `models:
  - name: Item
    schema:
      type: object
      required: [id, name]
      additionalProperties: false
      properties:
        id: {type: integer, minimum: 1}
        name: {type: string, minLength: 1}
        tags: {type: array, items: {type: string}, default: []}
  - name: Ping
    schema:
      type: object
      properties:
        at: {type: string, format: date-time}
`

// newTestToolset builds a toolset from the given REQGATE_* variables only.
func newTestToolset(t *testing.T, vars map[string]string) *toolset {
	t.Helper()
	if vars == nil {
		vars = map[string]string{}
	}
	cfg, err := config.FromMap(vars)
	require.NoError(t, err)
	tools, err := newToolset(cfg, logging.NopLogger{})
	require.NoError(t, err)
	return tools
}

func issuesN(n int) []issueOutput {
	out := make([]issueOutput, n)
	for i := range out {
		out[i] = issueOutput{Field: fmt.Sprintf("$[%d]", i)}
	}
	return out
}

func fields(items []issueOutput) []string {
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Field
	}
	return out
}

func TestPaginate(t *testing.T) {
	tools := newTestToolset(t, nil)
	items := issuesN(5)

	tests := []struct {
		name   string
		items  []issueOutput
		offset int
		limit  int
		want   []string
	}{
		{"default limit returns all when under 100", items, 0, 0, []string{"$[0]", "$[1]", "$[2]", "$[3]", "$[4]"}},
		{"explicit limit", items, 0, 2, []string{"$[0]", "$[1]"}},
		{"offset only", items, 2, 0, []string{"$[2]", "$[3]", "$[4]"}},
		{"offset and limit", items, 1, 2, []string{"$[1]", "$[2]"}},
		{"offset at end", items, 4, 2, []string{"$[4]"}},
		{"offset beyond end", items, 5, 2, nil},
		{"negative offset", items, -1, 2, nil},
		{"limit exceeds remaining", items, 3, 10, []string{"$[3]", "$[4]"}},
		{"nil slice", nil, 0, 2, nil},
		{"negative limit treated as default", items, 0, -1, []string{"$[0]", "$[1]", "$[2]", "$[3]", "$[4]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fields(tools.paginate(tt.items, tt.offset, tt.limit)))
		})
	}
}

func TestPaginate_OverflowLimit(t *testing.T) {
	tools := newTestToolset(t, nil)
	got := tools.paginate(issuesN(3), 1, math.MaxInt)
	assert.Len(t, got, 2)
}

func TestPaginate_DefaultLimit(t *testing.T) {
	tools := newTestToolset(t, map[string]string{"REQGATE_MCP_ISSUE_LIMIT": "40"})
	got := tools.paginate(issuesN(150), 0, 0)
	assert.Len(t, got, 40, "default limit should come from REQGATE_MCP_ISSUE_LIMIT")
}

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error returns empty string",
			err:  nil,
			want: "",
		},
		{
			name: "strips absolute path",
			err:  fmt.Errorf("open /home/user/secret/models.yaml: no such file"),
			want: "open <path>: no such file",
		},
		{
			name: "preserves non-path content",
			err:  fmt.Errorf("malformed JSON at offset 5"),
			want: "malformed JSON at offset 5",
		},
		{
			name: "strips multiple paths",
			err:  fmt.Errorf("models /tmp/a.yaml and /tmp/b.yaml disagree"),
			want: "models <path> and <path> disagree",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeError(tt.err))
		})
	}
}

func TestNewToolset_InvalidConfig(t *testing.T) {
	cfg := &config.Config{CacheSize: 0}
	_, err := newToolset(cfg, nil)
	assert.Error(t, err)
}
