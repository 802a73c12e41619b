package validation

import (
	"errors"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/reqgate/gateerrors"
	"github.com/erraggy/reqgate/model"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type unsupported struct {
	Fn func() `json:"fn"`
}

// dynamic builds a descriptor from a JSON Schema literal.
func dynamic(t testing.TB, name, schemaJSON string) *model.Descriptor {
	t.Helper()
	s := new(jsonschema.Schema)
	require.NoError(t, json.Unmarshal([]byte(schemaJSON), s))
	d, err := model.NewDynamic(name, s)
	require.NoError(t, err)
	return d
}

// compileJSON compiles a JSON Schema literal.
func compileJSON(t testing.TB, schemaJSON string) *Compiled {
	t.Helper()
	c, err := Compile(dynamic(t, "T", schemaJSON))
	require.NoError(t, err)
	return c
}

// decode parses a JSON literal keeping numbers as json.Number.
func decode(t testing.TB, body string) any {
	t.Helper()
	var v any
	_, err := json.Parse([]byte(body), &v, json.UseNumber)
	require.NoError(t, err)
	return v
}

func TestCompile(t *testing.T) {
	t.Run("compiles struct model", func(t *testing.T) {
		d := model.MustRegister[item](model.NewRegistry())
		c, err := Compile(d)
		require.NoError(t, err)
		assert.Equal(t, "item", c.Model())
		assert.Equal(t, "object", c.Schema().Type)
	})

	t.Run("Schema returns a copy", func(t *testing.T) {
		c := compileJSON(t, `{"type":"object","properties":{"a":{"type":"string"}}}`)
		c.Schema().Properties["a"].Type = "integer"
		assert.Equal(t, "string", c.Schema().Properties["a"].Type)
	})

	t.Run("selects named definition", func(t *testing.T) {
		d := dynamic(t, "Order", `{
			"$defs": {
				"Order": {
					"type": "object",
					"required": ["item"],
					"properties": {"item": {"$ref": "#/$defs/Item"}}
				},
				"Item": {"type": "object", "required": ["sku"], "properties": {"sku": {"type": "string"}}}
			}
		}`)
		c, err := Compile(d)
		require.NoError(t, err)
		assert.Equal(t, "object", c.Schema().Type)
		assert.Contains(t, c.Schema().Defs, "Item")

		got := c.Validate(decode(t, `{"item": {}}`))
		require.Len(t, got, 1)
		assert.Equal(t, "$.item", got[0].Field)
		assert.Equal(t, "required", got[0].Validator)
	})

	t.Run("selects named draft-07 definition", func(t *testing.T) {
		d := dynamic(t, "Pet", `{
			"definitions": {
				"Pet": {"type": "object", "properties": {"tag": {"$ref": "#/definitions/Tag"}}},
				"Tag": {"type": "string", "maxLength": 3}
			}
		}`)
		c, err := Compile(d)
		require.NoError(t, err)

		got := c.Validate(decode(t, `{"tag": "toolong"}`))
		require.Len(t, got, 1)
		assert.Equal(t, "maxLength", got[0].Validator)
	})

	t.Run("keeps root without matching definition", func(t *testing.T) {
		c := compileJSON(t, `{"type":"string","$defs":{"Other":{"type":"integer"}}}`)
		assert.Equal(t, "string", c.Schema().Type)
	})

	t.Run("recursive definitions", func(t *testing.T) {
		d := dynamic(t, "Node", `{
			"$defs": {
				"Node": {
					"type": "object",
					"properties": {"value": {"type": "integer"}, "next": {"$ref": "#/$defs/Node"}}
				}
			}
		}`)
		c, err := Compile(d)
		require.NoError(t, err)

		got := c.Validate(decode(t, `{"value": 1, "next": {"value": 2, "next": {"value": "x"}}}`))
		require.Len(t, got, 1)
		assert.Equal(t, "$.next.next.value", got[0].Field)
	})
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		desc func(t *testing.T) *model.Descriptor
	}{
		{"nil descriptor", func(*testing.T) *model.Descriptor { return nil }},
		{"unsupported Go type", func(*testing.T) *model.Descriptor {
			return model.MustRegister[unsupported](model.NewRegistry())
		}},
		{"invalid pattern", func(t *testing.T) *model.Descriptor {
			return dynamic(t, "T", `{"type":"string","pattern":"("}`)
		}},
		{"dangling reference", func(t *testing.T) *model.Descriptor {
			return dynamic(t, "T", `{"$ref":"#/$defs/Missing"}`)
		}},
		{"dangling reference inside definition", func(t *testing.T) *model.Descriptor {
			return dynamic(t, "T", `{"$ref":"#/$defs/A","$defs":{"A":{"items":{"$ref":"#/$defs/Gone"}}}}`)
		}},
		{"reference beside invalid pattern", func(t *testing.T) *model.Descriptor {
			return dynamic(t, "T", `{"$ref":"#/$defs/A","pattern":"(","$defs":{"A":{"type":"string"}}}`)
		}},
		{"remote reference", func(t *testing.T) *model.Descriptor {
			return dynamic(t, "T", `{"$ref":"https://example.com/schema.json"}`)
		}},
		{"default violating its schema", func(t *testing.T) *model.Descriptor {
			return dynamic(t, "T", `{"type":"object","properties":{"n":{"type":"integer","default":"x"}}}`)
		}},
		{"unknown type name", func(t *testing.T) *model.Descriptor {
			return dynamic(t, "T", `{"type":"integr"}`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Compile(tt.desc(t))
			require.Error(t, err)
			assert.Nil(t, c)
			assert.True(t, errors.Is(err, gateerrors.ErrSchemaDerivation), "got %v", err)

			var sde *gateerrors.SchemaDerivationError
			assert.True(t, errors.As(err, &sde))
		})
	}
}

func TestCompile_RefWithSiblings(t *testing.T) {
	c := compileJSON(t, `{"$ref":"#/$defs/Code","minLength":3,"$defs":{"Code":{"type":"string","pattern":"^[A-Z]+$"}}}`)

	assert.Empty(t, c.Validate("ABC"))
	assert.Equal(t, []found{{"$", "pattern"}, {"$", "minLength"}}, summarize(c.Validate("ab")))
	assert.Equal(t, []found{{"$", "type"}}, summarize(c.Validate(true)))
}

func TestIsFalseSchema(t *testing.T) {
	var f, tr jsonschema.Schema
	require.NoError(t, json.Unmarshal([]byte(`false`), &f))
	require.NoError(t, json.Unmarshal([]byte(`true`), &tr))

	assert.True(t, isFalseSchema(&f))
	assert.False(t, isFalseSchema(&tr))
	assert.False(t, isFalseSchema(&jsonschema.Schema{Type: "string", Not: &jsonschema.Schema{}}))
}
