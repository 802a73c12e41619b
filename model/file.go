package model

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/segmentio/encoding/json"
	"go.yaml.in/yaml/v4"
)

// fileFormat is the layout of a model description file.
type fileFormat struct {
	Models []fileModel `yaml:"models"`
}

type fileModel struct {
	Name   string `yaml:"name"`
	Schema any    `yaml:"schema"`
}

// LoadFile reads a YAML or JSON model description file and returns a
// registry holding one dynamic descriptor per model.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError("model file", path, "cannot read model file", err)
	}
	reg, err := load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Load reads a model description document from r. JSON input is accepted
// since JSON is a subset of YAML.
func Load(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, configError("model file", nil, "cannot read model description", err)
	}
	return load(data)
}

func load(data []byte) (*Registry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, configError("model file", nil, "model description is empty", nil)
	}

	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, configError("model file", nil, "invalid model description", err)
	}
	if len(doc.Models) == 0 {
		return nil, configError("models", nil, "model description lists no models", nil)
	}

	reg := NewRegistry()
	for i, m := range doc.Models {
		if m.Name == "" {
			return nil, configError(fmt.Sprintf("models[%d].name", i), nil, "model name cannot be empty", nil)
		}
		s, err := schemaFromYAML(m.Schema)
		if err != nil {
			return nil, configError(fmt.Sprintf("models[%d].schema", i), m.Name, "invalid schema", err)
		}
		d, err := NewDynamic(m.Name, s)
		if err != nil {
			return nil, err
		}
		if err := reg.Add(d); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// schemaFromYAML converts a decoded YAML value to a schema by way of JSON, so
// that jsonschema-go's own decoding rules apply (including boolean schemas).
func schemaFromYAML(v any) (*jsonschema.Schema, error) {
	if v == nil {
		return nil, fmt.Errorf("schema is missing")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := new(jsonschema.Schema)
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, err
	}
	return s, nil
}
