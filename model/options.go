package model

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/segmentio/encoding/json"
)

// Option configures a model registered from a Go type.
type Option func(*descriptorConfig) error

type descriptorConfig struct {
	name        string
	typeSchemas map[reflect.Type]*jsonschema.Schema
	hooks       []func(*jsonschema.Schema) error
}

// WithName overrides the model name. The default is the Go type name.
func WithName(name string) Option {
	return func(cfg *descriptorConfig) error {
		if name == "" {
			return configError("WithName", name, "model name cannot be empty", nil)
		}
		cfg.name = name
		return nil
	}
}

// WithTypeSchema replaces the derived schema for every occurrence of the Go
// type t inside the model.
func WithTypeSchema(t reflect.Type, s *jsonschema.Schema) Option {
	return func(cfg *descriptorConfig) error {
		if t == nil || s == nil {
			return configError("WithTypeSchema", nil, "type and schema are required", nil)
		}
		if cfg.typeSchemas == nil {
			cfg.typeSchemas = make(map[reflect.Type]*jsonschema.Schema)
		}
		cfg.typeSchemas[t] = s
		return nil
	}
}

// WithSchema registers a hook that may tighten the derived schema, for
// example to add maxLength or pattern constraints. Hooks run in order, after
// derivation, on every derivation.
func WithSchema(hook func(*jsonschema.Schema) error) Option {
	return func(cfg *descriptorConfig) error {
		if hook == nil {
			return configError("WithSchema", nil, "schema hook cannot be nil", nil)
		}
		cfg.hooks = append(cfg.hooks, hook)
		return nil
	}
}

// WithDefault sets a default for a top-level property. The property becomes
// optional; when a body omits it, the default is filled in before the
// instance is built.
func WithDefault(property string, value any) Option {
	return func(cfg *descriptorConfig) error {
		raw, err := json.Marshal(value)
		if err != nil {
			return configError("WithDefault", property, "default is not JSON-encodable", err)
		}
		cfg.hooks = append(cfg.hooks, func(s *jsonschema.Schema) error {
			prop, ok := s.Properties[property]
			if !ok {
				return fmt.Errorf("default for unknown property %q", property)
			}
			prop.Default = raw
			s.Required = slices.DeleteFunc(s.Required, func(name string) bool {
				return name == property
			})
			return nil
		})
		return nil
	}
}
