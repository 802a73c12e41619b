package model

import (
	"fmt"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
)

// Descriptor identifies a typed model: a name, a way to derive its schema,
// and a constructor for empty instances.
type Descriptor struct {
	name string

	// goType is the struct type for registered models, nil for dynamic ones
	goType reflect.Type

	// derive produces a fresh schema on every call
	derive func() (*jsonschema.Schema, error)
}

// Name returns the model name.
func (d *Descriptor) Name() string {
	return d.name
}

// GoType returns the Go type backing the model, or nil for a dynamic model
// loaded from a model file.
func (d *Descriptor) GoType() reflect.Type {
	return d.goType
}

// Dynamic reports whether instances of the model are plain map[string]any
// values rather than a Go struct.
func (d *Descriptor) Dynamic() bool {
	return d.goType == nil
}

// DeriveSchema derives the JSON Schema for the model. Every call returns a
// new schema value, so callers may modify the result.
//
// The derivation may carry $defs or definitions; selecting the sub-definition
// that belongs to the model is left to the compiler.
func (d *Descriptor) DeriveSchema() (*jsonschema.Schema, error) {
	return d.derive()
}

// New returns a pointer to a new, empty instance: *T for a registered Go
// type, *map[string]any for a dynamic model.
func (d *Descriptor) New() any {
	if d.goType == nil {
		m := map[string]any{}
		return &m
	}
	return reflect.New(d.goType).Interface()
}

// String returns the model name and, for Go-backed models, its type.
func (d *Descriptor) String() string {
	if d.goType == nil {
		return d.name + " (dynamic)"
	}
	return fmt.Sprintf("%s (%s)", d.name, d.goType)
}

// NewDynamic creates a descriptor for a model described by a literal JSON
// Schema. The schema is cloned; later changes to s do not affect the
// descriptor.
func NewDynamic(name string, s *jsonschema.Schema) (*Descriptor, error) {
	if name == "" {
		return nil, configError("name", name, "model name cannot be empty", nil)
	}
	if s == nil {
		return nil, configError("schema", name, "model schema cannot be nil", nil)
	}
	frozen := s.CloneSchemas()
	return &Descriptor{
		name: name,
		derive: func() (*jsonschema.Schema, error) {
			return frozen.CloneSchemas(), nil
		},
	}, nil
}
