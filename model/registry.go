package model

import (
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/erraggy/reqgate/gateerrors"
)

// Registry maps Go types and model names to descriptors.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*Descriptor
	byName map[string]*Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]*Descriptor),
		byName: make(map[string]*Descriptor),
	}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by [For].
func Default() *Registry {
	return defaultRegistry
}

// Register returns the descriptor for the struct type T, creating it on the
// first call. Later calls for the same T return the same descriptor and
// ignore opts.
//
// Schema derivation is deferred until the descriptor is compiled, so a type
// that cannot be expressed as JSON Schema registers fine and fails with a
// *gateerrors.SchemaDerivationError when first used.
func Register[T any](r *Registry, opts ...Option) (*Descriptor, error) {
	return r.register(reflect.TypeFor[T](), opts)
}

// MustRegister is like Register but panics on error.
func MustRegister[T any](r *Registry, opts ...Option) *Descriptor {
	d, err := Register[T](r, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// For returns the descriptor for T from the default registry.
func For[T any](opts ...Option) (*Descriptor, error) {
	return Register[T](defaultRegistry, opts...)
}

func (r *Registry) register(t reflect.Type, opts []Option) (*Descriptor, error) {
	r.mu.RLock()
	d, ok := r.byType[t]
	r.mu.RUnlock()
	if ok {
		return d, nil
	}

	if t.Kind() != reflect.Struct {
		return nil, configError("type", t.String(), "model type must be a struct", nil)
	}

	cfg := descriptorConfig{name: t.Name()}
	if cfg.name == "" {
		cfg.name = t.String()
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	d = &Descriptor{
		name:   cfg.name,
		goType: t,
		derive: structDeriver(t, cfg),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another goroutine may have won the race.
	if existing, ok := r.byType[t]; ok {
		return existing, nil
	}
	if other, ok := r.byName[d.name]; ok {
		return nil, configError("name", d.name, fmt.Sprintf("model name already registered for %s", other), nil)
	}
	r.byType[t] = d
	r.byName[d.name] = d
	return d, nil
}

// integerSchemas bounds the integer kinds that jsonschema-go leaves open, so
// out-of-range numbers fail validation at their own field instead of when
// the instance is built. Upper bounds are exclusive powers of two, which
// float64 holds exactly.
func integerSchemas() map[reflect.Type]*jsonschema.Schema {
	signed := func(bits int) *jsonschema.Schema {
		return &jsonschema.Schema{
			Type:             "integer",
			Minimum:          jsonschema.Ptr(-math.Ldexp(1, bits-1)),
			ExclusiveMaximum: jsonschema.Ptr(math.Ldexp(1, bits-1)),
		}
	}
	unsigned := func(bits int) *jsonschema.Schema {
		return &jsonschema.Schema{
			Type:             "integer",
			Minimum:          jsonschema.Ptr(0.0),
			ExclusiveMaximum: jsonschema.Ptr(math.Ldexp(1, bits)),
		}
	}
	return map[reflect.Type]*jsonschema.Schema{
		reflect.TypeFor[int]():    signed(strconv.IntSize),
		reflect.TypeFor[int64]():  signed(64),
		reflect.TypeFor[uint]():   unsigned(strconv.IntSize),
		reflect.TypeFor[uint64](): unsigned(64),
	}
}

func structDeriver(t reflect.Type, cfg descriptorConfig) func() (*jsonschema.Schema, error) {
	typeSchemas := integerSchemas()
	maps.Copy(typeSchemas, cfg.typeSchemas)
	forOpts := &jsonschema.ForOptions{TypeSchemas: typeSchemas}
	hooks := slices.Clone(cfg.hooks)
	return func() (*jsonschema.Schema, error) {
		s, err := jsonschema.ForType(t, forOpts)
		if err != nil {
			return nil, &gateerrors.SchemaDerivationError{
				Model:   cfg.name,
				Message: "cannot derive schema from Go type",
				Cause:   err,
			}
		}
		for _, hook := range hooks {
			if err := hook(s); err != nil {
				return nil, &gateerrors.SchemaDerivationError{
					Model:   cfg.name,
					Message: "schema option failed",
					Cause:   err,
				}
			}
		}
		return s, nil
	}
}

// Add registers a descriptor under its name. Adding a name twice is a
// *gateerrors.ConfigError.
func (r *Registry) Add(d *Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[d.name]; ok {
		return configError("name", d.name, "model name already registered", nil)
	}
	r.byName[d.name] = d
	if d.goType != nil {
		r.byType[d.goType] = d
	}
	return nil
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}

// Names returns the registered model names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Descriptors returns all registered descriptors ordered by name.
func (r *Registry) Descriptors() []*Descriptor {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, 0, len(names))
	for _, name := range names {
		if d, ok := r.byName[name]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

func configError(option string, value any, msg string, cause error) error {
	return &gateerrors.ConfigError{
		Option:  option,
		Value:   value,
		Message: msg,
		Cause:   cause,
	}
}
