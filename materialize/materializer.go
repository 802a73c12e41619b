package materialize

import (
	"errors"
	"strconv"
	"strings"

	"github.com/segmentio/encoding/json"

	"github.com/erraggy/reqgate/gateerrors"
	"github.com/erraggy/reqgate/internal/issues"
	"github.com/erraggy/reqgate/internal/pathutil"
	"github.com/erraggy/reqgate/logging"
	"github.com/erraggy/reqgate/model"
	"github.com/erraggy/reqgate/validation"
)

// Materializer validates bodies against models and builds model values.
type Materializer struct {
	cache            *validation.Cache
	registry         *model.Registry
	logger           logging.Logger
	maxBodySize      int64
	normalizeUnicode bool
}

// New creates a Materializer. Unless WithCache is given, it owns a new cache
// of validation.DefaultCapacity entries.
func New(opts ...Option) (*Materializer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.cache != nil && cfg.capacitySet {
		return nil, &gateerrors.ConfigError{
			Option:  "WithCacheCapacity",
			Value:   cfg.cacheCapacity,
			Message: "cannot be combined with WithCache",
		}
	}

	cache := cfg.cache
	if cache == nil {
		var err error
		cache, err = validation.NewCache(
			validation.WithCapacity(cfg.cacheCapacity),
			validation.WithCacheLogger(cfg.logger),
		)
		if err != nil {
			return nil, err
		}
	}

	return &Materializer{
		cache:            cache,
		registry:         cfg.registry,
		logger:           cfg.logger.With("component", "materializer"),
		maxBodySize:      cfg.maxBodySize,
		normalizeUnicode: cfg.normalizeUnicode,
	}, nil
}

// Cache returns the validator cache in use.
func (m *Materializer) Cache() *validation.Cache {
	return m.cache
}

// Registry returns the registry used by the generic Object function.
func (m *Materializer) Registry() *model.Registry {
	return m.registry
}

// Validate decodes body if needed and checks it against desc without
// building a value. It returns nil, a *gateerrors.ValidationError or a
// *gateerrors.SchemaDerivationError.
func (m *Materializer) Validate(body any, desc *model.Descriptor) error {
	_, _, err := m.check(body, desc)
	return err
}

// Mapping validates body against desc and returns the canonical mapping of
// the resulting instance: JSON field names to coerced values, defaults
// included. For Go-backed models nested structs become nested mappings.
//
// A dynamic desc must have a schema that only accepts objects. Otherwise a
// body that passes validation yields a *gateerrors.SchemaDerivationError,
// since the fault lies in the model.
//
// body may be []byte, json.RawMessage, string (raw JSON), or an already
// decoded value such as map[string]any.
func (m *Materializer) Mapping(body any, desc *model.Descriptor) (map[string]any, error) {
	inst, err := m.build(body, desc)
	if err != nil {
		return nil, err
	}
	if !desc.Dynamic() {
		inst = toMapping(inst)
	}
	mapping, ok := inst.(map[string]any)
	if !ok {
		return nil, &gateerrors.SchemaDerivationError{
			Model:   desc.Name(),
			Message: "Mapping requires a model whose schema only accepts objects; use Object instead",
		}
	}
	return mapping, nil
}

// Object validates body against desc and returns the typed instance: a *T
// for a Go-backed model, or the normalized decoded value for a dynamic one.
func (m *Materializer) Object(body any, desc *model.Descriptor) (any, error) {
	return m.build(body, desc)
}

// Object validates body against the model registered for T in the
// Materializer's registry and returns the typed instance.
func Object[T any](m *Materializer, body any) (*T, error) {
	desc, err := model.Register[T](m.registry)
	if err != nil {
		return nil, err
	}
	inst, err := m.Object(body, desc)
	if err != nil {
		return nil, err
	}
	return inst.(*T), nil
}

// check runs the shared decode-and-validate path and returns the compiled
// validator with the data it accepted.
func (m *Materializer) check(body any, desc *model.Descriptor) (*validation.Compiled, any, error) {
	if desc == nil {
		return nil, nil, &gateerrors.SchemaDerivationError{Message: "descriptor is nil"}
	}

	data, err := m.decode(body, desc)
	if err != nil {
		return nil, nil, err
	}
	if m.normalizeUnicode {
		data = normalizeNFC(data)
	}

	compiled, err := m.cache.Get(desc)
	if err != nil {
		return nil, nil, err
	}

	if found := compiled.Validate(data); len(found) > 0 {
		return nil, nil, m.reject(desc, body, nil, found...)
	}
	return compiled, data, nil
}

func (m *Materializer) build(body any, desc *model.Descriptor) (any, error) {
	compiled, data, err := m.check(body, desc)
	if err != nil {
		return nil, err
	}

	normalized, err := compiled.Normalize(data)
	if err != nil {
		return nil, &gateerrors.SchemaDerivationError{
			Model:   desc.Name(),
			Message: "cannot apply defaults",
			Cause:   err,
		}
	}
	if desc.Dynamic() {
		return normalized, nil
	}

	inst := desc.New()
	raw, err := json.Marshal(normalized)
	if err == nil {
		err = json.Unmarshal(raw, inst)
	}
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, m.reject(desc, body, err, issues.Newf(fieldPath(normalized, typeErr.Field),
				"type", "%s does not fit Go type %s", typeErr.Value, typeErr.Type))
		}
		return nil, m.reject(desc, body, err, issues.Newf(nil, "model", "cannot build %s: %v", desc.Name(), err))
	}
	return inst, nil
}

// fieldPath locates the dotted field name reported by the JSON decoder inside
// data. Keys that themselves contain dots are matched by trying the shortest
// join first. The walk stops at the deepest segment it can resolve.
func fieldPath(data any, field string) pathutil.Path {
	parts := strings.Split(field, ".")
	var path pathutil.Path
	cur := data
	for i := 0; i < len(parts); {
		switch v := cur.(type) {
		case []any:
			idx, err := strconv.Atoi(parts[i])
			if err != nil || idx < 0 || idx >= len(v) {
				return path
			}
			path = path.Child(pathutil.IndexSegment(idx))
			cur = v[idx]
			i++
		case map[string]any:
			next := -1
			for j := i + 1; j <= len(parts); j++ {
				key := strings.Join(parts[i:j], ".")
				if child, ok := v[key]; ok {
					path = path.Child(pathutil.KeySegment(key))
					cur = child
					next = j
					break
				}
			}
			if next < 0 {
				return path
			}
			i = next
		default:
			return path
		}
	}
	return path
}

// decode turns body into structured data. Raw input goes through Decode;
// anything else is taken as already decoded.
func (m *Materializer) decode(body any, desc *model.Descriptor) (any, error) {
	var raw []byte
	switch b := body.(type) {
	case []byte:
		raw = b
	case json.RawMessage:
		raw = b
	case string:
		raw = []byte(b)
	default:
		return body, nil
	}

	if m.maxBodySize > 0 && int64(len(raw)) > m.maxBodySize {
		return nil, m.reject(desc, body, nil,
			issues.Newf(nil, "maxBodySize", "body of %d bytes exceeds limit of %d bytes", len(raw), m.maxBodySize))
	}

	data, err := Decode(raw)
	if err != nil {
		return nil, m.reject(desc, body, err, issues.New(nil, "json", err.Error()))
	}
	return data, nil
}

func (m *Materializer) reject(desc *model.Descriptor, body any, cause error, found ...issues.Issue) error {
	m.logger.Debug("rejected body", "model", desc.Name(), "issues", len(found))
	return &gateerrors.ValidationError{
		Model:  desc.Name(),
		Issues: found,
		Body:   body,
		Cause:  cause,
	}
}
