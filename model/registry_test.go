package model

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/erraggy/reqgate/gateerrors"
)

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

type order struct {
	Number int `json:"number"`
}

type withChannel struct {
	C chan int `json:"c"`
}

func TestRegister(t *testing.T) {
	t.Run("returns same descriptor for same type", func(t *testing.T) {
		reg := NewRegistry()
		a, err := Register[user](reg)
		require.NoError(t, err)
		b, err := Register[user](reg, WithName("ignored"))
		require.NoError(t, err)

		assert.Same(t, a, b)
		assert.Equal(t, "user", b.Name())
		assert.Equal(t, 1, reg.Len())
	})

	t.Run("different registries yield different descriptors", func(t *testing.T) {
		a := MustRegister[user](NewRegistry())
		b := MustRegister[user](NewRegistry())
		assert.NotSame(t, a, b)
	})

	t.Run("uses WithName", func(t *testing.T) {
		reg := NewRegistry()
		d, err := Register[order](reg, WithName("Order"))
		require.NoError(t, err)
		assert.Equal(t, "Order", d.Name())

		found, ok := reg.Lookup("Order")
		require.True(t, ok)
		assert.Same(t, d, found)
	})

	t.Run("rejects non-struct types", func(t *testing.T) {
		_, err := Register[map[string]any](NewRegistry())
		require.Error(t, err)
		assert.True(t, errors.Is(err, gateerrors.ErrConfig))
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		reg := NewRegistry()
		MustRegister[user](reg, WithName("Thing"))
		_, err := Register[order](reg, WithName("Thing"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("rejects invalid option", func(t *testing.T) {
		_, err := Register[user](NewRegistry(), WithName(""))
		require.Error(t, err)
		assert.True(t, errors.Is(err, gateerrors.ErrConfig))
	})

	t.Run("concurrent registration converges", func(t *testing.T) {
		reg := NewRegistry()
		results := make([]*Descriptor, 32)
		var g errgroup.Group
		for i := range results {
			g.Go(func() error {
				d, err := Register[user](reg)
				results[i] = d
				return err
			})
		}
		require.NoError(t, g.Wait())
		for _, d := range results {
			assert.Same(t, results[0], d)
		}
	})
}

func TestFor(t *testing.T) {
	type local struct {
		X int `json:"x"`
	}
	a, err := For[local]()
	require.NoError(t, err)
	b, err := For[local]()
	require.NoError(t, err)
	assert.Same(t, a, b)

	found, ok := Default().Lookup(a.Name())
	require.True(t, ok)
	assert.Same(t, a, found)
}

func TestDescriptor_DeriveSchema(t *testing.T) {
	t.Run("derives object schema from struct", func(t *testing.T) {
		d := MustRegister[user](NewRegistry())
		s, err := d.DeriveSchema()
		require.NoError(t, err)

		assert.Equal(t, "object", s.Type)
		assert.ElementsMatch(t, []string{"id", "name"}, s.Required)
		assert.Equal(t, "integer", s.Properties["id"].Type)
		assert.Equal(t, "string", s.Properties["name"].Type)
		assert.NotNil(t, s.AdditionalProperties)
	})

	t.Run("returns a fresh schema each call", func(t *testing.T) {
		d := MustRegister[user](NewRegistry())
		a, err := d.DeriveSchema()
		require.NoError(t, err)
		a.Properties["name"].MaxLength = jsonschema.Ptr(1)

		b, err := d.DeriveSchema()
		require.NoError(t, err)
		assert.Nil(t, b.Properties["name"].MaxLength)
	})

	t.Run("applies schema hooks", func(t *testing.T) {
		d := MustRegister[user](NewRegistry(), WithSchema(func(s *jsonschema.Schema) error {
			s.Properties["name"].MaxLength = jsonschema.Ptr(5)
			return nil
		}))
		s, err := d.DeriveSchema()
		require.NoError(t, err)
		require.NotNil(t, s.Properties["name"].MaxLength)
		assert.Equal(t, 5, *s.Properties["name"].MaxLength)
	})

	t.Run("default makes property optional", func(t *testing.T) {
		d := MustRegister[user](NewRegistry(), WithDefault("name", "anonymous"))
		s, err := d.DeriveSchema()
		require.NoError(t, err)
		assert.Equal(t, []string{"id"}, s.Required)
		assert.JSONEq(t, `"anonymous"`, string(s.Properties["name"].Default))
	})

	t.Run("default for unknown property fails derivation", func(t *testing.T) {
		d := MustRegister[user](NewRegistry(), WithDefault("missing", 1))
		_, err := d.DeriveSchema()
		require.Error(t, err)
		assert.True(t, errors.Is(err, gateerrors.ErrSchemaDerivation))
	})

	t.Run("unsupported field type fails derivation", func(t *testing.T) {
		d := MustRegister[withChannel](NewRegistry())
		_, err := d.DeriveSchema()
		require.Error(t, err)

		var sde *gateerrors.SchemaDerivationError
		require.True(t, errors.As(err, &sde))
		assert.Equal(t, "withChannel", sde.Model)
	})

	t.Run("bounds plain integer kinds", func(t *testing.T) {
		type sizes struct {
			I   int     `json:"i"`
			I64 int64   `json:"i64"`
			U   uint    `json:"u"`
			U64 uint64  `json:"u64"`
			P   *int64  `json:"p"`
			F   float64 `json:"f"`
		}
		s, err := MustRegister[sizes](NewRegistry()).DeriveSchema()
		require.NoError(t, err)

		for _, name := range []string{"i", "i64", "p"} {
			prop := s.Properties[name]
			require.NotNil(t, prop.Minimum, name)
			require.NotNil(t, prop.ExclusiveMaximum, name)
			assert.Equal(t, -math.Ldexp(1, 63), *prop.Minimum, name)
			assert.Equal(t, math.Ldexp(1, 63), *prop.ExclusiveMaximum, name)
		}
		for _, name := range []string{"u", "u64"} {
			prop := s.Properties[name]
			require.NotNil(t, prop.Minimum, name)
			assert.Zero(t, *prop.Minimum, name)
			assert.Equal(t, math.Ldexp(1, 64), *prop.ExclusiveMaximum, name)
		}
		assert.Equal(t, []string{"null", "integer"}, s.Properties["p"].Types)
		assert.Nil(t, s.Properties["f"].Minimum)
	})

	t.Run("type schema override", func(t *testing.T) {
		d := MustRegister[order](NewRegistry(), WithTypeSchema(reflect.TypeFor[int](), &jsonschema.Schema{
			Type:    "integer",
			Minimum: jsonschema.Ptr(1.0),
		}))
		s, err := d.DeriveSchema()
		require.NoError(t, err)
		require.NotNil(t, s.Properties["number"].Minimum)
		assert.Equal(t, 1.0, *s.Properties["number"].Minimum)
	})
}

func TestDescriptor_New(t *testing.T) {
	d := MustRegister[user](NewRegistry())
	v := d.New()
	_, ok := v.(*user)
	assert.True(t, ok, "New should return *user, got %T", v)
	assert.False(t, d.Dynamic())
	assert.Equal(t, reflect.TypeFor[user](), d.GoType())
	assert.Equal(t, "user (model.user)", d.String())

	dyn, err := NewDynamic("Item", &jsonschema.Schema{Type: "object"})
	require.NoError(t, err)
	_, ok = dyn.New().(*map[string]any)
	assert.True(t, ok)
	assert.True(t, dyn.Dynamic())
	assert.Nil(t, dyn.GoType())
	assert.Equal(t, "Item (dynamic)", dyn.String())
}

func TestNewDynamic(t *testing.T) {
	t.Run("clones input schema", func(t *testing.T) {
		s := &jsonschema.Schema{Type: "object"}
		d, err := NewDynamic("Item", s)
		require.NoError(t, err)
		s.Type = "string"

		got, err := d.DeriveSchema()
		require.NoError(t, err)
		assert.Equal(t, "object", got.Type)
	})

	t.Run("rejects empty name and nil schema", func(t *testing.T) {
		_, err := NewDynamic("", &jsonschema.Schema{})
		assert.True(t, errors.Is(err, gateerrors.ErrConfig))
		_, err = NewDynamic("x", nil)
		assert.True(t, errors.Is(err, gateerrors.ErrConfig))
	})
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"b", "c", "a"} {
		d, err := NewDynamic(name, &jsonschema.Schema{})
		require.NoError(t, err)
		require.NoError(t, reg.Add(d))
	}
	assert.Equal(t, []string{"a", "b", "c"}, reg.Names())

	descs := reg.Descriptors()
	require.Len(t, descs, 3)
	for i, d := range descs {
		assert.Equal(t, reg.Names()[i], d.Name(), fmt.Sprintf("descriptor %d", i))
	}

	dup, err := NewDynamic("a", &jsonschema.Schema{})
	require.NoError(t, err)
	assert.Error(t, reg.Add(dup))
}
