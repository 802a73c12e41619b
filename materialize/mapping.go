package materialize

import (
	"encoding"
	"reflect"
	"strings"

	"github.com/segmentio/encoding/json"
)

var (
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// toMapping converts a built instance to its canonical mapping form.
// Structs become map[string]any keyed by JSON field name, slices become
// []any, and scalars keep their Go type. Types that marshal themselves,
// such as time.Time, are kept as they are.
func toMapping(v any) any {
	return mappingOf(reflect.ValueOf(v))
}

func mappingOf(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return mappingOf(v.Elem())

	case reflect.Struct:
		if selfMarshaling(v.Type()) {
			return v.Interface()
		}
		out := make(map[string]any, v.NumField())
		structFields(v, out)
		return out

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		if v.Type().Key().Kind() != reflect.String {
			return v.Interface()
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = mappingOf(iter.Value())
		}
		return out

	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice {
			if v.IsNil() {
				return nil
			}
			if v.Type().Elem().Kind() == reflect.Uint8 {
				return v.Interface()
			}
		}
		out := make([]any, v.Len())
		for i := range out {
			out[i] = mappingOf(v.Index(i))
		}
		return out

	default:
		return v.Interface()
	}
}

// structFields copies exported fields into out under their JSON names,
// flattening untagged embedded structs like encoding/json does.
func structFields(v reflect.Value, out map[string]any) {
	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		name, skip := jsonName(sf)
		if skip {
			continue
		}

		fv := v.Field(i)
		if sf.Anonymous && name == "" {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				ft, fv = ft.Elem(), fv.Elem()
			}
			if ft.Kind() == reflect.Struct && !selfMarshaling(ft) {
				structFields(fv, out)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		out[name] = mappingOf(fv)
	}
}

// jsonName returns the name from the json tag, which may be empty, and
// whether the field is excluded.
func jsonName(sf reflect.StructField) (string, bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(tag, ",")
	if !sf.IsExported() && !sf.Anonymous {
		return "", true
	}
	return name, false
}

func selfMarshaling(t reflect.Type) bool {
	return t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) ||
		reflect.PointerTo(t).Implements(jsonMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType)
}
