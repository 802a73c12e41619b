// Package model describes the typed shapes that request bodies are validated
// against.
//
// A [Descriptor] names a model, knows how to derive its JSON Schema and how
// to construct an empty instance. Descriptors come from two places:
//
//   - Go types, via [Register]. The schema is derived from the struct with
//     github.com/google/jsonschema-go: exported fields become properties under
//     their JSON names, fields without omitempty/omitzero are required, and
//     unknown properties are rejected.
//   - Model description files, via [LoadFile] or [Load]. Each entry carries a
//     name and a literal JSON Schema. Instances of such dynamic models are
//     plain map[string]any values.
//
// Descriptors are compared by identity. A [Registry] guarantees that
// registering the same Go type twice returns the same descriptor, so a
// descriptor can key a cache of compiled validators:
//
//	reg := model.NewRegistry()
//	user, err := model.Register[User](reg,
//		model.WithDefault("role", "member"),
//		model.WithSchema(func(s *jsonschema.Schema) error {
//			s.Properties["name"].MaxLength = jsonschema.Ptr(64)
//			return nil
//		}),
//	)
//
// A model file looks like:
//
//	models:
//	  - name: Item
//	    schema:
//	      type: object
//	      required: [id]
//	      properties:
//	        id: {type: integer}
//	        tags: {type: array, items: {type: string}}
//
// Descriptors are immutable once created and safe for concurrent use.
package model
