// Package validation compiles model schemas into multi-error validators and
// caches them.
//
// [Compile] turns a [model.Descriptor] into a [Compiled] validator: the
// descriptor's JSON Schema is derived, the sub-definition named after the
// model is selected when the derivation carries $defs, the schema is checked
// with github.com/google/jsonschema-go, and every keyword is turned into a
// ready-to-run rule with regular expressions compiled up front.
//
// [Compiled.Validate] walks already decoded data and reports every violation
// it finds, not just the first one. Issues are ordered by field path so the
// same input always yields the same list:
//
//	c, err := validation.Compile(desc)
//	if err != nil {
//		return err // *gateerrors.SchemaDerivationError
//	}
//	for _, issue := range c.Validate(data) {
//		fmt.Println(issue.Field, issue.Validator, issue.Message)
//	}
//
// Field paths start at "$" and use ".name" for identifier keys, "['a b']" for
// other keys and "[i]" for array indices. A missing required property is
// reported at the path of the object that lacks it.
//
// # Caching
//
// [Cache] memoizes compiled validators per descriptor in a bounded LRU
// (github.com/hashicorp/golang-lru/v2), 128 entries by default. Compilation
// is pure, so two goroutines missing on the same descriptor may both compile;
// only one result stays resident.
package validation
