package validation

import (
	"fmt"
	"math/big"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/erraggy/reqgate/gateerrors"
	"github.com/erraggy/reqgate/internal/maputil"
	"github.com/erraggy/reqgate/model"
)

// Compiled is the ready-to-run validator for one model. It is immutable and
// safe for concurrent use.
type Compiled struct {
	model    string
	schema   *jsonschema.Schema
	resolved *jsonschema.Resolved
	root     *node

	// hasDefaults is set when any property schema declares a default
	hasDefaults bool
}

// node is one compiled schema. Nodes form a graph: $ref edges may point back
// to an ancestor.
type node struct {
	// never is set for the false schema, which rejects every value
	never bool

	types []string

	enum     []any
	hasConst bool
	constVal any

	minLength, maxLength *int
	pattern              *regexp.Regexp
	format               string

	minimum, maximum                   *bound
	exclusiveMinimum, exclusiveMaximum *bound
	multipleOf                         *bound

	minItems, maxItems       *int
	uniqueItems              bool
	prefixItems              []*node
	items                    *node
	contains                 *node
	minContains, maxContains *int

	required          []string
	dependentRequired map[string][]string
	properties        map[string]*node
	patternProperties []patternProperty
	additional        *node
	propertyNames     *node
	minProperties     *int
	maxProperties     *int

	allOf, anyOf, oneOf []*node
	not                 *node
	ifNode              *node
	thenNode, elseNode  *node

	ref *node
}

var knownTypes = map[string]bool{
	"null": true, "boolean": true, "object": true, "array": true,
	"number": true, "integer": true, "string": true,
}

type patternProperty struct {
	re   *regexp.Regexp
	node *node
}

// bound is a numeric keyword value kept both as text, for messages, and as an
// exact rational, for comparison.
type bound struct {
	text string
	rat  *big.Rat
}

// Compile derives the schema for desc and builds a validator from it.
//
// If the derivation carries $defs (or draft-07 definitions) with an entry
// named after the model, that entry becomes the root; the remaining
// definitions stay available to $ref. Any failure is returned as a
// *gateerrors.SchemaDerivationError.
func Compile(desc *model.Descriptor) (*Compiled, error) {
	if desc == nil {
		return nil, &gateerrors.SchemaDerivationError{Message: "descriptor is nil"}
	}

	derived, err := desc.DeriveSchema()
	if err != nil {
		return nil, asDerivationError(desc.Name(), err)
	}
	if derived == nil {
		return nil, &gateerrors.SchemaDerivationError{Model: desc.Name(), Message: "descriptor produced no schema"}
	}

	root := selectDefinition(derived, desc.Name())
	resolved, err := root.Resolve(&jsonschema.ResolveOptions{ValidateDefaults: true})
	if err != nil {
		return nil, &gateerrors.SchemaDerivationError{
			Model:   desc.Name(),
			Message: "invalid schema",
			Cause:   err,
		}
	}

	c := &compiler{root: root, nodes: make(map[*jsonschema.Schema]*node)}
	n, err := c.compile(root)
	if err != nil {
		return nil, &gateerrors.SchemaDerivationError{
			Model:   desc.Name(),
			Message: "cannot compile schema",
			Cause:   err,
		}
	}

	return &Compiled{
		model:       desc.Name(),
		schema:      root,
		resolved:    resolved,
		root:        n,
		hasDefaults: c.hasDefaults,
	}, nil
}

// Model returns the name of the model this validator was compiled for.
func (c *Compiled) Model() string {
	return c.model
}

// Schema returns a copy of the schema the validator was compiled from.
func (c *Compiled) Schema() *jsonschema.Schema {
	return c.schema.CloneSchemas()
}

func asDerivationError(model string, err error) error {
	if _, ok := err.(*gateerrors.SchemaDerivationError); ok {
		return err
	}
	return &gateerrors.SchemaDerivationError{Model: model, Cause: err}
}

// selectDefinition returns the sub-definition named name when s carries one,
// with the rest of the definitions attached so local references still
// resolve. Otherwise s is returned unchanged.
func selectDefinition(s *jsonschema.Schema, name string) *jsonschema.Schema {
	defs, draft7 := s.Defs, false
	if defs == nil {
		defs, draft7 = s.Definitions, true
	}
	def, ok := defs[name]
	if !ok || def == nil {
		return s
	}

	root := def.CloneSchemas()
	target := &root.Defs
	switch {
	case root.Definitions != nil:
		target = &root.Definitions
	case root.Defs == nil && draft7:
		target = &root.Definitions
	}
	if *target == nil {
		*target = make(map[string]*jsonschema.Schema, len(defs))
	}
	for k, v := range defs {
		if _, exists := (*target)[k]; !exists {
			(*target)[k] = v.CloneSchemas()
		}
	}
	return root
}

type compiler struct {
	root        *jsonschema.Schema
	nodes       map[*jsonschema.Schema]*node
	hasDefaults bool
}

func (c *compiler) compile(s *jsonschema.Schema) (*node, error) {
	if s == nil {
		return nil, nil
	}
	if n, ok := c.nodes[s]; ok {
		return n, nil
	}
	n := &node{}
	c.nodes[s] = n

	if isFalseSchema(s) {
		n.never = true
		return n, nil
	}

	if s.DynamicRef != "" {
		return nil, fmt.Errorf("$dynamicRef %q is not supported", s.DynamicRef)
	}
	if s.UnevaluatedItems != nil || s.UnevaluatedProperties != nil {
		return nil, fmt.Errorf("unevaluatedItems and unevaluatedProperties are not supported")
	}

	if s.Default != nil {
		c.hasDefaults = true
	}

	var err error
	if s.Ref != "" {
		var target *jsonschema.Schema
		if target, err = c.lookupRef(s.Ref); err != nil {
			return nil, err
		}
		if n.ref, err = c.compile(target); err != nil {
			return nil, err
		}
	}

	switch {
	case s.Type != "":
		n.types = []string{s.Type}
	case len(s.Types) > 0:
		n.types = slices.Clone(s.Types)
	}
	for _, t := range n.types {
		if !knownTypes[t] {
			return nil, fmt.Errorf("unknown type %q", t)
		}
	}
	n.enum = s.Enum
	if s.Const != nil {
		n.hasConst = true
		n.constVal = *s.Const
	}

	// strings
	n.minLength, n.maxLength = s.MinLength, s.MaxLength
	if s.Pattern != "" {
		if n.pattern, err = regexp.Compile(s.Pattern); err != nil {
			return nil, fmt.Errorf("pattern %q: %w", s.Pattern, err)
		}
	}
	n.format = s.Format

	// numbers
	n.minimum = newBound(s.Minimum)
	n.maximum = newBound(s.Maximum)
	n.exclusiveMinimum = newBound(s.ExclusiveMinimum)
	n.exclusiveMaximum = newBound(s.ExclusiveMaximum)
	n.multipleOf = newBound(s.MultipleOf)
	if n.multipleOf != nil && n.multipleOf.rat.Sign() <= 0 {
		return nil, fmt.Errorf("multipleOf must be positive, got %s", n.multipleOf.text)
	}

	// arrays
	n.minItems, n.maxItems = s.MinItems, s.MaxItems
	n.uniqueItems = s.UniqueItems
	prefix, rest := s.PrefixItems, s.Items
	if len(s.ItemsArray) > 0 {
		prefix, rest = s.ItemsArray, s.AdditionalItems
	}
	if n.prefixItems, err = c.compileAll(prefix); err != nil {
		return nil, err
	}
	if n.items, err = c.compile(rest); err != nil {
		return nil, err
	}
	if n.contains, err = c.compile(s.Contains); err != nil {
		return nil, err
	}
	n.minContains, n.maxContains = s.MinContains, s.MaxContains

	// objects
	n.required = s.Required
	n.dependentRequired = s.DependentRequired
	n.minProperties, n.maxProperties = s.MinProperties, s.MaxProperties
	if len(s.Properties) > 0 {
		n.properties = make(map[string]*node, len(s.Properties))
		for name, ps := range s.Properties {
			if n.properties[name], err = c.compile(ps); err != nil {
				return nil, err
			}
		}
	}
	for _, expr := range maputil.SortedKeys(s.PatternProperties) {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("patternProperties %q: %w", expr, err)
		}
		pn, err := c.compile(s.PatternProperties[expr])
		if err != nil {
			return nil, err
		}
		n.patternProperties = append(n.patternProperties, patternProperty{re: re, node: pn})
	}
	if n.additional, err = c.compile(s.AdditionalProperties); err != nil {
		return nil, err
	}
	if n.propertyNames, err = c.compile(s.PropertyNames); err != nil {
		return nil, err
	}

	// composition
	if n.allOf, err = c.compileAll(s.AllOf); err != nil {
		return nil, err
	}
	if n.anyOf, err = c.compileAll(s.AnyOf); err != nil {
		return nil, err
	}
	if n.oneOf, err = c.compileAll(s.OneOf); err != nil {
		return nil, err
	}
	if n.not, err = c.compile(s.Not); err != nil {
		return nil, err
	}
	if s.If != nil {
		if n.ifNode, err = c.compile(s.If); err != nil {
			return nil, err
		}
		if n.thenNode, err = c.compile(s.Then); err != nil {
			return nil, err
		}
		if n.elseNode, err = c.compile(s.Else); err != nil {
			return nil, err
		}
	}

	return n, nil
}

func (c *compiler) compileAll(list []*jsonschema.Schema) ([]*node, error) {
	if len(list) == 0 {
		return nil, nil
	}
	nodes := make([]*node, len(list))
	for i, s := range list {
		n, err := c.compile(s)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return nodes, nil
}

// lookupRef resolves a local reference: "#", "#/$defs/<name>" or
// "#/definitions/<name>".
func (c *compiler) lookupRef(ref string) (*jsonschema.Schema, error) {
	if ref == "#" {
		return c.root, nil
	}
	var defs map[string]*jsonschema.Schema
	var name string
	switch {
	case strings.HasPrefix(ref, "#/$defs/"):
		defs, name = c.root.Defs, strings.TrimPrefix(ref, "#/$defs/")
	case strings.HasPrefix(ref, "#/definitions/"):
		defs, name = c.root.Definitions, strings.TrimPrefix(ref, "#/definitions/")
	default:
		return nil, fmt.Errorf("unsupported $ref %q: only local definitions are allowed", ref)
	}
	name = strings.NewReplacer("~1", "/", "~0", "~").Replace(name)
	target, ok := defs[name]
	if !ok || target == nil {
		return nil, fmt.Errorf("$ref %q does not resolve", ref)
	}
	return target, nil
}

// isFalseSchema reports whether s is the boolean schema false, which
// jsonschema-go represents as {"not": {}}.
func isFalseSchema(s *jsonschema.Schema) bool {
	if s.Not == nil || !reflect.ValueOf(*s.Not).IsZero() {
		return false
	}
	rest := *s
	rest.Not = nil
	return reflect.ValueOf(rest).IsZero()
}

func newBound(f *float64) *bound {
	if f == nil {
		return nil
	}
	text := strconv.FormatFloat(*f, 'f', -1, 64)
	r, ok := new(big.Rat).SetString(text)
	if !ok {
		return nil
	}
	return &bound{text: text, rat: r}
}
