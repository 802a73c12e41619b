package validation

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/segmentio/encoding/json"

	"github.com/erraggy/reqgate/internal/issues"
	"github.com/erraggy/reqgate/internal/maputil"
	"github.com/erraggy/reqgate/internal/pathutil"
	"github.com/erraggy/reqgate/internal/stringutil"
)

// maxDepth bounds how deeply schemas may nest through $ref while walking a
// single value.
const maxDepth = 256

// Validate checks data against the compiled rules and returns every
// violation, ordered by field path. An empty result means data is valid.
//
// data must be already decoded: map[string]any, []any, string, bool, nil,
// json.Number, float64 or any Go integer kind.
func (c *Compiled) Validate(data any) []issues.Issue {
	w := &walker{path: pathutil.AcquireCursor()}
	defer w.path.Release()

	w.validate(c.root, data)
	issues.Sort(w.issues)
	return w.issues
}

// walker accumulates issues for one Validate call.
type walker struct {
	issues []issues.Issue
	path   *pathutil.Cursor
	depth  int
}

func (w *walker) addf(validator, format string, args ...any) {
	w.issues = append(w.issues, issues.Newf(w.path.Path(), validator, format, args...))
}

// try reports whether v satisfies n, discarding any issues found.
func (w *walker) try(n *node, v any) bool {
	mark := len(w.issues)
	w.validate(n, v)
	ok := len(w.issues) == mark
	w.issues = w.issues[:mark]
	return ok
}

func (w *walker) validate(n *node, v any) {
	if n == nil {
		return
	}
	if n.never {
		w.addf("false", "no value is allowed here")
		return
	}
	if w.depth >= maxDepth {
		w.addf("depth", "schema nesting exceeds %d levels", maxDepth)
		return
	}
	w.depth++
	defer func() { w.depth-- }()

	if n.ref != nil {
		w.validate(n.ref, v)
	}

	val := classify(v)
	if len(n.types) > 0 && !typeAllowed(n.types, val.kind) {
		w.addf("type", "expected type %s but got %s", strings.Join(n.types, " or "), val.kind)
		return
	}

	switch val.kind {
	case "string":
		w.validateString(n, val.str)
	case "integer", "number":
		w.validateNumber(n, val)
	case "array":
		w.validateArray(n, val.arr)
	case "object":
		w.validateObject(n, val.obj)
	}

	if len(n.enum) > 0 && !slices.ContainsFunc(n.enum, func(e any) bool { return jsonschema.Equal(v, e) }) {
		w.addf("enum", "value %s is not one of the allowed values", describe(v))
	}
	if n.hasConst && !jsonschema.Equal(v, n.constVal) {
		w.addf("const", "value must be %s", describe(n.constVal))
	}

	w.validateComposition(n, v)
}

func (w *walker) validateString(n *node, s string) {
	if n.minLength != nil || n.maxLength != nil {
		length := utf8.RuneCountInString(s)
		if n.minLength != nil && length < *n.minLength {
			w.addf("minLength", "string length %d is less than minimum %d", length, *n.minLength)
		}
		if n.maxLength != nil && length > *n.maxLength {
			w.addf("maxLength", "string length %d exceeds maximum %d", length, *n.maxLength)
		}
	}
	if n.pattern != nil && !n.pattern.MatchString(s) {
		w.addf("pattern", "string does not match pattern %q", n.pattern.String())
	}
	if n.format != "" {
		if valid, _ := stringutil.CheckFormat(n.format, s); !valid {
			w.addf("format", "%q is not a valid %s", s, n.format)
		}
	}
}

func (w *walker) validateNumber(n *node, val value) {
	if val.num == nil {
		// NaN and infinities carry no comparable value.
		return
	}
	if n.minimum != nil && val.num.Cmp(n.minimum.rat) < 0 {
		w.addf("minimum", "value %s is less than minimum %s", val.text, n.minimum.text)
	}
	if n.maximum != nil && val.num.Cmp(n.maximum.rat) > 0 {
		w.addf("maximum", "value %s exceeds maximum %s", val.text, n.maximum.text)
	}
	if n.exclusiveMinimum != nil && val.num.Cmp(n.exclusiveMinimum.rat) <= 0 {
		w.addf("exclusiveMinimum", "value %s must be greater than %s", val.text, n.exclusiveMinimum.text)
	}
	if n.exclusiveMaximum != nil && val.num.Cmp(n.exclusiveMaximum.rat) >= 0 {
		w.addf("exclusiveMaximum", "value %s must be less than %s", val.text, n.exclusiveMaximum.text)
	}
	if n.multipleOf != nil {
		q := new(big.Rat).Quo(val.num, n.multipleOf.rat)
		if !q.IsInt() {
			w.addf("multipleOf", "value %s is not a multiple of %s", val.text, n.multipleOf.text)
		}
	}
}

func (w *walker) validateArray(n *node, arr []any) {
	if n.minItems != nil && len(arr) < *n.minItems {
		w.addf("minItems", "array has %d items, minimum is %d", len(arr), *n.minItems)
	}
	if n.maxItems != nil && len(arr) > *n.maxItems {
		w.addf("maxItems", "array has %d items, maximum is %d", len(arr), *n.maxItems)
	}
	if n.uniqueItems {
		if i, j, dup := firstDuplicate(arr); dup {
			w.addf("uniqueItems", "array items %d and %d are equal", i, j)
		}
	}

	if n.contains != nil {
		matches := 0
		for i, item := range arr {
			w.path.Index(i)
			if w.try(n.contains, item) {
				matches++
			}
			w.path.Up()
		}
		minContains := 1
		if n.minContains != nil {
			minContains = *n.minContains
		}
		switch {
		case matches < minContains && matches == 0:
			w.addf("contains", "array does not contain a matching item")
		case matches < minContains:
			w.addf("minContains", "array contains %d matching items, minimum is %d", matches, minContains)
		case n.maxContains != nil && matches > *n.maxContains:
			w.addf("maxContains", "array contains %d matching items, maximum is %d", matches, *n.maxContains)
		}
	}

	for i, item := range arr {
		var itemNode *node
		if i < len(n.prefixItems) {
			itemNode = n.prefixItems[i]
		} else {
			itemNode = n.items
		}
		if itemNode == nil {
			continue
		}
		w.path.Index(i)
		w.validate(itemNode, item)
		w.path.Up()
	}
}

func (w *walker) validateObject(n *node, obj map[string]any) {
	for _, name := range n.required {
		if _, ok := obj[name]; !ok {
			w.addf("required", "required property %q is missing", name)
		}
	}
	for _, trigger := range maputil.SortedKeys(n.dependentRequired) {
		if _, ok := obj[trigger]; !ok {
			continue
		}
		for _, name := range n.dependentRequired[trigger] {
			if _, ok := obj[name]; !ok {
				w.addf("dependentRequired", "property %q is required when %q is present", name, trigger)
			}
		}
	}
	if n.minProperties != nil && len(obj) < *n.minProperties {
		w.addf("minProperties", "object has %d properties, minimum is %d", len(obj), *n.minProperties)
	}
	if n.maxProperties != nil && len(obj) > *n.maxProperties {
		w.addf("maxProperties", "object has %d properties, maximum is %d", len(obj), *n.maxProperties)
	}

	for _, name := range maputil.SortedKeys(obj) {
		value := obj[name]
		w.path.Key(name)

		if n.propertyNames != nil {
			w.validate(n.propertyNames, name)
		}

		matched := false
		if pn, ok := n.properties[name]; ok {
			matched = true
			w.validate(pn, value)
		}
		for _, pp := range n.patternProperties {
			if pp.re.MatchString(name) {
				matched = true
				w.validate(pp.node, value)
			}
		}
		if !matched && n.additional != nil {
			if n.additional.never {
				w.addf("additionalProperties", "additional property %q is not allowed", name)
			} else {
				w.validate(n.additional, value)
			}
		}

		w.path.Up()
	}
}

func (w *walker) validateComposition(n *node, v any) {
	for _, sub := range n.allOf {
		w.validate(sub, v)
	}

	if len(n.anyOf) > 0 && !slices.ContainsFunc(n.anyOf, func(sub *node) bool { return w.try(sub, v) }) {
		w.addf("anyOf", "value does not match any of the anyOf schemas")
	}

	if len(n.oneOf) > 0 {
		matches := 0
		for _, sub := range n.oneOf {
			if w.try(sub, v) {
				matches++
			}
		}
		switch {
		case matches == 0:
			w.addf("oneOf", "value does not match any of the oneOf schemas")
		case matches > 1:
			w.addf("oneOf", "value matches %d oneOf schemas, expected exactly 1", matches)
		}
	}

	if n.not != nil && w.try(n.not, v) {
		w.addf("not", "value must not match the schema in not")
	}

	if n.ifNode != nil {
		if w.try(n.ifNode, v) {
			w.validate(n.thenNode, v)
		} else {
			w.validate(n.elseNode, v)
		}
	}
}

// numberText matches json.Number look-alikes from other decoders.
type numberText interface {
	String() string
	Int64() (int64, error)
	Float64() (float64, error)
}

// value is a decoded JSON value sorted by kind.
type value struct {
	kind string
	str  string
	num  *big.Rat
	text string
	arr  []any
	obj  map[string]any
}

// classify reports the JSON kind of v. Whole numbers are "integer", so a
// float64 of 2 satisfies an integer schema.
func classify(v any) value {
	switch x := v.(type) {
	case nil:
		return value{kind: "null"}
	case bool:
		return value{kind: "boolean"}
	case string:
		return value{kind: "string", str: x}
	case json.Number:
		r, ok := new(big.Rat).SetString(x.String())
		if !ok {
			return value{kind: "number", text: x.String()}
		}
		return numberValue(r, x.String())
	case numberText:
		r, ok := new(big.Rat).SetString(x.String())
		if !ok {
			return value{kind: "number", text: x.String()}
		}
		return numberValue(r, x.String())
	case float64:
		return floatValue(x)
	case []any:
		return value{kind: "array", arr: x}
	case map[string]any:
		return value{kind: "object", obj: x}
	}

	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return numberValue(new(big.Rat).SetInt64(rv.Int()), strconv.FormatInt(rv.Int(), 10))
	case rv.CanUint():
		return numberValue(new(big.Rat).SetUint64(rv.Uint()), strconv.FormatUint(rv.Uint(), 10))
	case rv.CanFloat():
		return floatValue(rv.Float())
	}
	switch rv.Kind() {
	case reflect.Bool:
		return value{kind: "boolean"}
	case reflect.String:
		return value{kind: "string", str: rv.String()}
	case reflect.Slice, reflect.Array:
		arr := make([]any, rv.Len())
		for i := range arr {
			arr[i] = rv.Index(i).Interface()
		}
		return value{kind: "array", arr: arr}
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		obj := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			obj[iter.Key().String()] = iter.Value().Interface()
		}
		return value{kind: "object", obj: obj}
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return value{kind: "null"}
		}
		return classify(rv.Elem().Interface())
	}
	return value{kind: fmt.Sprintf("unsupported %T", v)}
}

func floatValue(f float64) value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return value{kind: "number", text: strconv.FormatFloat(f, 'g', -1, 64)}
	}
	text := strconv.FormatFloat(f, 'f', -1, 64)
	r, _ := new(big.Rat).SetString(text)
	return numberValue(r, text)
}

func numberValue(r *big.Rat, text string) value {
	kind := "number"
	if r.IsInt() {
		kind = "integer"
	}
	return value{kind: kind, num: r, text: text}
}

func typeAllowed(types []string, kind string) bool {
	for _, t := range types {
		if t == kind || (t == "number" && kind == "integer") {
			return true
		}
	}
	return false
}

func firstDuplicate(arr []any) (int, int, bool) {
	for i := range arr {
		for j := i + 1; j < len(arr); j++ {
			if jsonschema.Equal(arr[i], arr[j]) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// describe renders a value for an issue message.
func describe(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case nil:
		return "null"
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprint(v)
}
