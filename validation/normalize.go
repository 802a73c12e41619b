package validation

import (
	"math"
	"math/big"
	"slices"
	"strconv"

	"github.com/segmentio/encoding/json"
)

// maxRefHops bounds how many $ref-only schemas are followed when looking for
// the schema that declares a value's type.
const maxRefHops = 64

// Normalize returns a copy of data shaped the way the model declares it:
// missing optional properties receive their schema defaults, and numbers are
// converted to int64 where the schema says "integer" and to float64 where it
// says "number". Numbers the schema does not type become int64 when whole
// and float64 otherwise. Integers outside the int64 range are left as
// json.Number.
//
// Normalize never modifies data. It is meant for data that already passed
// Validate.
func (c *Compiled) Normalize(data any) (any, error) {
	out := coerce(c.root, data, 0)
	if !c.hasDefaults {
		return out, nil
	}
	m, ok := out.(map[string]any)
	if !ok {
		return out, nil
	}
	if err := c.resolved.ApplyDefaults(&m); err != nil {
		return nil, err
	}
	// Defaults are decoded as float64; give them their declared types too.
	return coerce(c.root, m, 0), nil
}

func coerce(n *node, v any, depth int) any {
	if depth > maxDepth {
		return v
	}
	n = deref(n)
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = coerce(n.propertyNode(k), e, depth+1)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = coerce(n.itemNode(i), e, depth+1)
		}
		return out
	case numberText:
		return coerceNumber(n, x.String())
	case float64:
		if n.declares("integer") && !n.declares("number") && x == math.Trunc(x) && math.Abs(x) < 1<<63 {
			return int64(x)
		}
		return x
	default:
		return v
	}
}

func coerceNumber(n *node, text string) any {
	wantInt := n.declares("integer") && !n.declares("number")
	wantFloat := n.declares("number")

	if !wantFloat {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return i
		}
		if wantInt {
			// Whole numbers written with a fraction or exponent, e.g. 1.0 or 1e3.
			if r, ok := new(big.Rat).SetString(text); ok && r.IsInt() && r.Num().IsInt64() {
				return r.Num().Int64()
			}
			return numberString(text)
		}
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}
	return numberString(text)
}

// deref follows $ref edges of schemas that only consist of a reference.
func deref(n *node) *node {
	for hops := 0; n != nil && n.ref != nil && n.isRefOnly() && hops < maxRefHops; hops++ {
		n = n.ref
	}
	return n
}

func (n *node) isRefOnly() bool {
	return len(n.types) == 0 && n.properties == nil && n.items == nil &&
		n.prefixItems == nil && n.additional == nil && n.patternProperties == nil
}

func (n *node) declares(t string) bool {
	return n != nil && slices.Contains(n.types, t)
}

func (n *node) propertyNode(name string) *node {
	if n == nil {
		return nil
	}
	if pn, ok := n.properties[name]; ok {
		return pn
	}
	for _, pp := range n.patternProperties {
		if pp.re.MatchString(name) {
			return pp.node
		}
	}
	if n.additional != nil && !n.additional.never {
		return n.additional
	}
	return nil
}

func (n *node) itemNode(i int) *node {
	if n == nil {
		return nil
	}
	if i < len(n.prefixItems) {
		return n.prefixItems[i]
	}
	return n.items
}

func numberString(text string) any {
	return json.Number(text)
}
