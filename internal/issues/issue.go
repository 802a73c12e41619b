// Package issues provides the field-level issue type reported by validation.
package issues

import (
	"fmt"
	"slices"

	"github.com/erraggy/reqgate/internal/pathutil"
)

// Issue represents a single rule violation found while validating a document.
type Issue struct {
	// Field is the canonical path to the offending value (e.g., "$.user.id")
	Field string `json:"field" yaml:"field"`
	// Message is a human-readable description of the violation
	Message string `json:"message" yaml:"message"`
	// Validator is the name of the violated rule (e.g., "required", "type", "maxLength")
	Validator string `json:"validator" yaml:"validator"`
	// Location is the structured form of Field, used for ordering. When nil,
	// Field is parsed on demand.
	Location pathutil.Path `json:"-" yaml:"-"`
}

// New creates an issue at the given location.
func New(loc pathutil.Path, validator, message string) Issue {
	return Issue{
		Field:     loc.String(),
		Message:   message,
		Validator: validator,
		Location:  loc,
	}
}

// Newf creates an issue with a formatted message.
func Newf(loc pathutil.Path, validator, format string, args ...any) Issue {
	return New(loc, validator, fmt.Sprintf(format, args...))
}

// String returns a formatted string representation of the issue.
func (i Issue) String() string {
	return fmt.Sprintf("✗ %s [%s]: %s", i.Field, i.Validator, i.Message)
}

// path returns the structured location, parsing Field when Location is unset.
// An unparseable Field is treated as a single opaque key so ordering stays total.
func (i Issue) path() pathutil.Path {
	if i.Location != nil || i.Field == pathutil.Root {
		return i.Location
	}
	p, err := pathutil.Parse(i.Field)
	if err != nil {
		return pathutil.Path{pathutil.KeySegment(i.Field)}
	}
	return p
}

// Compare orders two issues by field path only. Messages and rule names
// never affect the order.
func Compare(a, b Issue) int {
	return pathutil.Compare(a.path(), b.path())
}

// Sort orders issues by field path, ascending. Issues at the same path keep
// their relative order.
func Sort(list []Issue) {
	slices.SortStableFunc(list, Compare)
}

// IsSorted reports whether list is ordered by field path.
func IsSorted(list []Issue) bool {
	return slices.IsSortedFunc(list, Compare)
}
