package pathpattern

import (
	"slices"
	"strings"
)

// Set is a collection of patterns searched in order of specificity.
type Set struct {
	// patterns is sorted by specificity
	patterns []*Pattern
}

// NewSet compiles every template and orders the result so that more
// specific templates are tried first. The first malformed template aborts
// construction with its *gateerrors.RouteTemplateError.
func NewSet(templates ...string) (*Set, error) {
	patterns := make([]*Pattern, 0, len(templates))
	for _, template := range templates {
		p, err := Compile(template)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return newSet(patterns), nil
}

// NewSetFromPatterns builds a Set from already compiled patterns.
func NewSetFromPatterns(patterns ...*Pattern) *Set {
	return newSet(slices.Clone(patterns))
}

func newSet(patterns []*Pattern) *Set {
	// Sort by specificity (highest first), then by template length (longest first),
	// then alphabetically for stability
	slices.SortStableFunc(patterns, func(a, b *Pattern) int {
		if a.specificity != b.specificity {
			return b.specificity - a.specificity
		}
		if len(a.template) != len(b.template) {
			return len(b.template) - len(a.template)
		}
		return strings.Compare(a.template, b.template)
	})
	return &Set{patterns: patterns}
}

// Match finds the best matching template for path.
// Returns the matched template, extracted parameters, and whether a match was found.
func (s *Set) Match(path string) (template string, params map[string]string, ok bool) {
	for _, p := range s.patterns {
		if params, matched := p.Match(path); matched {
			return p.template, params, true
		}
	}
	return "", nil, false
}

// Templates returns all templates in match order.
func (s *Set) Templates() []string {
	templates := make([]string, len(s.patterns))
	for i, p := range s.patterns {
		templates[i] = p.template
	}
	return templates
}

// Len returns the number of patterns in the set.
func (s *Set) Len() int {
	return len(s.patterns)
}
