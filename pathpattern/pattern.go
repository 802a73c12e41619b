package pathpattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/erraggy/reqgate/gateerrors"
)

// Pattern is a compiled path template.
type Pattern struct {
	// template is the original path template (e.g., "/item/{id}")
	template string

	// regex is the anchored pattern used for matching
	regex *regexp.Regexp

	// paramNames are the placeholder names in order of appearance
	paramNames []string

	// specificity is used for ordering within a Set (higher = more specific)
	specificity int
}

// Compile converts a path template into a Pattern.
//
// Returns a *gateerrors.RouteTemplateError if the template is empty, has
// unbalanced or nested braces, an empty or invalid placeholder name, or
// repeats a placeholder name.
func Compile(template string) (*Pattern, error) {
	if template == "" {
		return nil, templateError(template, -1, "path template cannot be empty")
	}

	var regexBuf strings.Builder
	regexBuf.WriteString("^")

	paramNames := []string{}
	specificity := 0
	literalStart := 0

	flushLiteral := func(end int) {
		if end > literalStart {
			lit := template[literalStart:end]
			regexBuf.WriteString(regexp.QuoteMeta(lit))
			// Non-parameter characters increase specificity
			specificity += len(lit) - strings.Count(lit, "/")
		}
	}

	i := 0
	for i < len(template) {
		switch template[i] {
		case '}':
			return nil, templateError(template, i, "unmatched closing brace")
		case '{':
			flushLiteral(i)

			end := strings.IndexAny(template[i+1:], "{}")
			if end == -1 {
				return nil, templateError(template, i, "unclosed path parameter")
			}
			end += i + 1
			if template[end] == '{' {
				return nil, templateError(template, end, "nested path parameter")
			}

			name := template[i+1 : end]
			if name == "" {
				return nil, templateError(template, i, "empty path parameter")
			}
			if !isIdentifier(name) {
				return nil, templateError(template, i, fmt.Sprintf("invalid path parameter name %q", name))
			}
			for _, existing := range paramNames {
				if existing == name {
					return nil, templateError(template, i, fmt.Sprintf("duplicate path parameter %q", name))
				}
			}
			paramNames = append(paramNames, name)

			// One or more non-slash characters: a single path segment
			regexBuf.WriteString("(?P<")
			regexBuf.WriteString(name)
			regexBuf.WriteString(">[^/]+)")

			// Parameters reduce specificity (exact matches are more specific)
			specificity--
			i = end + 1
			literalStart = i
		default:
			i++
		}
	}
	flushLiteral(len(template))

	regexBuf.WriteString("$")

	regex, err := regexp.Compile(regexBuf.String())
	if err != nil {
		return nil, &gateerrors.RouteTemplateError{
			Template: template,
			Position: -1,
			Message:  "failed to compile path pattern",
			Cause:    err,
		}
	}

	return &Pattern{
		template:    template,
		regex:       regex,
		paramNames:  paramNames,
		specificity: specificity,
	}, nil
}

// MustCompile is like Compile but panics if the template is malformed.
// It simplifies initialization of package-level route tables.
func MustCompile(template string) *Pattern {
	p, err := Compile(template)
	if err != nil {
		panic(err)
	}
	return p
}

// Match checks whether path matches the whole template and extracts the
// placeholder values. It returns nil and false when the path does not match.
// A template without placeholders yields an empty, non-nil map on a match.
func (p *Pattern) Match(path string) (map[string]string, bool) {
	matches := p.regex.FindStringSubmatch(path)
	if matches == nil {
		return nil, false
	}

	// First match is the full string, subsequent matches are capture groups
	if len(matches) != len(p.paramNames)+1 {
		return nil, false
	}

	params := make(map[string]string, len(p.paramNames))
	for i, name := range p.paramNames {
		params[name] = matches[i+1]
	}
	return params, true
}

// Template returns the original path template.
func (p *Pattern) Template() string {
	return p.template
}

// ParamNames returns a copy of the placeholder names in order of appearance.
func (p *Pattern) ParamNames() []string {
	names := make([]string, len(p.paramNames))
	copy(names, p.paramNames)
	return names
}

// String returns the source of the anchored regular expression.
func (p *Pattern) String() string {
	return p.regex.String()
}

func isIdentifier(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return s != ""
}

func templateError(template string, pos int, msg string) error {
	return &gateerrors.RouteTemplateError{
		Template: template,
		Position: pos,
		Message:  msg,
	}
}
