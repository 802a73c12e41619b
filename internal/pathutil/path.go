package pathutil

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Root is the rendered form of the empty path.
const Root = "$"

// Segment is one step of a field path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// KeySegment returns an object key segment.
func KeySegment(key string) Segment {
	return Segment{Key: key}
}

// IndexSegment returns an array index segment.
func IndexSegment(i int) Segment {
	return Segment{Index: i, IsIndex: true}
}

// String renders the segment the way it appears inside a full path.
func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	if isIdentifier(s.Key) {
		return "." + s.Key
	}
	return "['" + strings.ReplaceAll(strings.ReplaceAll(s.Key, `\`, `\\`), "'", `\'`) + "']"
}

// Path is an immutable field path. The zero value is the document root.
type Path []Segment

// String renders the path, e.g. "$.user.tags[0]".
func (p Path) String() string {
	if len(p) == 0 {
		return Root
	}
	var b strings.Builder
	b.WriteString(Root)
	for _, seg := range p {
		b.WriteString(seg.String())
	}
	return b.String()
}

// Child returns a new path extended by seg. The receiver is not modified.
func (p Path) Child(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// Compare orders two paths structurally. It returns a negative number when
// a sorts before b, zero when they are equal, and a positive number otherwise.
// An index sorts before a key at the same depth.
func Compare(a, b Path) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareSegment(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func compareSegment(a, b Segment) int {
	switch {
	case a.IsIndex && b.IsIndex:
		return cmp.Compare(a.Index, b.Index)
	case a.IsIndex:
		return -1
	case b.IsIndex:
		return 1
	default:
		return strings.Compare(a.Key, b.Key)
	}
}

// Parse converts a rendered path back into its segments. It accepts exactly
// the forms produced by [Path.String].
func Parse(s string) (Path, error) {
	if !strings.HasPrefix(s, Root) {
		return nil, fmt.Errorf("path %q must start with %q", s, Root)
	}
	var p Path
	i := len(Root)
	for i < len(s) {
		switch s[i] {
		case '.':
			j := i + 1
			for j < len(s) && s[j] != '.' && s[j] != '[' {
				j++
			}
			key := s[i+1 : j]
			if !isIdentifier(key) {
				return nil, fmt.Errorf("invalid key %q at offset %d in path %q", key, i, s)
			}
			p = append(p, KeySegment(key))
			i = j
		case '[':
			if i+1 < len(s) && s[i+1] == '\'' {
				key, next, err := parseQuoted(s, i+2)
				if err != nil {
					return nil, err
				}
				p = append(p, KeySegment(key))
				i = next
				continue
			}
			end := strings.IndexByte(s[i:], ']')
			if end == -1 {
				return nil, fmt.Errorf("unclosed index at offset %d in path %q", i, s)
			}
			n, err := strconv.Atoi(s[i+1 : i+end])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid index %q at offset %d in path %q", s[i+1:i+end], i, s)
			}
			p = append(p, IndexSegment(n))
			i += end + 1
		default:
			return nil, fmt.Errorf("unexpected %q at offset %d in path %q", s[i], i, s)
		}
	}
	return p, nil
}

// parseQuoted reads a quoted key starting at offset i (just past the opening
// quote) and returns the key and the offset following the closing "']".
func parseQuoted(s string, i int) (string, int, error) {
	var b strings.Builder
	for i < len(s) {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			b.WriteByte(s[i+1])
			i += 2
		case c == '\'':
			if i+1 >= len(s) || s[i+1] != ']' {
				return "", 0, fmt.Errorf("expected \"]\" after quoted key at offset %d in path %q", i, s)
			}
			return b.String(), i + 2, nil
		default:
			b.WriteByte(c)
			i++
		}
	}
	return "", 0, fmt.Errorf("unterminated quoted key in path %q", s)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
