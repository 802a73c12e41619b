package materialize

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/segmentio/encoding/json"
	"golang.org/x/text/unicode/norm"

	"github.com/erraggy/reqgate/gateerrors"
)

// Decode parses a JSON document the way every Materializer does: the input
// must be valid UTF-8 holding exactly one JSON value, numbers are kept as
// json.Number, and object key order is irrelevant. Failures are
// *gateerrors.DecodeError.
func Decode(data []byte) (any, error) {
	if !utf8.Valid(data) {
		return nil, &gateerrors.DecodeError{
			Offset:  int64(invalidUTF8Offset(data)),
			Message: "body is not valid UTF-8",
		}
	}

	if err := checkNesting(data); err != nil {
		return nil, err
	}

	var v any
	rest, err := json.Parse(data, &v, json.UseNumber)
	if err != nil {
		offset := int64(-1)
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			offset = syntaxErr.Offset
		}
		return nil, &gateerrors.DecodeError{
			Offset:  offset,
			Message: "malformed JSON",
			Cause:   err,
		}
	}
	if trailing := bytes.TrimLeft(rest, " \t\r\n"); len(trailing) > 0 {
		return nil, &gateerrors.DecodeError{
			Offset:  int64(len(data) - len(trailing)),
			Message: "unexpected data after top-level value",
		}
	}
	return v, nil
}

// maxNesting bounds how deeply arrays and objects may nest in a raw body.
// The parser recurses per level, so deeper input would exhaust the stack.
const maxNesting = 10000

// checkNesting scans data once, skipping string contents, and rejects
// documents nested deeper than maxNesting.
func checkNesting(data []byte) error {
	depth := 0
	inString := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
			if depth > maxNesting {
				return &gateerrors.DecodeError{
					Offset:  int64(i),
					Message: fmt.Sprintf("exceeded max nesting depth of %d", maxNesting),
				}
			}
		case ']', '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return nil
}

func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

// normalizeNFC returns a copy of v with every string and object key in NFC.
func normalizeNFC(v any) any {
	switch x := v.(type) {
	case string:
		return norm.NFC.String(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[norm.NFC.String(k)] = normalizeNFC(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalizeNFC(e)
		}
		return out
	default:
		return v
	}
}
