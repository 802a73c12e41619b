package gateerrors

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/segmentio/encoding/json"

	"github.com/erraggy/reqgate/internal/issues"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	ErrSchemaDerivation = errors.New("schema derivation error")
	ErrValidation       = errors.New("validation error")
	ErrDecode           = errors.New("decode error")
	ErrRouteTemplate    = errors.New("route template error")
	ErrConfig           = errors.New("configuration error")
)

// Issue is a single field-level rule violation carried by a ValidationError.
type Issue = issues.Issue

// describe renders "<kind><where>: <message>: <cause>", leaving out the
// parts that are empty.
func describe(kind error, where, message string, cause error) string {
	var b strings.Builder
	b.WriteString(kind.Error())
	b.WriteString(where)
	if message != "" {
		b.WriteString(": ")
		b.WriteString(message)
	}
	if cause != nil {
		b.WriteString(": ")
		b.WriteString(cause.Error())
	}
	return b.String()
}

// SchemaDerivationError reports a model descriptor that cannot produce a
// usable schema. It is a programming error and is never retried.
type SchemaDerivationError struct {
	Model   string
	Message string
	Cause   error
}

func (e *SchemaDerivationError) Error() string {
	where := ""
	if e.Model != "" {
		where = " for model " + e.Model
	}
	return describe(ErrSchemaDerivation, where, e.Message, e.Cause)
}

func (e *SchemaDerivationError) Unwrap() error        { return e.Cause }
func (e *SchemaDerivationError) Is(target error) bool { return target == ErrSchemaDerivation }

// ValidationError reports a body that violates one or more schema rules.
// It carries every issue found, ordered by field path, and the original body
// exactly as the caller supplied it.
type ValidationError struct {
	// Model is the descriptor name the body was validated against.
	Model string
	// Issues lists every violation, ordered by field path.
	Issues []Issue
	// Body is the original input ([]byte, string or decoded value), unmodified.
	Body any
	// Cause is a *DecodeError when the body was not well-formed JSON.
	Cause error
}

// Error lists the issues inline, e.g.
// "validation error for model User: 2 issues: $.id: ...; $.name: ...".
func (e *ValidationError) Error() string {
	where := ""
	if e.Model != "" {
		where = " for model " + e.Model
	}
	var summary string
	switch len(e.Issues) {
	case 0:
	case 1:
		summary = e.Issues[0].Field + ": " + e.Issues[0].Message
	default:
		parts := make([]string, len(e.Issues))
		for i, issue := range e.Issues {
			parts[i] = issue.Field + ": " + issue.Message
		}
		summary = strconv.Itoa(len(e.Issues)) + " issues: " + strings.Join(parts, "; ")
	}
	return describe(ErrValidation, where, summary, nil)
}

func (e *ValidationError) Unwrap() error        { return e.Cause }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StatusCode returns the HTTP status a gateway should answer with.
func (e *ValidationError) StatusCode() int {
	return http.StatusUnprocessableEntity
}

// MarshalJSON renders the error as {"detail": [...], "body": ...}.
// Raw byte bodies are emitted as a string rather than base64.
func (e *ValidationError) MarshalJSON() ([]byte, error) {
	detail := e.Issues
	if detail == nil {
		detail = []Issue{}
	}
	body := e.Body
	switch b := body.(type) {
	case []byte:
		body = string(b)
	case json.RawMessage:
		body = string(b)
	}
	return json.Marshal(struct {
		Detail []Issue `json:"detail"`
		Body   any     `json:"body"`
	}{detail, body})
}

// DecodeError reports a raw body that is not well-formed JSON.
type DecodeError struct {
	// Offset is the byte offset where decoding failed, or -1 if unknown.
	Offset  int64
	Message string
	Cause   error
}

func (e *DecodeError) Error() string {
	where := ""
	if e.Offset >= 0 {
		where = fmt.Sprintf(" at offset %d", e.Offset)
	}
	return describe(ErrDecode, where, e.Message, e.Cause)
}

func (e *DecodeError) Unwrap() error        { return e.Cause }
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// RouteTemplateError reports a path template that cannot be compiled.
// It is raised at route registration and must never degrade into "no match".
type RouteTemplateError struct {
	Template string
	// Position is the byte offset of the problem, or -1 if not positional.
	Position int
	Message  string
	Cause    error
}

func (e *RouteTemplateError) Error() string {
	var where string
	if e.Template != "" {
		where = fmt.Sprintf(" in %q", e.Template)
	}
	if e.Position >= 0 {
		where += fmt.Sprintf(" at position %d", e.Position)
	}
	return describe(ErrRouteTemplate, where, e.Message, e.Cause)
}

func (e *RouteTemplateError) Unwrap() error        { return e.Cause }
func (e *RouteTemplateError) Is(target error) bool { return target == ErrRouteTemplate }

// ConfigError reports an invalid option, environment value or model file.
type ConfigError struct {
	// Option names the setting, e.g. "WithCacheCapacity" or "REQGATE_CACHE_SIZE".
	Option string
	// Value is the rejected value, if any.
	Value   any
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	var where string
	if e.Option != "" {
		where = " for " + e.Option
	}
	if e.Value != nil {
		where += fmt.Sprintf(" (value: %v)", e.Value)
	}
	return describe(ErrConfig, where, e.Message, e.Cause)
}

func (e *ConfigError) Unwrap() error        { return e.Cause }
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }
