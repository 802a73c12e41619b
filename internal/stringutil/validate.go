// Package stringutil provides string format checks used by schema validation.
package stringutil

import (
	"net/url"
	"regexp"
	"time"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	uuidRegex  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// IsValidEmail checks if s is a valid email address.
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// IsValidUUID checks if s is a hyphenated UUID in any version.
func IsValidUUID(s string) bool {
	return uuidRegex.MatchString(s)
}

// IsValidDate checks if s is a full-date (YYYY-MM-DD) naming a real day.
func IsValidDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

// IsValidDateTime checks if s is an RFC 3339 date-time.
func IsValidDateTime(s string) bool {
	_, err := time.Parse(time.RFC3339Nano, s)
	return err == nil
}

// IsValidURI checks if s is an absolute URI.
func IsValidURI(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}

// CheckFormat reports whether s conforms to the named format and whether the
// format is known at all. Unknown formats are annotations and always pass.
func CheckFormat(format, s string) (valid, known bool) {
	switch format {
	case "email":
		return IsValidEmail(s), true
	case "uuid":
		return IsValidUUID(s), true
	case "date":
		return IsValidDate(s), true
	case "date-time":
		return IsValidDateTime(s), true
	case "uri":
		return IsValidURI(s), true
	default:
		return true, false
	}
}
