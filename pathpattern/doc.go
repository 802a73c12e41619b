// Package pathpattern compiles route path templates into anchored matchers.
//
// A template is a literal path with zero or more "{name}" placeholders, where
// name is one or more of [A-Za-z0-9_]. Each placeholder captures exactly one
// non-empty path segment; everything else is matched literally, so regular
// expression metacharacters in the template carry no special meaning:
//
//	p := pathpattern.MustCompile("/v1.0/item/{id}")
//	params, ok := p.Match("/v1.0/item/42") // map[id:42], true
//	_, ok = p.Match("/v1x0/item/42")       // false
//	_, ok = p.Match("/v1.0/item/42/extra") // false
//
// Compilation happens once, at route registration. Malformed templates fail
// with a *gateerrors.RouteTemplateError and never degrade into a pattern that
// silently matches nothing.
//
// A [Pattern] is immutable after compilation and safe for concurrent use.
// A [Set] holds several patterns and picks the most specific one for a path:
// literal templates win over parameterized ones, longer templates over
// shorter, with an alphabetical tie-break.
package pathpattern
