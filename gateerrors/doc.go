// Package gateerrors provides structured error types for reqgate.
//
// Import path: github.com/erraggy/reqgate/gateerrors
//
// This package enables programmatic error handling via [errors.Is] and [errors.As],
// allowing callers to tell input problems (answer with a 4xx) apart from
// programming errors (fix the model or route definition).
//
// # Error Types
//
//   - [SchemaDerivationError]: a model descriptor cannot produce a usable schema
//   - [ValidationError]: a request body violates one or more schema rules
//   - [DecodeError]: a raw body is not well-formed JSON
//   - [RouteTemplateError]: a path template cannot be compiled
//   - [ConfigError]: invalid options, environment values or model files
//
// # Sentinel Errors
//
// Each error type has a corresponding sentinel error for use with errors.Is():
//
//   - [ErrSchemaDerivation]: Matches any [SchemaDerivationError]
//   - [ErrValidation]: Matches any [ValidationError]
//   - [ErrDecode]: Matches any [DecodeError], including one wrapped by a [ValidationError]
//   - [ErrRouteTemplate]: Matches any [RouteTemplateError]
//   - [ErrConfig]: Matches any [ConfigError]
//
// # Usage Examples
//
// A malformed body and a schema violation arrive through the same channel:
//
//	out, err := m.Mapping(body, desc)
//	var verr *gateerrors.ValidationError
//	if errors.As(err, &verr) {
//	    w.WriteHeader(verr.StatusCode())
//	    _ = json.NewEncoder(w).Encode(verr)
//	    return
//	}
//
// Distinguish the malformed-body case when it matters:
//
//	if errors.Is(err, gateerrors.ErrDecode) {
//	    // body was not JSON at all
//	}
//
// Route templates fail at registration, never at match time:
//
//	p, err := pathpattern.Compile("/users/{id}/posts/{id}")
//	if errors.Is(err, gateerrors.ErrRouteTemplate) {
//	    log.Fatal(err)
//	}
package gateerrors
