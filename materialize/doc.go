// Package materialize turns request bodies into validated model values.
//
// A [Materializer] decodes a raw body, fetches the compiled validator for the
// model from its [validation.Cache], collects every violation, and on
// success builds the model value. Two output shapes share that path:
//
//   - [Materializer.Mapping] returns the canonical mapping of the built
//     instance: JSON field names to coerced Go values, with defaults applied.
//     It is derived from the instance, not copied from the input.
//   - [Materializer.Object] (and the generic [Object]) returns the typed
//     instance itself.
//
// Raw bodies ([]byte, json.RawMessage or string) are decoded by a single
// decoder for both shapes: UTF-8 only, numbers kept exact as json.Number,
// trailing data rejected. Already decoded values are validated as they are.
//
// Every rejection, including malformed JSON, is a
// *gateerrors.ValidationError carrying the ordered issue list and the body
// exactly as it was passed in:
//
//	m, err := materialize.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	user, err := materialize.Object[User](m, body)
//	var verr *gateerrors.ValidationError
//	if errors.As(err, &verr) {
//		// reply verr.StatusCode() with verr as JSON
//	}
//
// A Materializer holds no per-request state and is safe for concurrent use.
package materialize
