// Package reqgate validates inbound request data against declared models and
// matches URL paths against route templates.
//
// # Overview
//
// The library consists of four primary packages:
//
//   - model: describe data models as Go structs or as JSON Schema documents
//   - validation: compile a model's schema once and collect every violation
//     of a decoded value, with a bounded LRU cache of compiled validators
//   - materialize: decode a raw body, validate it, and build either the typed
//     model value or its canonical mapping
//   - pathpattern: compile route templates such as /items/{id} and match
//     concrete paths, extracting the placeholder values
//
// Failures are reported through the typed errors of package gateerrors. A
// rejected body is a *gateerrors.ValidationError that carries every issue,
// ordered by field path, together with the body exactly as it was received.
//
// # Installation
//
//	go get github.com/erraggy/reqgate
//
// # Quick Start
//
// Materialize a typed value:
//
//	type Item struct {
//		ID   int    `json:"id"`
//		Name string `json:"name"`
//	}
//
//	m, err := materialize.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	item, err := materialize.Object[Item](m, body)
//	var verr *gateerrors.ValidationError
//	if errors.As(err, &verr) {
//		for _, issue := range verr.Issues {
//			fmt.Printf("%s: %s\n", issue.Field, issue.Message)
//		}
//	}
//
// Match a route:
//
//	p := pathpattern.MustCompile("/item/{id}")
//	params, ok := p.Match("/item/42") // map[id:42], true
//
// # Command Line
//
// The reqgate command validates bodies against model description files,
// matches paths, prints compiled schemas, and serves the same operations as
// MCP tools:
//
//	reqgate validate --models models.yaml --model Item body.json
//	reqgate match /item/42 '/item/{id}'
//	reqgate mcp
//
// Process settings are read from REQGATE_* environment variables; see
// internal/config.
package reqgate
