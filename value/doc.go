// Package value implements a closed, order-preserving JSON value model.
//
// Schema documents and OpenAPI documents are untyped trees. Instead of
// map[string]any with runtime type assertions, this package models them as
// a closed set of variants:
//
//	*Object  ordered key/value pairs
//	Array    ordered values
//	String   JSON string
//	Number   JSON number literal
//	Bool     JSON boolean
//	Null     JSON null
//
// A nil Value means "absent". Objects keep the insertion order of their keys,
// so encoding the same tree twice yields byte-identical output in both JSON
// and YAML.
//
// # Building values
//
//	doc := value.NewObject().
//	    Set("openapi", value.String("3.0.3")).
//	    Set("paths", value.NewObject())
//
// Go values can be converted with From:
//
//	v, err := value.From(map[string]any{"type": "string"})
//
// # Encoding
//
// Parse and Marshal handle JSON through json-iterator; ParseYAML and
// MarshalYAML handle YAML through yaml.v3 nodes. *Object implements the
// encoding/json and yaml.v3 marshaler interfaces, so value trees can be
// embedded in regular structs.
package value
