// Package openapi assembles OpenAPI 3 documents from route records and a
// registry of JSON Schemas.
//
// The package works on value trees (see package value) rather than typed
// document structs: routes carry arbitrary JSON Schema sections, and the
// seed document may hold any top-level field. Every function returns new
// trees and leaves its inputs untouched.
//
// See: https://spec.openapis.org/oas/v3.0.3
//
// # Assembling a Document
//
// Assemble takes a seed document, a schema registry and the routes of an
// application:
//
//	reg := openapi.NewRegistry()
//	_ = reg.Add(value.MustObject(map[string]any{
//	    "$id":        "item#",
//	    "type":       "object",
//	    "properties": map[string]any{"id": map[string]any{"type": "string"}},
//	}))
//
//	seed := openapi.NewSeed(openapi.Info{Title: "Items", Version: "1.0.0"}).Document()
//
//	doc := openapi.Assemble(seed, reg, []openapi.Route{{
//	    URL:     "/items/:id",
//	    Methods: []string{"GET", "HEAD"},
//	    Schema: &openapi.RouteSchema{
//	        Params:   value.MustObject(map[string]any{...}),
//	        Response: value.MustObject(map[string]any{"200": map[string]any{"$ref": "item#"}}),
//	    },
//	}})
//
// The registry becomes components.schemas, keyed by identifier without "#".
// Routes are sorted by URL and each visible method becomes one operation
// under the normalized path ("/items/{id}"). Given the same inputs the
// output is byte-identical.
//
// # Route Sections
//
// A RouteSchema has the sections of a typical request validator:
//
//	headers, params, querystring   object schemas, one parameter per property
//	body                           request body (POST, PUT and PATCH only)
//	response                       schemas keyed by status code
//
// A parameter section may be a {"$ref": "id"} reference into the registry.
// Response entries understand two markers:
//
//	{"$raw": "text/csv"}   a body of that media type, without schema
//	{"$empty": true}       no body at all
//
// RouteConfig hides a route or only its HEAD variant, overrides the request
// body media type and carries Annotations (summary, description, tags,
// security, operationId) copied onto each operation. An empty non-nil
// Security marks an operation as public.
//
// # Rewriting
//
// Rewrite is applied to the whole document. It collapses any node holding a
// "$ref" string to {"$ref": "#/components/schemas/<name>"}, removes "$id"
// keys and null fields, and turns a "type" list into "anyOf" alternatives,
// which OpenAPI 3.0 requires.
//
// # Schemas From Go Types
//
// Reflector derives schemas from Go values. Named structs are registered
// once and referenced; json tags name and skip fields, and the openapi tag
// adds validation keywords:
//
//	type CreateItem struct {
//	    Name  string   `json:"name" openapi:"description=Item name,minLength=1"`
//	    Price *float64 `json:"price,omitempty" openapi:"minimum=0"`
//	    Kind  string   `json:"kind" openapi:"enum=book|film"`
//	}
//
//	r := openapi.NewReflector(reg)
//	body := r.Schema(CreateItem{}) // {"$ref": "CreateItem#"}
//
// Pointer fields become nullable through a ["T", "null"] type list.
// Types implementing Exampler supply the schema example.
package openapi
