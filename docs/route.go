package docs

import (
	"slices"
	"strconv"

	"github.com/vitalvas/oasdocs/openapi"
	"github.com/vitalvas/oasdocs/value"
)

// RouteBuilder provides a fluent API for attaching schemas and
// documentation settings to a route.
//
// Schemas are value trees; a reference to a registered schema is written as
// {"$ref": "<id>"}. The *Type variants derive the schema from a Go value
// and register named struct types in the instance registry. They fail with
// ErrAlreadyBuilt once the document is built; see Err.
type RouteBuilder struct {
	reflect   func(v any) (value.Value, error)
	err       error
	schema    openapi.RouteSchema
	hasSchema bool
	config    openapi.RouteConfig
	notes     openapi.Annotations
	hasNotes  bool
}

func newRouteBuilder(reflect func(v any) (value.Value, error)) *RouteBuilder {
	return &RouteBuilder{reflect: reflect}
}

// Err returns the first error of a BodyType or ResponseType call.
func (b *RouteBuilder) Err() error {
	return b.err
}

func (b *RouteBuilder) typeSchema(v any) (value.Value, bool) {
	schema, err := b.reflect(v)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return nil, false
	}
	return schema, true
}

// Ref returns a reference to a registered schema.
func Ref(id string) *value.Object {
	return value.NewObject().Set("$ref", value.String(id))
}

// Headers sets the request header schema.
func (b *RouteBuilder) Headers(schema value.Value) *RouteBuilder {
	b.schema.Headers = schema
	b.hasSchema = true
	return b
}

// Params sets the path parameter schema.
func (b *RouteBuilder) Params(schema value.Value) *RouteBuilder {
	b.schema.Params = schema
	b.hasSchema = true
	return b
}

// Querystring sets the query parameter schema.
func (b *RouteBuilder) Querystring(schema value.Value) *RouteBuilder {
	b.schema.Querystring = schema
	b.hasSchema = true
	return b
}

// Body sets the request body schema. It is documented for POST, PUT and
// PATCH only.
func (b *RouteBuilder) Body(schema value.Value) *RouteBuilder {
	b.schema.Body = schema
	b.hasSchema = true
	return b
}

// BodyType sets the request body schema from the type of v.
func (b *RouteBuilder) BodyType(v any) *RouteBuilder {
	if schema, ok := b.typeSchema(v); ok {
		b.Body(schema)
	}
	return b
}

// BodyMime overrides the request body media type.
func (b *RouteBuilder) BodyMime(mime string) *RouteBuilder {
	b.config.BodyMime = mime
	return b
}

// Response sets the application/json response schema for a status code.
func (b *RouteBuilder) Response(statusCode int, schema value.Value) *RouteBuilder {
	return b.setResponse(strconv.Itoa(statusCode), value.Clone(schema))
}

// ResponseType sets the response schema for a status code from the type of v.
func (b *RouteBuilder) ResponseType(statusCode int, v any) *RouteBuilder {
	if schema, ok := b.typeSchema(v); ok {
		b.setResponse(strconv.Itoa(statusCode), schema)
	}
	return b
}

// RawResponse declares a response body of the given media type without a
// schema.
func (b *RouteBuilder) RawResponse(statusCode int, contentType string) *RouteBuilder {
	entry := value.NewObject().Set(openapi.RawMarker, value.String(contentType))
	return b.setResponse(strconv.Itoa(statusCode), entry)
}

// EmptyResponse declares a response without a body.
func (b *RouteBuilder) EmptyResponse(statusCode int) *RouteBuilder {
	entry := value.NewObject().Set(openapi.EmptyMarker, value.Bool(true))
	return b.setResponse(strconv.Itoa(statusCode), entry)
}

// DefaultResponse sets the catch-all response schema.
func (b *RouteBuilder) DefaultResponse(schema value.Value) *RouteBuilder {
	return b.setResponse("default", value.Clone(schema))
}

// ResponseDescription sets the description of a declared response. It has
// no effect for a status code without a response, or whose schema is not an
// object.
func (b *RouteBuilder) ResponseDescription(statusCode int, desc string) *RouteBuilder {
	entry, ok := b.schema.Response.GetObject(strconv.Itoa(statusCode))
	if ok {
		entry.Set("description", value.String(desc))
	}
	return b
}

func (b *RouteBuilder) setResponse(key string, entry value.Value) *RouteBuilder {
	if b.schema.Response == nil {
		b.schema.Response = value.NewObject()
	}
	b.schema.Response.Set(key, entry)
	b.hasSchema = true
	return b
}

// Summary sets the operation summary.
func (b *RouteBuilder) Summary(s string) *RouteBuilder {
	b.notes.Summary = s
	b.hasNotes = true
	return b
}

// Description sets the operation description.
func (b *RouteBuilder) Description(d string) *RouteBuilder {
	b.notes.Description = d
	b.hasNotes = true
	return b
}

// Tags adds tags to the operation.
func (b *RouteBuilder) Tags(tags ...string) *RouteBuilder {
	b.notes.Tags = append(b.notes.Tags, tags...)
	b.hasNotes = true
	return b
}

// Security sets the operation security requirements, replacing any group
// default. Call with no arguments to mark the operation public.
func (b *RouteBuilder) Security(reqs ...openapi.SecurityRequirement) *RouteBuilder {
	if reqs == nil {
		reqs = []openapi.SecurityRequirement{}
	}
	b.notes.Security = reqs
	b.hasNotes = true
	return b
}

// OperationID sets the operation ID.
func (b *RouteBuilder) OperationID(id string) *RouteBuilder {
	b.notes.OperationID = id
	b.hasNotes = true
	return b
}

// Hide excludes the route from the document.
func (b *RouteBuilder) Hide() *RouteBuilder {
	b.config.Hide = true
	return b
}

// HideHead excludes the HEAD operation of the route from the document.
func (b *RouteBuilder) HideHead() *RouteBuilder {
	b.config.HideHead = true
	return b
}

// record returns the route record for url and methods. A nil builder
// gives a record without schema or settings.
func (b *RouteBuilder) record(url string, methods []string) openapi.Route {
	route := openapi.Route{URL: url, Methods: slices.Clone(methods)}
	if b == nil {
		return route
	}

	if b.hasSchema {
		schema := b.schema
		if schema.Response != nil {
			schema.Response = schema.Response.Clone()
		}
		route.Schema = &schema
	}

	route.Config = b.config
	if b.hasNotes {
		notes := b.notes
		notes.Tags = slices.Clone(b.notes.Tags)
		route.Config.OpenAPI = &notes
	}

	return route
}
