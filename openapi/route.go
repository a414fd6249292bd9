package openapi

import (
	"github.com/vitalvas/oasdocs/value"
)

// Route is one exposed endpoint as registered on the host router.
type Route struct {
	// URL is the path template. Placeholders may be written as ":name",
	// "{name}" or "{name:pattern}".
	URL string

	// Methods lists the HTTP methods served by the route.
	Methods []string

	// Schema holds the route's validation schemas. Nil means none declared.
	Schema *RouteSchema

	Config RouteConfig
}

// RouteSchema holds the validation schema sections of a route. Each section
// is a JSON Schema document or a {"$ref": "..."} reference into the registry.
type RouteSchema struct {
	Headers     value.Value
	Params      value.Value
	Querystring value.Value
	Body        value.Value

	// Response maps status codes to response schemas. A response entry may
	// carry "$raw" (an opaque content type) or "$empty" (no body) markers.
	Response *value.Object
}

// RouteConfig carries the per-route documentation settings.
type RouteConfig struct {
	// Hide excludes the route from the document.
	Hide bool `json:"hide,omitempty" yaml:"hide,omitempty"`

	// HideHead excludes only the HEAD variant of the route.
	HideHead bool `json:"hideHead,omitempty" yaml:"hideHead,omitempty"`

	// BodyMime overrides the request body media type (default application/json).
	BodyMime string `json:"bodyMime,omitempty" yaml:"bodyMime,omitempty"`

	OpenAPI *Annotations `json:"openapi,omitempty" yaml:"openapi,omitempty"`
}

// Annotations are copied verbatim onto every operation of the route.
// Empty strings are omitted. A nil Tags or Security is omitted, while an
// empty non-nil Security is emitted as [] to mark the operation public.
type Annotations struct {
	Summary     string                `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string              `json:"tags,omitempty" yaml:"tags,omitempty"`
	Security    []SecurityRequirement `json:"security,omitempty" yaml:"security,omitempty"`
	OperationID string                `json:"operationId,omitempty" yaml:"operationId,omitempty"`
}

// RouteSchemaFromObject maps a host schema object with "headers", "params",
// "querystring", "body" and "response" sections onto a RouteSchema.
// A response section that is not an object is ignored.
func RouteSchemaFromObject(obj *value.Object) *RouteSchema {
	if obj == nil {
		return nil
	}

	s := &RouteSchema{}
	s.Headers, _ = obj.Get("headers")
	s.Params, _ = obj.Get("params")
	s.Querystring, _ = obj.Get("querystring")
	s.Body, _ = obj.Get("body")
	if resp, ok := obj.GetObject("response"); ok {
		s.Response = resp
	}

	return s
}
