package openapi

import (
	"github.com/vitalvas/oasdocs/value"
)

// DefaultMime is the media type used when a route does not set one.
const DefaultMime = "application/json"

// Response entry markers.
const (
	RawMarker   = "$raw"
	EmptyMarker = "$empty"
)

// RequestBody wraps a body schema into a request body object. The schema's
// "description" moves up to the request body; the rest becomes the schema
// of the given media type, or of application/json when mime is empty.
func RequestBody(body value.Value, mime string) *value.Object {
	if mime == "" {
		mime = DefaultMime
	}

	out := value.NewObject()
	schema := value.Clone(body)

	if obj, ok := schema.(*value.Object); ok && obj != nil {
		if desc, ok := obj.Get("description"); ok {
			out.Set("description", desc)
			obj.Delete("description")
		}
	}

	out.Set("content", value.NewObject().
		Set(mime, value.NewObject().Set("schema", schema)))

	return out
}

// Responses builds the operation "responses" map keyed by status code.
//
// An entry with a non-empty "$raw" string declares an undescribed body of
// that media type. An entry with a truthy "$empty" declares no body at all.
// Any other entry becomes the application/json schema. The description is
// always lifted from the entry when present.
func Responses(byCode *value.Object) *value.Object {
	out := value.NewObject()

	byCode.Range(func(code string, entry value.Value) bool {
		out.Set(code, responseObject(entry))
		return true
	})

	return out
}

func responseObject(entry value.Value) *value.Object {
	resp := value.NewObject()

	obj, ok := entry.(*value.Object)
	if !ok || obj == nil {
		return resp.Set("content", jsonContent(value.Clone(entry)))
	}

	if desc, ok := obj.Get("description"); ok {
		resp.Set("description", value.Clone(desc))
	}

	if raw, ok := obj.GetString(RawMarker); ok && raw != "" {
		return resp.Set("content", value.NewObject().Set(raw, value.NewObject()))
	}

	if empty, ok := obj.Get(EmptyMarker); ok && value.Truthy(empty) {
		return resp
	}

	schema := obj.Clone().Delete(RawMarker).Delete(EmptyMarker)
	return resp.Set("content", jsonContent(schema))
}

func jsonContent(schema value.Value) *value.Object {
	return value.NewObject().
		Set(DefaultMime, value.NewObject().Set("schema", schema))
}
