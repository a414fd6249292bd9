package openapi

import (
	"strings"

	"github.com/vitalvas/oasdocs/value"
)

// SchemasPrefix is the document-internal path of the component schemas.
const SchemasPrefix = "#/components/schemas/"

// RefTarget maps a registry identifier such as "widget" or "widget#" to
// "#/components/schemas/widget". Targets already pointing inside the
// document ("#/...") are returned unchanged.
func RefTarget(ref string) string {
	if strings.HasPrefix(ref, "#/") {
		return ref
	}
	return SchemasPrefix + schemaName(ref)
}

// Rewrite returns a normalized copy of v. It drops null fields and "$id"
// keys, collapses every node holding a string "$ref" to a bare reference
// into components, and replaces a "type" array with an equivalent "anyOf"
// list. The input is never modified.
func Rewrite(v value.Value) value.Value {
	switch t := v.(type) {
	case *value.Object:
		return rewriteObject(t)
	case value.Array:
		out := make(value.Array, len(t))
		for i, item := range t {
			out[i] = Rewrite(item)
		}
		return out
	default:
		return v
	}
}

func rewriteObject(obj *value.Object) *value.Object {
	if ref, ok := obj.GetString("$ref"); ok {
		return value.NewObject().Set("$ref", value.String(RefTarget(ref)))
	}

	out := value.NewObject()
	obj.Range(func(key string, v value.Value) bool {
		if key == "$id" || value.IsNull(v) {
			return true
		}
		out.Set(key, Rewrite(v))
		return true
	})

	if types, ok := out.GetArray("type"); ok {
		out.Delete("type")
		out.Set("anyOf", typeAlternatives(types))
	}

	return out
}

// typeAlternatives expands ["a", "b"] into [{"type":"a"}, {"type":"b"}],
// keeping the original order.
func typeAlternatives(types value.Array) value.Array {
	out := make(value.Array, 0, len(types))
	for _, t := range types {
		out = append(out, value.NewObject().Set("type", t))
	}
	return out
}
