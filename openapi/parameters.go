package openapi

import (
	"github.com/vitalvas/oasdocs/value"
)

// Parameter locations.
const (
	InHeader = "header"
	InPath   = "path"
	InQuery  = "query"
)

// Parameters builds the operation "parameters" list from the header, path
// and query sections of a route schema, in that order. A section written as
// {"$ref": "..."} is resolved once through resolve. Sections that are not
// objects contribute nothing. The result is nil when no parameter applies.
func Parameters(schema *RouteSchema, resolve Resolver) value.Array {
	if schema == nil {
		return nil
	}

	sections := []struct {
		in     string
		schema value.Value
	}{
		{InHeader, schema.Headers},
		{InPath, schema.Params},
		{InQuery, schema.Querystring},
	}

	var params value.Array
	for _, section := range sections {
		obj, ok := resolveSection(section.schema, resolve)
		if !ok {
			continue
		}
		params = append(params, sectionParameters(obj, section.in)...)
	}

	if len(params) == 0 {
		return nil
	}
	return params
}

func resolveSection(v value.Value, resolve Resolver) (*value.Object, bool) {
	obj, ok := v.(*value.Object)
	if !ok || obj == nil {
		return nil, false
	}

	ref, isRef := obj.GetString("$ref")
	if !isRef {
		return obj, true
	}
	if resolve == nil {
		return nil, false
	}

	target, found := resolve(ref)
	if !found {
		return nil, false
	}
	obj, ok = target.(*value.Object)
	return obj, ok && obj != nil
}

func sectionParameters(section *value.Object, in string) value.Array {
	props, ok := section.GetObject("properties")
	if !ok {
		return nil
	}

	required := map[string]bool{}
	if list, ok := section.GetArray("required"); ok {
		for _, item := range list {
			if name, ok := item.(value.String); ok {
				required[string(name)] = true
			}
		}
	}

	var out value.Array
	props.Range(func(name string, prop value.Value) bool {
		param := value.NewObject().
			Set("name", value.String(name)).
			Set("in", value.String(in))

		var typ value.Value = value.String("string")
		if propObj, ok := prop.(*value.Object); ok {
			if desc, ok := propObj.Get("description"); ok {
				param.Set("description", value.Clone(desc))
			}
			if t, ok := propObj.Get("type"); ok && !value.IsNull(t) {
				typ = value.Clone(t)
			}
		}

		param.Set("schema", value.NewObject().Set("type", typ))
		param.Set("required", value.Bool(required[name]))

		out = append(out, param)
		return true
	})

	return out
}
