package openapi

import (
	"sort"
	"strings"

	"github.com/vitalvas/oasdocs/value"
)

// Assemble builds an OpenAPI document from a seed document, a schema
// registry and the routes of an application.
//
// The seed is not modified; a nil seed starts from an empty document.
// Registry schemas are copied into components.schemas. Hidden routes are
// skipped, visible routes are sorted by URL, and one operation is written
// per path and method. The result is passed through Rewrite, so the same
// inputs always give the same document.
func Assemble(seed *value.Object, reg *Registry, routes []Route) *value.Object {
	doc := seed.Clone()
	if doc == nil {
		doc = value.NewObject()
	}

	components := ensureObject(doc, "components")
	schemas := ensureObject(components, "schemas")
	paths := ensureObject(doc, "paths")

	ids := reg.IDs()
	sort.Strings(ids)
	for _, id := range ids {
		schema, _ := reg.Get(id)
		schemas.Set(schemaName(id), value.Clone(schema))
	}

	visible := make([]Route, 0, len(routes))
	for _, route := range routes {
		if !route.Config.Hide {
			visible = append(visible, route)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].URL < visible[j].URL
	})

	var pathOrder []string
	operations := make(map[string]map[string]*value.Object)
	methods := make(map[string][]string)

	for _, route := range visible {
		path := NormalizePath(route.URL)

		for _, method := range routeMethods(route) {
			if route.Config.HideHead && method == "HEAD" {
				continue
			}

			ops, ok := operations[path]
			if !ok {
				ops = make(map[string]*value.Object)
				operations[path] = ops
				pathOrder = append(pathOrder, path)
			}
			if _, seen := ops[method]; !seen {
				methods[path] = append(methods[path], method)
			}

			// A later route on the same path and method replaces the earlier one.
			ops[method] = buildOperation(route, method, reg.Lookup)
		}
	}

	for _, path := range pathOrder {
		item, ok := paths.GetObject(path)
		if !ok {
			item = value.NewObject()
			paths.Set(path, item)
		}

		ordered := methods[path]
		sortMethods(ordered)
		for _, method := range ordered {
			item.Set(strings.ToLower(method), operations[path][method])
		}
	}

	return Rewrite(doc).(*value.Object)
}

// ensureObject returns the object stored under key, creating an empty one
// when the key is missing or holds something else.
func ensureObject(parent *value.Object, key string) *value.Object {
	if obj, ok := parent.GetObject(key); ok {
		return obj
	}
	obj := value.NewObject()
	parent.Set(key, obj)
	return obj
}

// routeMethods returns the upper-cased methods of a route without duplicates.
func routeMethods(route Route) []string {
	out := make([]string, 0, len(route.Methods))
	seen := make(map[string]bool, len(route.Methods))
	for _, m := range route.Methods {
		m = strings.ToUpper(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

func buildOperation(route Route, method string, resolve Resolver) *value.Object {
	op := value.NewObject()

	if a := route.Config.OpenAPI; a != nil {
		if a.Summary != "" {
			op.Set("summary", value.String(a.Summary))
		}
		if a.Description != "" {
			op.Set("description", value.String(a.Description))
		}
		if a.Tags != nil {
			op.Set("tags", value.MustFrom(a.Tags))
		}
		if a.Security != nil {
			op.Set("security", securityValue(a.Security))
		}
		if a.OperationID != "" {
			op.Set("operationId", value.String(a.OperationID))
		}
	}

	schema := route.Schema
	if schema == nil {
		return op
	}

	if params := Parameters(schema, resolve); params != nil {
		op.Set("parameters", params)
	}

	if schema.Response != nil {
		op.Set("responses", Responses(schema.Response))
	}

	if !value.IsNull(schema.Body) && allowsBody(method) {
		op.Set("requestBody", RequestBody(schema.Body, route.Config.BodyMime))
	}

	return op
}
