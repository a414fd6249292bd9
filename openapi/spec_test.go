package openapi

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/oasdocs/value"
)

func pingRegistry(t *testing.T) *Registry {
	t.Helper()

	reg := NewRegistry()
	require.NoError(t, reg.Add(parseObject(t,
		`{"$id":"response#","type":"object","properties":{"ok":{"type":"boolean"}},"required":["ok"]}`)))
	return reg
}

func TestAssemble(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		doc := Assemble(nil, nil, nil)
		assert.Equal(t, `{"components":{"schemas":{}},"paths":{}}`, toJSON(t, doc))
	})

	t.Run("response reference", func(t *testing.T) {
		routes := []Route{{
			URL:     "/ping",
			Methods: []string{"GET"},
			Schema:  &RouteSchema{Response: parseObject(t, `{"200":{"$ref":"response#"}}`)},
		}}

		doc := Assemble(nil, pingRegistry(t), routes)

		schema, ok := value.Dig(doc, "paths", "/ping", "get", "responses", "200", "content", "application/json", "schema")
		require.True(t, ok)
		assert.Equal(t, `{"$ref":"#/components/schemas/response"}`, toJSON(t, schema))

		component, ok := value.Dig(doc, "components", "schemas", "response")
		require.True(t, ok)
		assert.Equal(t,
			`{"type":"object","properties":{"ok":{"type":"boolean"}},"required":["ok"]}`,
			toJSON(t, component))
	})

	t.Run("path parameter", func(t *testing.T) {
		routes := []Route{{
			URL:     "/items/:id",
			Methods: []string{"GET"},
			Schema: &RouteSchema{
				Params: parseObject(t, `{"type":"object","properties":{"id":{"type":"string"}},"required":["id"]}`),
			},
		}}

		doc := Assemble(nil, nil, routes)

		op, ok := value.Dig(doc, "paths", "/items/{id}", "get")
		require.True(t, ok)
		assert.Equal(t,
			`{"parameters":[{"name":"id","in":"path","schema":{"type":"string"},"required":true}]}`,
			toJSON(t, op))
	})

	t.Run("hidden routes", func(t *testing.T) {
		routes := []Route{
			{URL: "/secret", Methods: []string{"GET"}, Config: RouteConfig{Hide: true}},
			{URL: "/public", Methods: []string{"GET", "HEAD"}, Config: RouteConfig{HideHead: true}},
			{URL: "/both", Methods: []string{"GET", "HEAD"}},
			{URL: "/head-only", Methods: []string{"HEAD"}, Config: RouteConfig{HideHead: true}},
		}

		doc := Assemble(nil, nil, routes)
		paths, _ := doc.GetObject("paths")

		assert.Equal(t, []string{"/both", "/public"}, paths.Keys())

		public, _ := paths.GetObject("/public")
		assert.Equal(t, []string{"get"}, public.Keys())

		both, _ := paths.GetObject("/both")
		assert.Equal(t, []string{"get", "head"}, both.Keys())
	})

	t.Run("no schema gives empty operation", func(t *testing.T) {
		doc := Assemble(nil, nil, []Route{{URL: "/health", Methods: []string{"get"}}})
		assert.Equal(t, `{"components":{"schemas":{}},"paths":{"/health":{"get":{}}}}`, toJSON(t, doc))
	})

	t.Run("no parameters key without parameter sections", func(t *testing.T) {
		routes := []Route{{
			URL:     "/items",
			Methods: []string{"GET"},
			Schema:  &RouteSchema{Response: parseObject(t, `{"200":{"type":"array"}}`)},
		}}

		op, _ := value.Dig(Assemble(nil, nil, routes), "paths", "/items", "get")
		assert.False(t, op.(*value.Object).Has("parameters"))
	})

	t.Run("body only for methods with a body", func(t *testing.T) {
		schema := &RouteSchema{Body: parseObject(t, `{"type":"object","properties":{"name":{"type":"string"}}}`)}
		routes := []Route{
			{URL: "/items", Methods: []string{"GET", "DELETE"}, Schema: schema},
			{URL: "/items", Methods: []string{"POST", "PUT", "PATCH"}, Schema: schema},
		}

		doc := Assemble(nil, nil, routes)

		for _, method := range []string{"get", "delete"} {
			op, ok := value.Dig(doc, "paths", "/items", method)
			require.True(t, ok, method)
			assert.False(t, op.(*value.Object).Has("requestBody"), method)
		}
		for _, method := range []string{"post", "put", "patch"} {
			mediaSchema, ok := value.Dig(doc, "paths", "/items", method, "requestBody", "content", "application/json", "schema")
			require.True(t, ok, method)
			assert.Equal(t, `{"type":"object","properties":{"name":{"type":"string"}}}`, toJSON(t, mediaSchema))
		}
	})

	t.Run("body mime override", func(t *testing.T) {
		routes := []Route{{
			URL:     "/upload",
			Methods: []string{"POST"},
			Schema:  &RouteSchema{Body: parseObject(t, `{"type":"string","format":"binary"}`)},
			Config:  RouteConfig{BodyMime: "application/octet-stream"},
		}}

		_, ok := value.Dig(Assemble(nil, nil, routes), "paths", "/upload", "post", "requestBody", "content", "application/octet-stream")
		assert.True(t, ok)
	})

	t.Run("raw and empty responses", func(t *testing.T) {
		routes := []Route{{
			URL:     "/export",
			Methods: []string{"GET"},
			Schema:  &RouteSchema{Response: parseObject(t, `{"200":{"$raw":"text/csv"},"204":{"$empty":true}}`)},
		}}

		responses, ok := value.Dig(Assemble(nil, nil, routes), "paths", "/export", "get", "responses")
		require.True(t, ok)
		assert.Equal(t, `{"200":{"content":{"text/csv":{}}},"204":{}}`, toJSON(t, responses))
	})

	t.Run("type list normalized document-wide", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.Add(parseObject(t,
			`{"$id":"flag#","type":"object","properties":{"on":{"type":["boolean","null"]}}}`)))

		doc := Assemble(nil, reg, nil)

		on, ok := value.Dig(doc, "components", "schemas", "flag", "properties", "on")
		require.True(t, ok)
		assert.Equal(t, `{"anyOf":[{"type":"boolean"},{"type":"null"}]}`, toJSON(t, on))
	})

	t.Run("annotations", func(t *testing.T) {
		routes := []Route{
			{
				URL:     "/items",
				Methods: []string{"GET"},
				Schema:  &RouteSchema{Response: parseObject(t, `{"200":{"$empty":true}}`)},
				Config: RouteConfig{OpenAPI: &Annotations{
					OperationID: "listItems",
					Security:    []SecurityRequirement{{"apiKey": {}}},
					Tags:        []string{"items"},
					Description: "Lists items.",
					Summary:     "List items",
				}},
			},
			{
				URL:     "/login",
				Methods: []string{"POST"},
				Config: RouteConfig{OpenAPI: &Annotations{
					Summary:  "Log in",
					Security: []SecurityRequirement{},
				}},
			},
		}

		doc := Assemble(nil, nil, routes)

		list, _ := value.Dig(doc, "paths", "/items", "get")
		assert.Equal(t,
			`{"summary":"List items","description":"Lists items.","tags":["items"],"security":[{"apiKey":[]}],"operationId":"listItems","responses":{"200":{}}}`,
			toJSON(t, list))

		login, _ := value.Dig(doc, "paths", "/login", "post")
		assert.Equal(t, `{"summary":"Log in","security":[]}`, toJSON(t, login))
	})

	t.Run("method precedence", func(t *testing.T) {
		routes := []Route{
			{URL: "/r", Methods: []string{"PURGE", "OPTIONS", "patch"}},
			{URL: "/r", Methods: []string{"HEAD", "DELETE", "PUT", "POST", "GET", "LINK"}},
		}

		item, _ := value.Dig(Assemble(nil, nil, routes), "paths", "/r")
		assert.Equal(t,
			[]string{"get", "post", "put", "delete", "head", "patch", "options", "purge", "link"},
			item.(*value.Object).Keys())
	})

	t.Run("later route replaces earlier operation", func(t *testing.T) {
		routes := []Route{
			{URL: "/dup", Methods: []string{"GET"}, Config: RouteConfig{OpenAPI: &Annotations{Summary: "first"}}},
			{URL: "/dup", Methods: []string{"GET"}, Config: RouteConfig{OpenAPI: &Annotations{Summary: "second"}}},
		}

		summary, _ := value.Dig(Assemble(nil, nil, routes), "paths", "/dup", "get", "summary")
		assert.Equal(t, value.String("second"), summary)
	})

	t.Run("placeholder styles share a path", func(t *testing.T) {
		routes := []Route{
			{URL: "/items/{id:[0-9]+}", Methods: []string{"PUT"}},
			{URL: "/items/:id", Methods: []string{"GET"}},
		}

		item, _ := value.Dig(Assemble(nil, nil, routes), "paths", "/items/{id}")
		assert.Equal(t, []string{"get", "put"}, item.(*value.Object).Keys())
	})

	t.Run("seed is kept and not modified", func(t *testing.T) {
		const src = `{"openapi":"3.0.3","info":{"title":"T","version":"1"},` +
			`"components":{"securitySchemes":{"apiKey":{"type":"apiKey","name":"k","in":"header"}},"schemas":{"manual":{"type":"string"}}},` +
			`"paths":{"/manual":{"get":{"summary":"by hand"}}}}`
		seed := parseObject(t, src)

		doc := Assemble(seed, pingRegistry(t), []Route{{URL: "/ping", Methods: []string{"GET"}}})

		assert.Equal(t, src, toJSON(t, seed))
		assert.Equal(t,
			`{"openapi":"3.0.3","info":{"title":"T","version":"1"},`+
				`"components":{"securitySchemes":{"apiKey":{"type":"apiKey","name":"k","in":"header"}},"schemas":{"manual":{"type":"string"},"response":{"type":"object","properties":{"ok":{"type":"boolean"}},"required":["ok"]}}},`+
				`"paths":{"/manual":{"get":{"summary":"by hand"}},"/ping":{"get":{}}}}`,
			toJSON(t, doc))
	})

	t.Run("seed path item gains operations", func(t *testing.T) {
		seed := parseObject(t, `{"paths":{"/ping":{"summary":"liveness"}}}`)

		item, _ := value.Dig(Assemble(seed, nil, []Route{{URL: "/ping", Methods: []string{"GET"}}}), "paths", "/ping")
		assert.Equal(t, `{"summary":"liveness","get":{}}`, toJSON(t, item))
	})

	t.Run("malformed seed sections are replaced", func(t *testing.T) {
		seed := parseObject(t, `{"components":"x","paths":[]}`)

		doc := Assemble(seed, nil, nil)
		assert.Equal(t, `{"components":{"schemas":{}},"paths":{}}`, toJSON(t, doc))
	})

	t.Run("deterministic across registration order", func(t *testing.T) {
		routes := sampleRoutes(t)
		want := toJSON(t, Assemble(nil, pingRegistry(t), routes))

		rng := rand.New(rand.NewPCG(1, 2))
		for range 20 {
			shuffled := append([]Route(nil), routes...)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

			assert.Equal(t, want, toJSON(t, Assemble(nil, pingRegistry(t), shuffled)))
		}
	})

	t.Run("registry order does not matter", func(t *testing.T) {
		a := NewRegistry()
		require.NoError(t, a.Set("b", value.NewObject()))
		require.NoError(t, a.Set("a", value.NewObject()))

		b := NewRegistry()
		require.NoError(t, b.Set("a", value.NewObject()))
		require.NoError(t, b.Set("b", value.NewObject()))

		assert.Equal(t, toJSON(t, Assemble(nil, a, nil)), toJSON(t, Assemble(nil, b, nil)))
	})

	t.Run("valid openapi document", func(t *testing.T) {
		seed := NewSeed(Info{Title: "Shop", Version: "1.0.0"}).
			AddSecurityScheme("apiKey", &SecurityScheme{Type: "apiKey", Name: "X-API-Key", In: "header"}).
			Document()

		doc := Assemble(seed, pingRegistry(t), sampleRoutes(t))

		data, err := value.Marshal(doc)
		require.NoError(t, err)

		loaded, err := openapi3.NewLoader().LoadFromData(data)
		require.NoError(t, err)
		require.NoError(t, loaded.Validate(context.Background()))

		op := loaded.Paths.Find("/items/{id}").Get
		require.NotNil(t, op)
		require.Len(t, op.Parameters, 1)
		assert.Equal(t, "id", op.Parameters[0].Value.Name)
		assert.Equal(t, "path", op.Parameters[0].Value.In)
	})
}

// sampleRoutes returns a small API in which every operation declares
// responses and every path placeholder has a parameter.
func sampleRoutes(t *testing.T) []Route {
	t.Helper()

	ok := func() *value.Object {
		return parseObject(t, `{"200":{"description":"OK","type":"object","properties":{"result":{"$ref":"response#"}}}}`)
	}
	idParams := func() *value.Object {
		return parseObject(t, `{"type":"object","properties":{"id":{"type":"string","description":"Item ID"}},"required":["id"]}`)
	}

	return []Route{
		{
			URL:     "/ping",
			Methods: []string{"GET", "HEAD"},
			Schema:  &RouteSchema{Response: ok()},
			Config:  RouteConfig{HideHead: true, OpenAPI: &Annotations{Summary: "Ping", Tags: []string{"health"}}},
		},
		{
			URL:     "/items",
			Methods: []string{"GET"},
			Schema: &RouteSchema{
				Querystring: parseObject(t, `{"type":"object","properties":{"limit":{"type":"integer"}}}`),
				Response:    ok(),
			},
			Config: RouteConfig{OpenAPI: &Annotations{OperationID: "listItems"}},
		},
		{
			URL:     "/items",
			Methods: []string{"POST"},
			Schema: &RouteSchema{
				Body:     parseObject(t, `{"description":"New item","type":"object","properties":{"name":{"type":"string"}}}`),
				Response: parseObject(t, `{"201":{"description":"Created","$empty":true}}`),
			},
			Config: RouteConfig{OpenAPI: &Annotations{Security: []SecurityRequirement{{"apiKey": {}}}}},
		},
		{
			URL:     "/items/:id",
			Methods: []string{"GET"},
			Schema:  &RouteSchema{Params: idParams(), Response: ok()},
		},
		{
			URL:     "/items/:id",
			Methods: []string{"DELETE"},
			Schema: &RouteSchema{
				Params:   idParams(),
				Response: parseObject(t, `{"204":{"description":"Deleted","$empty":true}}`),
			},
		},
		{
			URL:     "/items/:id/export",
			Methods: []string{"GET"},
			Schema: &RouteSchema{
				Params:   idParams(),
				Response: parseObject(t, `{"200":{"description":"CSV","$raw":"text/csv"}}`),
			},
		},
		{
			URL:     "/internal",
			Methods: []string{"GET"},
			Config:  RouteConfig{Hide: true},
		},
	}
}
