package docs

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/oasdocs/openapi"
	"github.com/vitalvas/oasdocs/value"
)

// fakeRoutes generates an API where every operation declares a described
// response and every placeholder a path parameter, so the document passes
// OpenAPI validation.
func fakeRoutes(f *gofakeit.Faker, n int) []openapi.Route {
	methods := []string{"GET", "POST", "PUT", "DELETE", "PATCH"}
	routes := make([]openapi.Route, 0, n)

	for i := range n {
		resource := strings.ReplaceAll(f.Noun(), " ", "-") + strconv.Itoa(i)
		url := "/" + resource
		schema := &openapi.RouteSchema{
			Response: value.MustObject(map[string]any{
				"200": map[string]any{
					"description": "Returns the " + f.Noun(),
					"type":        "object",
					"properties": map[string]any{
						"data": map[string]any{"$ref": "entity#"},
					},
				},
			}),
		}

		if f.Bool() {
			url += "/:id"
			schema.Params = value.MustObject(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{"type": "integer", "description": "Identifier"},
				},
				"required": []string{"id"},
			})
		}

		if f.Bool() {
			schema.Querystring = value.MustObject(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": map[string]any{"type": "integer", "minimum": 1, "maximum": f.Number(10, 500)},
				},
			})
		}

		method := f.RandomString(methods)
		if method != "GET" && method != "DELETE" {
			schema.Body = value.MustObject(map[string]any{"$ref": "entity#"})
		}

		routes = append(routes, openapi.Route{
			URL:     url,
			Methods: []string{method},
			Schema:  schema,
			Config: openapi.RouteConfig{OpenAPI: &openapi.Annotations{
				Summary:     f.Verb() + " " + f.Noun(),
				Tags:        []string{f.RandomString([]string{"catalog", "billing", "users"})},
				OperationID: method + resource,
			}},
		})
	}

	return routes
}

func shuffleRoutes(f *gofakeit.Faker, routes []openapi.Route) []openapi.Route {
	out := append([]openapi.Route(nil), routes...)
	for i := len(out) - 1; i > 0; i-- {
		j := f.Number(0, i)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func entitySchema(t *testing.T) *value.Object {
	t.Helper()
	return mustObject(t, `{"$id":"entity#","type":"object","properties":{"id":{"type":"integer"},"name":{"type":"string"}},"required":["id"]}`)
}

func TestGeneratedDocument(t *testing.T) {
	t.Run("valid openapi", func(t *testing.T) {
		f := gofakeit.New(42)

		d := New(Config{OpenAPI: openapi.NewSeed(openapi.Info{Title: f.AppName(), Version: f.AppVersion()}).
			AddServer(openapi.Server{URL: "https://" + f.DomainName()}).
			Document()})
		require.NoError(t, d.AddSchema(entitySchema(t)))
		require.NoError(t, d.Register(fakeRoutes(f, 25)...))
		require.NoError(t, d.Build())

		data, err := d.JSON()
		require.NoError(t, err)

		loaded, err := openapi3.NewLoader().LoadFromData(data)
		require.NoError(t, err)
		require.NoError(t, loaded.Validate(context.Background()))

		assert.Equal(t, 25, loaded.Paths.Len())
		require.NotNil(t, loaded.Components.Schemas["entity"])
	})

	t.Run("registration order does not matter", func(t *testing.T) {
		routes := fakeRoutes(gofakeit.New(7), 40)
		shuffler := gofakeit.New(11)

		build := func(routes []openapi.Route) string {
			d := New(Config{OpenAPI: testSeed()})
			require.NoError(t, d.AddSchema(entitySchema(t)))
			require.NoError(t, d.Register(routes...))
			require.NoError(t, d.Build())

			data, err := d.JSON()
			require.NoError(t, err)
			return string(data)
		}

		want := build(routes)
		for range 10 {
			assert.Equal(t, want, build(shuffleRoutes(shuffler, routes)))
		}
	})

	t.Run("same seed gives same document", func(t *testing.T) {
		build := func() []byte {
			d := New(Config{OpenAPI: testSeed()})
			require.NoError(t, d.AddSchema(entitySchema(t)))
			require.NoError(t, d.Register(fakeRoutes(gofakeit.New(3), 15)...))
			require.NoError(t, d.Build())

			data, err := d.YAML()
			require.NoError(t, err)
			return data
		}

		assert.Equal(t, build(), build())
	})
}

func TestRouterDocumentIsValid(t *testing.T) {
	r := mux.NewRouter()
	d := New(Config{OpenAPI: openapi.NewSeed(openapi.Info{Title: "Items", Version: "1.0.0"}).
		AddSecurityScheme("bearer", &openapi.SecurityScheme{Type: "http", Scheme: "bearer"}).
		SetSecurity(openapi.SecurityRequirement{"bearer": {}}).
		Document()})
	d.Handle(r)

	idParams := mustObject(t, `{"type":"object","properties":{"id":{"type":"string","format":"uuid"}},"required":["id"]}`)

	api := d.Group().Tags("items")
	api.Route(r.HandleFunc("/items", noop).Methods(http.MethodGet)).
		Summary("List items").
		Querystring(mustObject(t, `{"type":"object","properties":{"limit":{"type":"integer"},"cursor":{"type":"string"}}}`)).
		ResponseType(http.StatusOK, []testItem{}).
		ResponseDescription(http.StatusOK, "Items")
	api.Route(r.HandleFunc("/items", noop).Methods(http.MethodPost)).
		Summary("Create item").
		BodyType(testCreateItem{}).
		EmptyResponse(http.StatusCreated).
		ResponseDescription(http.StatusCreated, "Created")
	api.Route(r.HandleFunc("/items/{id}", noop).Methods(http.MethodDelete)).
		Params(idParams).
		EmptyResponse(http.StatusNoContent).
		ResponseDescription(http.StatusNoContent, "Deleted")
	api.Route(r.HandleFunc("/items/{id}/export", noop).Methods(http.MethodGet)).
		Params(idParams).
		RawResponse(http.StatusOK, "text/csv").
		ResponseDescription(http.StatusOK, "CSV export")
	d.Route(r.HandleFunc("/login", noop).Methods(http.MethodPost)).
		Security().
		Headers(mustObject(t, `{"type":"object","properties":{"x-client":{"type":"string"}}}`)).
		EmptyResponse(http.StatusNoContent).
		ResponseDescription(http.StatusNoContent, "Logged in")

	require.NoError(t, d.Ready(r))

	w := serve(r, http.MethodGet, "/docs/openapi.json")
	require.Equal(t, http.StatusOK, w.Code)

	loaded, err := openapi3.NewLoader().LoadFromData(w.Body.Bytes())
	require.NoError(t, err)
	require.NoError(t, loaded.Validate(context.Background()))

	list := loaded.Paths.Find("/items").Get
	require.NotNil(t, list)
	assert.Equal(t, []string{"items"}, list.Tags)
	require.Len(t, list.Parameters, 2)
	assert.Equal(t, "query", list.Parameters[0].Value.In)

	create := loaded.Paths.Find("/items").Post
	require.NotNil(t, create)
	require.NotNil(t, create.RequestBody)
	assert.Equal(t, "#/components/schemas/testCreateItem",
		create.RequestBody.Value.Content.Get("application/json").Schema.Ref)

	login := loaded.Paths.Find("/login").Post
	require.NotNil(t, login)
	require.NotNil(t, login.Security)
	assert.Empty(t, *login.Security)
	require.Len(t, login.Parameters, 1)
	assert.Equal(t, "header", login.Parameters[0].Value.In)

	assert.Nil(t, loaded.Paths.Find("/docs/openapi.json"))
}
