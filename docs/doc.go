// Package docs serves an OpenAPI 3 document and a Swagger UI for an API
// routed with gorilla/mux.
//
// Routes are described with builders attached to router routes:
//
//	d := docs.New(docs.Config{
//	    OpenAPI: openapi.NewSeed(openapi.Info{Title: "Items", Version: "1.0.0"}).Document(),
//	})
//	d.Handle(r)
//
//	d.Route(r.HandleFunc("/items/{id}", getItem).Methods(http.MethodGet)).
//	    Summary("Get item").
//	    Params(value.MustObject(map[string]any{
//	        "type":       "object",
//	        "properties": map[string]any{"id": map[string]any{"type": "string"}},
//	        "required":   []string{"id"},
//	    })).
//	    ResponseType(http.StatusOK, Item{})
//
//	if err := d.Ready(r); err != nil {
//	    log.Fatal(err)
//	}
//
// Ready walks the router once, after every route is registered, and builds
// the document. From then on the document is immutable and served from
// <prefix>/openapi.json and <prefix>/openapi.yaml.
package docs
