package docs

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Document file names under the prefix.
const (
	jsonFile = "openapi.json"
	yamlFile = "openapi.yaml"
)

type documentFormat struct {
	name        string
	contentType string
	data        func(*built) []byte
}

var (
	formatJSON = documentFormat{
		name:        "json",
		contentType: "application/json; charset=utf-8",
		data:        func(b *built) []byte { return b.json },
	}
	formatYAML = documentFormat{
		name:        "yaml",
		contentType: "text/yaml",
		data:        func(b *built) []byte { return b.yaml },
	}
)

// routeNamePrefix marks the routes mounted by Handle. Ready skips them for
// every instance, so one instance never documents the endpoints of another.
const routeNamePrefix = "oasdocs:"

// Handle mounts the docs endpoints on r:
//
//	<prefix>/openapi.json  - the document as JSON
//	<prefix>/openapi.yaml  - the document as YAML
//	<prefix>               - redirect to the UI (unless SkipUI)
//	<prefix>/*             - Swagger UI assets (unless SkipUI)
//
// The endpoints are left out of the generated document. Document endpoints
// answer 503 until the document is built. With the root prefix the UI
// matches every GET path, so call Handle after the API routes are added.
func (d *Docs) Handle(r *mux.Router) {
	r.HandleFunc(d.prefix+"/"+jsonFile, d.serveDocument(formatJSON)).
		Methods(http.MethodGet, http.MethodHead).
		Name(d.routeName(jsonFile))
	r.HandleFunc(d.prefix+"/"+yamlFile, d.serveDocument(formatYAML)).
		Methods(http.MethodGet, http.MethodHead).
		Name(d.routeName(yamlFile))

	if d.cfg.SkipUI {
		return
	}

	ui, err := d.uiHandler()
	if err != nil {
		d.logger.Error("swagger ui disabled", zap.Error(err))
		return
	}

	if d.prefix != "" {
		r.Handle(d.prefix, d.redirect()).
			Methods(http.MethodGet, http.MethodHead).
			Name(d.routeName("redirect"))
	}
	r.PathPrefix(d.prefix + "/").Handler(ui).
		Methods(http.MethodGet, http.MethodHead).
		Name(d.routeName("ui"))
}

func (d *Docs) routeName(endpoint string) string {
	return routeNamePrefix + d.prefix + ":" + endpoint
}

func isDocsRoute(route *mux.Route) bool {
	return strings.HasPrefix(route.GetName(), routeNamePrefix)
}

func (d *Docs) serveDocument(format documentFormat) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := d.state.Load()
		if state == nil {
			d.metrics.request(format.name, strconv.Itoa(http.StatusServiceUnavailable))
			http.Error(w, ErrNotReady.Error(), http.StatusServiceUnavailable)
			return
		}

		data := format.data(state)
		d.metrics.request(format.name, strconv.Itoa(http.StatusOK))

		w.Header().Set("Content-Type", format.contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)

		if r.Method != http.MethodHead {
			_, _ = w.Write(data)
		}
	}
}

// redirect sends the bare prefix to the UI.
func (d *Docs) redirect() http.Handler {
	target := d.prefix + "/"
	if d.cfg.IgnoreTrailingSlash {
		target += uiIndex
	}
	return http.RedirectHandler(target, http.StatusMovedPermanently)
}
