package docs

import (
	"strconv"

	"github.com/gorilla/mux"

	"github.com/vitalvas/oasdocs/openapi"
	"github.com/vitalvas/oasdocs/value"
)

// groupDefaults holds the settings a RouteGroup applies to every builder
// it creates.
type groupDefaults struct {
	tags        []string
	security    []openapi.SecurityRequirement
	securitySet bool // distinguishes nil (inherit) from empty (public)
	hide        bool
	hideHead    bool
	bodyMime    string
	responses   *value.Object
}

// RouteGroup provides shared defaults for a logical group of routes, such
// as the routes of one subrouter.
type RouteGroup struct {
	docs     *Docs
	defaults groupDefaults
}

// Tags appends tags to the group defaults. Routes may add more.
func (g *RouteGroup) Tags(tags ...string) *RouteGroup {
	g.defaults.tags = append(g.defaults.tags, tags...)
	return g
}

// Security sets the group security requirements. A route calling Security
// replaces them. Call with no arguments to mark the group public.
func (g *RouteGroup) Security(reqs ...openapi.SecurityRequirement) *RouteGroup {
	if reqs == nil {
		reqs = []openapi.SecurityRequirement{}
	}
	g.defaults.security = reqs
	g.defaults.securitySet = true
	return g
}

// Hide excludes every route of the group from the document.
func (g *RouteGroup) Hide() *RouteGroup {
	g.defaults.hide = true
	return g
}

// HideHead excludes the HEAD operations of the group.
func (g *RouteGroup) HideHead() *RouteGroup {
	g.defaults.hideHead = true
	return g
}

// BodyMime sets the default request body media type.
func (g *RouteGroup) BodyMime(mime string) *RouteGroup {
	g.defaults.bodyMime = mime
	return g
}

// Response adds a shared response schema. A route-level response for the
// same status code overrides it.
func (g *RouteGroup) Response(statusCode int, schema value.Value) *RouteGroup {
	if g.defaults.responses == nil {
		g.defaults.responses = value.NewObject()
	}
	g.defaults.responses.Set(strconv.Itoa(statusCode), value.Clone(schema))
	return g
}

// Route attaches a builder to a router route, pre-populated with the group
// defaults. A route that already has a builder keeps it unchanged.
func (g *RouteGroup) Route(route *mux.Route) *RouteBuilder {
	d := g.docs

	d.mu.Lock()
	defer d.mu.Unlock()

	if b, ok := d.attached[route]; ok {
		return b
	}
	b := g.newBuilderWithDefaults()
	d.attached[route] = b
	return b
}

func (g *RouteGroup) newBuilderWithDefaults() *RouteBuilder {
	b := newRouteBuilder(g.docs.reflectSchema)

	if len(g.defaults.tags) > 0 {
		b.Tags(g.defaults.tags...)
	}
	if g.defaults.securitySet {
		b.Security(g.defaults.security...)
	}

	b.config.Hide = g.defaults.hide
	b.config.HideHead = g.defaults.hideHead
	b.config.BodyMime = g.defaults.bodyMime

	g.defaults.responses.Range(func(code string, schema value.Value) bool {
		b.setResponse(code, value.Clone(schema))
		return true
	})

	return b
}
