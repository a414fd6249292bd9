package docs

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vitalvas/oasdocs/openapi"
	"github.com/vitalvas/oasdocs/value"
)

// DefaultPrefix is the mount point used when Config.Prefix is empty.
const DefaultPrefix = "/docs"

var (
	// ErrAlreadyBuilt is returned when routes or schemas are added, or a
	// build is requested, after the document was built.
	ErrAlreadyBuilt = errors.New("docs: document already built")

	// ErrNotReady is returned when the document is requested before Build.
	ErrNotReady = errors.New("docs: document not built yet")
)

// Config configures a documentation instance.
type Config struct {
	// Prefix is the URL prefix of every docs endpoint. It is normalized to
	// a leading slash and no trailing slash; "/" mounts at the root.
	Prefix string

	// OpenAPI is the seed document. It is never modified.
	OpenAPI *value.Object

	// SkipUI disables the Swagger UI and its redirect. The document
	// endpoints are still served.
	SkipUI bool

	// IgnoreTrailingSlash makes the prefix redirect target
	// "<prefix>/index.html" instead of "<prefix>/".
	IgnoreTrailingSlash bool

	// UIAssets replaces the built-in UI files. It must contain index.html
	// and swagger-initializer.js.
	UIAssets fs.FS

	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// Registerer receives the instance metrics. Nil disables registration.
	Registerer prometheus.Registerer
}

// built is the immutable result of Build.
type built struct {
	doc  *value.Object
	json []byte
	yaml []byte
}

// Docs collects the routes and schemas of one API and serves the OpenAPI
// document assembled from them. Instances share no state.
type Docs struct {
	cfg     Config
	prefix  string
	logger  *zap.Logger
	metrics *metrics

	mu        sync.Mutex
	schemas   *openapi.Registry
	reflector *openapi.Reflector
	routes    []openapi.Route
	attached  map[*mux.Route]*RouteBuilder

	state atomic.Pointer[built]
}

// New creates a documentation instance.
func New(cfg Config) *Docs {
	if cfg.UIAssets == nil {
		cfg.UIAssets = DefaultUIAssets()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	prefix := normalizePrefix(cfg.Prefix)
	schemas := openapi.NewRegistry()

	return &Docs{
		cfg:       cfg,
		prefix:    prefix,
		logger:    logger.With(zap.String("docs_prefix", prefix)),
		metrics:   newMetrics(cfg.Registerer, prefix, logger),
		schemas:   schemas,
		reflector: openapi.NewReflector(schemas),
		attached:  make(map[*mux.Route]*RouteBuilder),
	}
}

func normalizePrefix(prefix string) string {
	if prefix == "" {
		return DefaultPrefix
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return strings.TrimRight(prefix, "/")
}

// Prefix returns the normalized URL prefix. The root mount is "".
func (d *Docs) Prefix() string {
	return d.prefix
}

// Schemas returns the schema registry. Routes reference its entries as
// {"$ref": "<id>"}. It must not be modified after Build.
func (d *Docs) Schemas() *openapi.Registry {
	return d.schemas
}

// AddSchema registers a schema under its "$id".
func (d *Docs) AddSchema(schema *value.Object) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state.Load() != nil {
		return ErrAlreadyBuilt
	}
	return d.schemas.Add(schema)
}

// Register adds routes to the document.
func (d *Docs) Register(routes ...openapi.Route) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state.Load() != nil {
		return ErrAlreadyBuilt
	}
	d.routes = append(d.routes, routes...)
	return nil
}

// Route returns the builder attached to a router route, creating it on
// first use. The route is picked up by Ready.
func (d *Docs) Route(route *mux.Route) *RouteBuilder {
	d.mu.Lock()
	defer d.mu.Unlock()

	if b, ok := d.attached[route]; ok {
		return b
	}
	b := newRouteBuilder(d.reflectSchema)
	d.attached[route] = b
	return b
}

// reflectSchema derives a schema under the instance lock, registering named
// struct types.
func (d *Docs) reflectSchema(v any) (value.Value, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state.Load() != nil {
		return nil, ErrAlreadyBuilt
	}
	return d.reflector.Schema(v), nil
}

// Group returns a route group whose builders start from shared defaults.
func (d *Docs) Group() *RouteGroup {
	return &RouteGroup{docs: d}
}

// Ready registers every route of r that has a path template and explicit
// methods, together with its attached builder, and builds the document.
// Routes mounted by Handle are skipped. Call it once, after all routes are
// registered. Walked routes are kept only when the build succeeds, so a
// failed Ready can be retried.
func (d *Docs) Ready(r *mux.Router) error {
	if d.state.Load() != nil {
		return ErrAlreadyBuilt
	}

	var (
		routes []openapi.Route
		errs   []error
	)
	err := r.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		if isDocsRoute(route) {
			return nil
		}
		tpl, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			return nil
		}

		d.mu.Lock()
		b := d.attached[route]
		d.mu.Unlock()

		if b != nil && b.err != nil {
			errs = append(errs, fmt.Errorf("docs: route %s: %w", tpl, b.err))
			return nil
		}

		routes = append(routes, b.record(tpl, methods))
		return nil
	})
	if err != nil {
		return fmt.Errorf("docs: walk router: %w", err)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.build(routes)
}

// Build assembles the document from the registered routes and schemas and
// caches it with its JSON and YAML encodings. It succeeds once.
func (d *Docs) Build() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.build(nil)
}

// build must be called with d.mu held. The extra routes are added to the
// registered ones only if the document is built.
func (d *Docs) build(extra []openapi.Route) error {
	if d.state.Load() != nil {
		return ErrAlreadyBuilt
	}

	start := time.Now()
	routes := append(slices.Clip(d.routes), extra...)
	doc := openapi.Assemble(d.cfg.OpenAPI, d.schemas, routes)

	jsonData, err := value.MarshalIndent(doc)
	if err != nil {
		return fmt.Errorf("docs: encode json: %w", err)
	}
	yamlData, err := value.MarshalYAML(doc)
	if err != nil {
		return fmt.Errorf("docs: encode yaml: %w", err)
	}

	d.routes = routes
	d.state.Store(&built{doc: doc, json: jsonData, yaml: yamlData})

	took := time.Since(start)
	paths, operations := countOperations(doc)
	d.metrics.built(took, operations, d.schemas.Len())

	d.logger.Info("openapi document built",
		zap.Int("routes", len(routes)),
		zap.Int("paths", paths),
		zap.Int("operations", operations),
		zap.Int("schemas", d.schemas.Len()),
		zap.Duration("took", took),
	)

	return nil
}

// Built reports whether Build has completed.
func (d *Docs) Built() bool {
	return d.state.Load() != nil
}

// Document returns a copy of the built document.
func (d *Docs) Document() (*value.Object, error) {
	state := d.state.Load()
	if state == nil {
		return nil, ErrNotReady
	}
	return state.doc.Clone(), nil
}

// JSON returns the indented JSON encoding of the built document.
func (d *Docs) JSON() ([]byte, error) {
	state := d.state.Load()
	if state == nil {
		return nil, ErrNotReady
	}
	return bytes.Clone(state.json), nil
}

// YAML returns the YAML encoding of the built document.
func (d *Docs) YAML() ([]byte, error) {
	state := d.state.Load()
	if state == nil {
		return nil, ErrNotReady
	}
	return bytes.Clone(state.yaml), nil
}

// countOperations returns the number of paths and operations in doc.
func countOperations(doc *value.Object) (paths, operations int) {
	items, ok := doc.GetObject("paths")
	if !ok {
		return 0, 0
	}

	items.Range(func(_ string, item value.Value) bool {
		paths++
		if obj, ok := item.(*value.Object); ok {
			for _, key := range obj.Keys() {
				if !pathItemFields[key] {
					operations++
				}
			}
		}
		return true
	})
	return paths, operations
}

// pathItemFields are the path item keys that are not operations.
var pathItemFields = map[string]bool{
	"$ref":        true,
	"summary":     true,
	"description": true,
	"servers":     true,
	"parameters":  true,
}
