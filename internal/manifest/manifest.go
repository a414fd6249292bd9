// Package manifest reads route manifests: YAML (or JSON) files that describe
// an API by its seed document, shared schemas and routes, so a document can
// be generated or served without the application that owns the routes.
//
//	openapi:
//	  openapi: 3.0.3
//	  info: {title: Items, version: 1.0.0}
//	schemas:
//	  - $id: item#
//	    type: object
//	    properties: {id: {type: string}}
//	routes:
//	  - url: /items/:id
//	    method: [GET, HEAD]
//	    schema:
//	      params: {type: object, properties: {id: {type: string}}, required: [id]}
//	      response: {"200": {$ref: item#}}
//	    config:
//	      hideHead: true
//	      openapi: {summary: Get item, tags: [items]}
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vitalvas/oasdocs/docs"
	"github.com/vitalvas/oasdocs/openapi"
	"github.com/vitalvas/oasdocs/value"
)

var (
	// ErrNoURL is returned for a route without a url.
	ErrNoURL = errors.New("manifest: route has no url")
	// ErrNoMethods is returned for a route without a method.
	ErrNoMethods = errors.New("manifest: route has no methods")
)

// DefaultInfo is the info object of a manifest without an openapi section.
var DefaultInfo = openapi.Info{Title: "API", Version: "0.0.0"}

// Manifest is the decoded manifest file.
type Manifest struct {
	OpenAPI *value.Object   `yaml:"openapi"`
	Schemas []*value.Object `yaml:"schemas"`
	Routes  []Route         `yaml:"routes"`
}

// Route is one route record. Schema uses the route schema keys (headers,
// params, querystring, body, response) and may reference Schemas by "$id".
type Route struct {
	URL    string              `yaml:"url"`
	Method Methods             `yaml:"method"`
	Schema *value.Object       `yaml:"schema"`
	Config openapi.RouteConfig `yaml:"config"`
}

// Methods accepts a single method or a list of methods.
type Methods []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *Methods) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*m = Methods{node.Value}
		return nil
	}

	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*m = list
	return nil
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates a manifest. Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	m := &Manifest{}
	if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks that every route has a URL and methods and every schema
// an "$id".
func (m *Manifest) Validate() error {
	var errs []error

	for i, s := range m.Schemas {
		if id, ok := s.GetString("$id"); !ok || id == "" {
			errs = append(errs, fmt.Errorf("schema %d: %w", i, openapi.ErrSchemaNoID))
		}
	}

	for i, r := range m.Routes {
		if strings.TrimSpace(r.URL) == "" {
			errs = append(errs, fmt.Errorf("route %d: %w", i, ErrNoURL))
		}
		if len(r.Method) == 0 {
			errs = append(errs, fmt.Errorf("route %d (%s): %w", i, r.URL, ErrNoMethods))
		}
	}

	return errors.Join(errs...)
}

// Seed returns the seed document of the manifest. Without an openapi
// section it is a bare document built from DefaultInfo.
func (m *Manifest) Seed() *value.Object {
	if m == nil || m.OpenAPI == nil {
		return openapi.NewSeed(DefaultInfo).Document()
	}
	return m.OpenAPI
}

// Records converts the manifest routes into route records.
func (m *Manifest) Records() []openapi.Route {
	out := make([]openapi.Route, 0, len(m.Routes))
	for _, r := range m.Routes {
		out = append(out, openapi.Route{
			URL:     r.URL,
			Methods: append([]string(nil), r.Method...),
			Schema:  openapi.RouteSchemaFromObject(r.Schema),
			Config:  r.Config,
		})
	}
	return out
}

// Apply registers the manifest schemas and routes with d.
func (m *Manifest) Apply(d *docs.Docs) error {
	for _, s := range m.Schemas {
		if err := d.AddSchema(s); err != nil {
			return err
		}
	}
	return d.Register(m.Records()...)
}
