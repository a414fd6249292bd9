package openapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vitalvas/oasdocs/value"
)

var (
	// ErrSchemaNoID is returned by Registry.Add for a schema without a string "$id".
	ErrSchemaNoID = errors.New("openapi: schema has no $id")

	// ErrSchemaDuplicate is returned when an identifier is registered twice.
	ErrSchemaDuplicate = errors.New("openapi: duplicate schema id")
)

// Resolver looks up a schema by reference. It is used to resolve parameter
// sections written as {"$ref": "..."}.
type Resolver func(ref string) (value.Value, bool)

// Registry is an ordered set of named JSON Schema documents. The zero value
// is empty and ready to use. A Registry is not safe for concurrent writes.
type Registry struct {
	ids     []string
	schemas map[string]value.Value
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]value.Value)}
}

// Add registers a schema under the identifier found in its "$id" keyword.
func (r *Registry) Add(schema *value.Object) error {
	id, ok := schema.GetString("$id")
	if !ok || id == "" {
		return ErrSchemaNoID
	}
	return r.Set(id, schema)
}

// Set registers a schema under id.
func (r *Registry) Set(id string, schema value.Value) error {
	if r.schemas == nil {
		r.schemas = make(map[string]value.Value)
	}
	if _, ok := r.schemas[id]; ok {
		return fmt.Errorf("%w: %q", ErrSchemaDuplicate, id)
	}
	r.ids = append(r.ids, id)
	r.schemas[id] = schema
	return nil
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ids)
}

// IDs returns the identifiers in registration order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.ids...)
}

// Get returns the schema registered under exactly id.
func (r *Registry) Get(id string) (value.Value, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.schemas[id]
	return v, ok
}

// Lookup resolves a reference. The exact identifier wins; otherwise the
// reference and the identifiers are compared with "#" markers removed, so
// "item#", "#item" and "item" all find a schema registered as any of them.
func (r *Registry) Lookup(ref string) (value.Value, bool) {
	if v, ok := r.Get(ref); ok {
		return v, true
	}
	if r == nil {
		return nil, false
	}

	want := schemaName(ref)
	for _, id := range r.ids {
		if schemaName(id) == want {
			return r.schemas[id], true
		}
	}

	return nil, false
}

// Snapshot returns a copy of the registry. Later writes to either registry
// are not visible in the other.
func (r *Registry) Snapshot() *Registry {
	out := NewRegistry()
	if r == nil {
		return out
	}
	for _, id := range r.ids {
		out.ids = append(out.ids, id)
		out.schemas[id] = value.Clone(r.schemas[id])
	}
	return out
}

// schemaName strips reference markers from a registry identifier, giving the
// key used under components.schemas.
func schemaName(id string) string {
	return strings.ReplaceAll(id, "#", "")
}
