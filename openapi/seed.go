package openapi

import (
	"sort"

	"github.com/vitalvas/oasdocs/value"
)

// DefaultVersion is the OpenAPI version written by Seed when none is set.
const DefaultVersion = "3.0.3"

// Seed builds the caller-supplied base document that Assemble extends.
// It is a typed alternative to writing the top-level metadata by hand.
type Seed struct {
	version         string
	info            Info
	servers         []Server
	tags            []Tag
	externalDocs    *ExternalDocs
	security        []SecurityRequirement
	securitySchemes map[string]*SecurityScheme
	extensions      *value.Object
}

// NewSeed creates a seed builder with the given API info.
func NewSeed(info Info) *Seed {
	return &Seed{
		version: DefaultVersion,
		info:    info,
	}
}

// Version overrides the "openapi" version field.
func (s *Seed) Version(version string) *Seed {
	s.version = version
	return s
}

// AddServer adds a server to the document.
func (s *Seed) AddServer(server Server) *Seed {
	s.servers = append(s.servers, server)
	return s
}

// AddTag adds a document-level tag with optional description and external docs.
func (s *Seed) AddTag(tag Tag) *Seed {
	s.tags = append(s.tags, tag)
	return s
}

// SetExternalDocs sets the document-level external documentation link.
func (s *Seed) SetExternalDocs(url, description string) *Seed {
	s.externalDocs = &ExternalDocs{URL: url, Description: description}
	return s
}

// SetSecurity sets the document-level security requirements. Call with no
// arguments to emit an empty list.
func (s *Seed) SetSecurity(reqs ...SecurityRequirement) *Seed {
	if reqs == nil {
		reqs = []SecurityRequirement{}
	}
	s.security = reqs
	return s
}

// AddSecurityScheme registers a reusable security scheme in components.
func (s *Seed) AddSecurityScheme(name string, scheme *SecurityScheme) *Seed {
	if s.securitySchemes == nil {
		s.securitySchemes = make(map[string]*SecurityScheme)
	}
	s.securitySchemes[name] = scheme
	return s
}

// Set stores an arbitrary top-level field, such as an "x-" extension.
func (s *Seed) Set(key string, v value.Value) *Seed {
	if s.extensions == nil {
		s.extensions = value.NewObject()
	}
	s.extensions.Set(key, v)
	return s
}

// Document returns the seed as a new value tree.
func (s *Seed) Document() *value.Object {
	doc := value.NewObject().
		Set("openapi", value.String(s.version)).
		Set("info", value.MustFrom(s.info))

	if len(s.servers) > 0 {
		doc.Set("servers", value.MustFrom(s.servers))
	}
	if len(s.tags) > 0 {
		doc.Set("tags", value.MustFrom(s.tags))
	}
	if s.externalDocs != nil {
		doc.Set("externalDocs", value.MustFrom(s.externalDocs))
	}
	if s.security != nil {
		doc.Set("security", securityValue(s.security))
	}

	if len(s.securitySchemes) > 0 {
		names := make([]string, 0, len(s.securitySchemes))
		for name := range s.securitySchemes {
			names = append(names, name)
		}
		sort.Strings(names)

		schemes := value.NewObject()
		for _, name := range names {
			schemes.Set(name, value.MustFrom(s.securitySchemes[name]))
		}
		doc.Set("components", value.NewObject().Set("securitySchemes", schemes))
	}

	s.extensions.Range(func(key string, v value.Value) bool {
		doc.Set(key, value.Clone(v))
		return true
	})

	return doc
}

// securityValue converts requirements into an array, keeping an empty list
// as [] rather than dropping it.
func securityValue(reqs []SecurityRequirement) value.Array {
	out := make(value.Array, 0, len(reqs))
	for _, req := range reqs {
		names := make([]string, 0, len(req))
		for name := range req {
			names = append(names, name)
		}
		sort.Strings(names)

		obj := value.NewObject()
		for _, name := range names {
			scopes := req[name]
			if scopes == nil {
				scopes = []string{}
			}
			obj.Set(name, value.MustFrom(scopes))
		}
		out = append(out, obj)
	}
	return out
}
