package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitalvas/oasdocs/value"
)

func TestSeed(t *testing.T) {
	t.Run("minimal", func(t *testing.T) {
		doc := NewSeed(Info{Title: "Test API", Version: "1.0.0"}).Document()

		assert.Equal(t, `{"openapi":"3.0.3","info":{"title":"Test API","version":"1.0.0"}}`, toJSON(t, doc))
	})

	t.Run("version override", func(t *testing.T) {
		doc := NewSeed(Info{Title: "T", Version: "1"}).Version("3.0.0").Document()

		v, _ := doc.GetString("openapi")
		assert.Equal(t, "3.0.0", v)
	})

	t.Run("full", func(t *testing.T) {
		doc := NewSeed(Info{
			Title:   "Shop",
			Version: "2.0.0",
			License: &License{Name: "MIT"},
		}).
			AddServer(Server{URL: "https://api.example.com", Description: "Production"}).
			AddTag(Tag{Name: "items", Description: "Item operations"}).
			SetExternalDocs("https://docs.example.com", "").
			SetSecurity(SecurityRequirement{"apiKey": nil}).
			AddSecurityScheme("apiKey", &SecurityScheme{Type: "apiKey", Name: "X-API-Key", In: "header"}).
			AddSecurityScheme("bearer", &SecurityScheme{Type: "http", Scheme: "bearer"}).
			Set("x-logo", value.String("logo.png")).
			Document()

		assert.Equal(t, []string{"openapi", "info", "servers", "tags", "externalDocs", "security", "components", "x-logo"}, doc.Keys())
		assert.Equal(t,
			`{"openapi":"3.0.3",`+
				`"info":{"title":"Shop","license":{"name":"MIT"},"version":"2.0.0"},`+
				`"servers":[{"url":"https://api.example.com","description":"Production"}],`+
				`"tags":[{"name":"items","description":"Item operations"}],`+
				`"externalDocs":{"url":"https://docs.example.com"},`+
				`"security":[{"apiKey":[]}],`+
				`"components":{"securitySchemes":{"apiKey":{"type":"apiKey","name":"X-API-Key","in":"header"},"bearer":{"type":"http","scheme":"bearer"}}},`+
				`"x-logo":"logo.png"}`,
			toJSON(t, doc))
	})

	t.Run("empty security", func(t *testing.T) {
		doc := NewSeed(Info{Title: "T", Version: "1"}).SetSecurity().Document()

		sec, ok := doc.GetArray("security")
		assert.True(t, ok)
		assert.Empty(t, sec)
	})

	t.Run("document is a fresh copy", func(t *testing.T) {
		seed := NewSeed(Info{Title: "T", Version: "1"}).Set("x-a", value.NewObject())

		first := seed.Document()
		ext, _ := first.GetObject("x-a")
		ext.Set("changed", value.Bool(true))

		assert.Equal(t, `{}`, toJSON(t, mustGet(t, seed.Document(), "x-a")))
	})
}

func mustGet(t *testing.T, obj *value.Object, key string) value.Value {
	t.Helper()
	v, ok := obj.Get(key)
	assert.True(t, ok, key)
	return v
}
