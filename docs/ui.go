package docs

import (
	"embed"
	"io/fs"
	"net/http"
	"regexp"

	"go.uber.org/zap"

	"github.com/vitalvas/oasdocs/muxhandlers"
)

//go:embed ui
var embeddedUI embed.FS

// Names of the UI files the docs server treats specially.
const (
	uiIndex       = "index.html"
	uiInitializer = "swagger-initializer.js"
)

// initializerURL matches the data source of the Swagger UI bootstrap script.
var initializerURL = regexp.MustCompile(`url: "([^"]*)"`)

// DefaultUIAssets returns the built-in Swagger UI bootstrap files. The UI
// bundle itself is loaded from unpkg.
func DefaultUIAssets() fs.FS {
	sub, err := fs.Sub(embeddedUI, "ui")
	if err != nil {
		panic(err)
	}
	return sub
}

// patchInitializer points the bootstrap script at specURL.
func patchInitializer(script []byte, specURL string) []byte {
	return initializerURL.ReplaceAllLiteral(script, []byte(`url: "`+specURL+`"`))
}

// uiHandler serves the UI assets under the prefix with the bootstrap script
// rewritten to load this instance's JSON document.
func (d *Docs) uiHandler() (http.Handler, error) {
	assets := d.cfg.UIAssets
	overrides := make(map[string][]byte)

	if script, err := fs.ReadFile(assets, uiInitializer); err == nil {
		overrides[uiInitializer] = patchInitializer(script, d.prefix+"/"+jsonFile)
	} else {
		d.logger.Warn("swagger ui initializer not found, document url not patched",
			zap.String("file", uiInitializer), zap.Error(err))
	}

	// http.FileServer redirects ".../index.html" to the directory.
	if index, err := fs.ReadFile(assets, uiIndex); err == nil {
		overrides[uiIndex] = index
	}

	return muxhandlers.StaticFilesHandler(muxhandlers.StaticFilesConfig{
		FS:          assets,
		StripPrefix: d.prefix,
		Overrides:   overrides,
	})
}
