package muxhandlers

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"
)

// ErrStaticFilesNoFS is returned when StaticFilesConfig.FS is nil.
var ErrStaticFilesNoFS = errors.New("static files: file system must not be nil")

// StaticFilesConfig configures the static file handler.
type StaticFilesConfig struct {
	// FS is the file system to serve files from. Required.
	FS fs.FS

	// StripPrefix is removed from the request path before lookup, so a
	// handler mounted under "/docs/" serves "/docs/app.js" from "app.js".
	StripPrefix string

	// Overrides replaces the content of individual files, keyed by their
	// slash-separated name inside FS (e.g. "config.js"). Overridden files
	// need not exist in FS.
	Overrides map[string][]byte

	// EnableDirectoryListing allows directory contents to be listed when
	// no index.html is present.
	EnableDirectoryListing bool
}

// noDirListingFS hides directories without an index.html so
// http.FileServer responds with 404 instead of a listing.
type noDirListingFS struct {
	fs fs.FS
}

func (n *noDirListingFS) Open(name string) (fs.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	if !stat.IsDir() {
		return f, nil
	}

	if _, err := fs.Stat(n.fs, path.Join(name, "index.html")); err != nil {
		f.Close()
		return nil, fs.ErrNotExist
	}

	return f, nil
}

// StaticFilesHandler returns an http.Handler serving files from cfg.FS.
// It is not middleware: it serves files directly without calling a next
// handler.
func StaticFilesHandler(cfg StaticFilesConfig) (http.Handler, error) {
	if cfg.FS == nil {
		return nil, ErrStaticFilesNoFS
	}

	fileSystem := cfg.FS
	if !cfg.EnableDirectoryListing {
		fileSystem = &noDirListingFS{fs: fileSystem}
	}

	var handler http.Handler = http.FileServerFS(fileSystem)

	if len(cfg.Overrides) > 0 {
		overrides := make(map[string][]byte, len(cfg.Overrides))
		for name, data := range cfg.Overrides {
			overrides[strings.TrimPrefix(path.Clean("/"+name), "/")] = data
		}
		handler = overrideHandler(overrides, handler)
	}

	if cfg.StripPrefix != "" {
		handler = http.StripPrefix(cfg.StripPrefix, handler)
	}

	return handler, nil
}

// overrideHandler serves in-memory content for overridden names and hands
// every other request to next.
func overrideHandler(overrides map[string][]byte, next http.Handler) http.Handler {
	modTime := time.Now()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")

		data, ok := overrides[name]
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		http.ServeContent(w, r, path.Base(name), modTime, bytes.NewReader(data))
	})
}
