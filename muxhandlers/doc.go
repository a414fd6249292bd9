// Package muxhandlers provides the HTTP middleware and handlers used around
// the documentation endpoints.
//
// Middlewares are created from a config struct and return a
// mux.MiddlewareFunc, plus an error when the config can be invalid:
//
//	r.Use(muxhandlers.RequestIDMiddleware(muxhandlers.RequestIDConfig{}))
//	r.Use(muxhandlers.AccessLogMiddleware(muxhandlers.AccessLogConfig{Logger: logger}))
//
//	gz, err := muxhandlers.CompressionMiddleware(muxhandlers.CompressionConfig{MinLength: 512})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r.Use(gz)
//
// # CORS
//
// CORSHandler wraps the whole router instead, because preflight requests
// match no route:
//
//	h, err := muxhandlers.CORSHandler(muxhandlers.CORSConfig{
//	    AllowedOrigins: []string{"https://editor.swagger.io", "https://*.example.com"},
//	}, r)
//
// # Static Files
//
// StaticFilesHandler serves an fs.FS below a URL prefix without directory
// listings. Overrides replace single files with generated content, which is
// how the Swagger UI bootstrap script is pointed at a document.
package muxhandlers
