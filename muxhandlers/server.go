package muxhandlers

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
)

// DefaultServerHeader is the header used when ServerConfig.HeaderName is empty.
const DefaultServerHeader = "X-Server-Hostname"

// ServerConfig configures the Server middleware behaviour.
type ServerConfig struct {
	// Hostname is the value written to the response header. Resolution
	// order: Hostname, then the first non-empty HostnameEnv variable,
	// then os.Hostname.
	Hostname string

	// HostnameEnv lists environment variables checked in order
	// (e.g. ["POD_NAME", "HOSTNAME"]).
	HostnameEnv []string

	// HeaderName overrides the response header name.
	HeaderName string
}

// ServerMiddleware returns a middleware that identifies the serving host in
// a response header. The hostname is resolved once, when the middleware is
// created.
func ServerMiddleware(cfg ServerConfig) (mux.MiddlewareFunc, error) {
	hostname, err := resolveHostname(cfg)
	if err != nil {
		return nil, err
	}

	header := cfg.HeaderName
	if header == "" {
		header = DefaultServerHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(header, hostname)
			next.ServeHTTP(w, r)
		})
	}, nil
}

func resolveHostname(cfg ServerConfig) (string, error) {
	if cfg.Hostname != "" {
		return cfg.Hostname, nil
	}

	for _, env := range cfg.HostnameEnv {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			return v, nil
		}
	}

	return os.Hostname()
}
