package muxhandlers

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ErrNoAllowedOrigins is returned when CORSConfig.AllowedOrigins is empty.
var ErrNoAllowedOrigins = errors.New("cors: at least one allowed origin is required")

// corsMethods are the only methods a read-only resource advertises.
const corsMethods = "GET, HEAD"

// CORSConfig configures cross-origin access to read-only resources such as
// the OpenAPI document, which external editors and UIs fetch from another
// origin.
type CORSConfig struct {
	// AllowedOrigins lists exact origins, "*" for any origin, or subdomain
	// patterns like "https://*.example.com". Matching ignores case.
	AllowedOrigins []string

	// AllowedHeaders lists request headers permitted in preflight. When
	// empty, the requested headers are reflected.
	AllowedHeaders []string

	// MaxAge is how long a preflight result may be cached. Zero omits the
	// header.
	MaxAge time.Duration
}

// originPattern is a subdomain pattern split at its "*".
type originPattern struct {
	prefix string
	suffix string
}

// CORSHandler wraps next with CORS handling. Wrap the whole router with it:
// preflight OPTIONS requests match no route, so route middleware never sees
// them.
//
// Preflight requests are answered with 204 and never reach next. Requests
// from origins that are not allowed are served without CORS headers.
func CORSHandler(cfg CORSConfig, next http.Handler) (http.Handler, error) {
	if len(cfg.AllowedOrigins) == 0 {
		return nil, ErrNoAllowedOrigins
	}

	anyOrigin := false
	var exact []string
	var patterns []originPattern

	for _, o := range cfg.AllowedOrigins {
		o = strings.ToLower(strings.TrimSpace(o))
		switch {
		case o == "*":
			anyOrigin = true
		case strings.Count(o, "*") == 1:
			prefix, suffix, _ := strings.Cut(o, "*")
			patterns = append(patterns, originPattern{prefix: prefix, suffix: suffix})
		case strings.Contains(o, "*"):
			return nil, errors.New("cors: origin pattern contains multiple wildcards: " + o)
		default:
			exact = append(exact, o)
		}
	}

	allowed := func(origin string) bool {
		if anyOrigin {
			return true
		}
		origin = strings.ToLower(origin)
		if slices.Contains(exact, origin) {
			return true
		}
		for _, p := range patterns {
			if len(origin) > len(p.prefix)+len(p.suffix) &&
				strings.HasPrefix(origin, p.prefix) &&
				strings.HasSuffix(origin, p.suffix) {
				return true
			}
		}
		return false
	}

	allowHeaders := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := ""
	if cfg.MaxAge > 0 {
		maxAge = strconv.Itoa(int(cfg.MaxAge.Seconds()))
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""

		if origin == "" || !allowed(origin) {
			if preflight {
				w.Header().Add("Vary", "Origin")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		if anyOrigin {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}

		if !preflight {
			next.ServeHTTP(w, r)
			return
		}

		h.Set("Access-Control-Allow-Methods", corsMethods)
		if allowHeaders != "" {
			h.Set("Access-Control-Allow-Headers", allowHeaders)
		} else if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
			h.Set("Access-Control-Allow-Headers", requested)
			h.Add("Vary", "Access-Control-Request-Headers")
		}
		if maxAge != "" {
			h.Set("Access-Control-Max-Age", maxAge)
		}

		w.WriteHeader(http.StatusNoContent)
	}), nil
}
