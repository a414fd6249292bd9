package muxhandlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

// ErrInvalidFrameOption is returned when SecurityHeadersConfig.FrameOption
// is not "DENY", "SAMEORIGIN" or empty.
var ErrInvalidFrameOption = errors.New("security headers: frame option must be DENY, SAMEORIGIN, or empty")

// SecurityHeadersConfig configures the Security Headers middleware behaviour.
type SecurityHeadersConfig struct {
	// FrameOption is the X-Frame-Options value. Defaults to "DENY".
	FrameOption string

	// ReferrerPolicy defaults to "strict-origin-when-cross-origin".
	ReferrerPolicy string

	// ContentSecurityPolicy is sent when non-empty. The built-in Swagger UI
	// loads its bundle from unpkg.com, so a policy must allow that origin
	// for scripts and styles.
	ContentSecurityPolicy string

	// HSTSMaxAge enables Strict-Transport-Security when positive.
	HSTSMaxAge time.Duration
}

type headerValue struct {
	name  string
	value string
}

// SecurityHeadersMiddleware returns a middleware that adds browser security
// headers to every response. X-Content-Type-Options is always "nosniff".
func SecurityHeadersMiddleware(cfg SecurityHeadersConfig) (mux.MiddlewareFunc, error) {
	frame := cfg.FrameOption
	switch frame {
	case "":
		frame = "DENY"
	case "DENY", "SAMEORIGIN":
	default:
		return nil, ErrInvalidFrameOption
	}

	referrer := cfg.ReferrerPolicy
	if referrer == "" {
		referrer = "strict-origin-when-cross-origin"
	}

	headers := []headerValue{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", frame},
		{"Referrer-Policy", referrer},
	}
	if cfg.ContentSecurityPolicy != "" {
		headers = append(headers, headerValue{"Content-Security-Policy", cfg.ContentSecurityPolicy})
	}
	if cfg.HSTSMaxAge > 0 {
		headers = append(headers, headerValue{
			"Strict-Transport-Security",
			"max-age=" + strconv.Itoa(int(cfg.HSTSMaxAge.Seconds())),
		})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, hv := range headers {
				h.Set(hv.name, hv.value)
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}
