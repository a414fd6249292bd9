package muxhandlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

// ErrNoCacheControlRules is returned when CacheControlConfig.Rules is empty.
var ErrNoCacheControlRules = errors.New("cache control: at least one rule is required")

// ErrNegativeMaxAge is returned for a rule with a negative MaxAge.
var ErrNegativeMaxAge = errors.New("cache control: max age must not be negative")

// CacheControlRule sets the cache lifetime of responses whose Content-Type
// starts with ContentType (case-insensitive).
type CacheControlRule struct {
	ContentType string

	// MaxAge is written as "public, max-age=<seconds>". Zero gives
	// "no-cache", so clients revalidate every time.
	MaxAge time.Duration
}

// CacheControlConfig configures the CacheControl middleware behaviour.
type CacheControlConfig struct {
	// Rules are tried in order; the first match wins. Unmatched content
	// types get no header.
	Rules []CacheControlRule

	// ErrorValue is sent for responses with status 400 and above, whatever
	// their content type. Defaults to "no-store".
	ErrorValue string
}

type cacheRule struct {
	prefix string
	value  string
}

// CacheControlMiddleware returns a middleware that sets Cache-Control from
// the response Content-Type and status. Headers already set by the handler
// are kept. Error responses are never cached, so a document that is not
// built yet is not remembered as unavailable.
func CacheControlMiddleware(cfg CacheControlConfig) (mux.MiddlewareFunc, error) {
	if len(cfg.Rules) == 0 {
		return nil, ErrNoCacheControlRules
	}

	rules := make([]cacheRule, 0, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		if rule.MaxAge < 0 {
			return nil, ErrNegativeMaxAge
		}
		v := "no-cache"
		if rule.MaxAge > 0 {
			v = "public, max-age=" + strconv.Itoa(int(rule.MaxAge.Seconds()))
		}
		rules = append(rules, cacheRule{prefix: strings.ToLower(rule.ContentType), value: v})
	}

	errorValue := cfg.ErrorValue
	if errorValue == "" {
		errorValue = "no-store"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(&cacheWriter{ResponseWriter: w, rules: rules, errorValue: errorValue}, r)
		})
	}, nil
}

// cacheWriter decides the header when the status is known.
type cacheWriter struct {
	http.ResponseWriter
	rules       []cacheRule
	errorValue  string
	wroteHeader bool
}

func (cw *cacheWriter) WriteHeader(code int) {
	if cw.wroteHeader {
		return
	}
	cw.wroteHeader = true

	h := cw.Header()
	if h.Get("Cache-Control") == "" {
		if v := cw.value(code, h.Get("Content-Type")); v != "" {
			h.Set("Cache-Control", v)
		}
	}

	cw.ResponseWriter.WriteHeader(code)
}

func (cw *cacheWriter) value(code int, contentType string) string {
	if code >= http.StatusBadRequest {
		return cw.errorValue
	}

	ct := strings.ToLower(contentType)
	for _, rule := range cw.rules {
		if strings.HasPrefix(ct, rule.prefix) {
			return rule.value
		}
	}
	return ""
}

func (cw *cacheWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		cw.WriteHeader(http.StatusOK)
	}
	return cw.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter for http.ResponseController.
func (cw *cacheWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}
