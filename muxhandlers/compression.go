package muxhandlers

import (
	"compress/gzip"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

// ErrInvalidCompressionLevel is returned when CompressionConfig.Level is
// outside the gzip range.
var ErrInvalidCompressionLevel = errors.New("compression: invalid compression level")

// DefaultCompressionMinLength is used when CompressionConfig.MinLength is zero.
const DefaultCompressionMinLength = 1024

// CompressionConfig configures the gzip middleware.
type CompressionConfig struct {
	// Level is the gzip level. Zero means gzip.DefaultCompression.
	Level int

	// MinLength is the body size from which responses are compressed.
	// Smaller bodies are sent unchanged, with their Content-Length intact.
	MinLength int
}

// incompressible lists content type prefixes that are already compressed.
var incompressible = []string{"image/", "video/", "audio/", "application/zip", "application/gzip"}

// CompressionMiddleware gzips response bodies for clients that accept gzip.
// HEAD and range requests, responses that already carry a Content-Encoding,
// and already compressed content types pass through unchanged.
func CompressionMiddleware(cfg CompressionConfig) (mux.MiddlewareFunc, error) {
	level := cfg.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		return nil, ErrInvalidCompressionLevel
	}

	minLength := cfg.MinLength
	if minLength <= 0 {
		minLength = DefaultCompressionMinLength
	}

	pool := &sync.Pool{
		New: func() any {
			gz, _ := gzip.NewWriterLevel(io.Discard, level)
			return gz
		},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || r.Header.Get("Range") != "" || !acceptsGzip(r) {
				next.ServeHTTP(w, r)
				return
			}

			gw := &gzipResponseWriter{ResponseWriter: w, pool: pool, minLength: minLength}
			defer gw.close()

			next.ServeHTTP(gw, r)
		})
	}, nil
}

// acceptsGzip reports whether Accept-Encoding lists gzip without q=0.
func acceptsGzip(r *http.Request) bool {
	for part := range strings.SplitSeq(r.Header.Get("Accept-Encoding"), ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(name), "gzip") {
			continue
		}
		if q, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			f, err := strconv.ParseFloat(q, 64)
			return err == nil && f > 0
		}
		return true
	}
	return false
}

// gzipResponseWriter buffers the start of the body until it knows whether
// the response is large enough to compress.
type gzipResponseWriter struct {
	http.ResponseWriter
	pool      *sync.Pool
	minLength int

	status  int
	buf     []byte
	started bool
	gz      *gzip.Writer
}

func (gw *gzipResponseWriter) WriteHeader(code int) {
	if gw.status == 0 {
		gw.status = code
	}
}

func (gw *gzipResponseWriter) Write(b []byte) (int, error) {
	if gw.status == 0 {
		gw.status = http.StatusOK
	}

	if gw.started {
		if gw.gz != nil {
			return gw.gz.Write(b)
		}
		return gw.ResponseWriter.Write(b)
	}

	gw.buf = append(gw.buf, b...)
	if len(gw.buf) >= gw.minLength {
		if err := gw.start(true); err != nil {
			return 0, err
		}
	}
	return len(b), nil
}

// start sends the headers and the buffered body, compressed when compress
// is set and the response allows it.
func (gw *gzipResponseWriter) start(compress bool) error {
	gw.started = true
	h := gw.Header()

	if h.Get("Content-Type") == "" && len(gw.buf) > 0 {
		h.Set("Content-Type", http.DetectContentType(gw.buf))
	}

	if compress && h.Get("Content-Encoding") == "" && compressible(h.Get("Content-Type")) {
		h.Set("Content-Encoding", "gzip")
		h.Del("Content-Length")
		h.Add("Vary", "Accept-Encoding")

		gw.gz = gw.pool.Get().(*gzip.Writer)
		gw.gz.Reset(gw.ResponseWriter)
	}

	gw.ResponseWriter.WriteHeader(gw.status)

	buf := gw.buf
	gw.buf = nil
	if len(buf) == 0 {
		return nil
	}
	if gw.gz != nil {
		_, err := gw.gz.Write(buf)
		return err
	}
	_, err := gw.ResponseWriter.Write(buf)
	return err
}

func (gw *gzipResponseWriter) close() {
	if !gw.started {
		if gw.status == 0 {
			return
		}
		_ = gw.start(false)
	}

	if gw.gz != nil {
		_ = gw.gz.Close()
		gw.gz.Reset(io.Discard)
		gw.pool.Put(gw.gz)
		gw.gz = nil
	}
}

// Unwrap returns the underlying ResponseWriter for http.ResponseController.
func (gw *gzipResponseWriter) Unwrap() http.ResponseWriter {
	return gw.ResponseWriter
}

func compressible(contentType string) bool {
	ct := strings.ToLower(contentType)
	for _, prefix := range incompressible {
		if strings.HasPrefix(ct, prefix) {
			return false
		}
	}
	return true
}
