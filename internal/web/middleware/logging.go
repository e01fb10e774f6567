// Package middleware provides HTTP middleware for the web server.
package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/tcgmatch/internal/logging"
)

// RequestRecorder receives one observation per served request.
type RequestRecorder interface {
	HTTPRequest(method, route string, status int, elapsed time.Duration)
}

// Logger returns middleware that logs every request with structured logging
// and, when rec is non-nil, records it there too.
//
// Log fields:
//   - method, path, route (the matched chi pattern)
//   - status: HTTP response status code
//   - bytes: response body size
//   - duration_ms: request processing time in milliseconds
//   - ip: client IP after TrustedRealIP
//   - user_agent: client user agent string
func Logger(rec RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			route := routePattern(r)

			logging.FromContext(r.Context()).Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", ww.status,
				"bytes", ww.bytes,
				"duration_ms", duration.Milliseconds(),
				"ip", ClientIP(r),
				"user_agent", r.UserAgent(),
			)

			if rec != nil {
				rec.HTTPRequest(r.Method, route, ww.status, duration)
			}
		})
	}
}

// routePattern returns the matched route, or "unmatched" for 404s so raw
// paths never become metric labels.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Unwrap provides access to the underlying ResponseWriter for
// http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
