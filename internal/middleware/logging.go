package middleware

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"
)

const actionKey contextKey = "action"

// actionHolder is filled in by the dispatcher after the body is parsed,
// so the log line written when the handler returns can name the action.
type actionHolder struct {
	mu   sync.Mutex
	name string
}

func (h *actionHolder) set(name string) {
	h.mu.Lock()
	h.name = name
	h.mu.Unlock()
}

func (h *actionHolder) get() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.name
}

// RecordAction notes the dispatched action name for the request log line.
// A no-op outside the logging middleware, so handlers can call it
// unconditionally.
func RecordAction(ctx context.Context, name string) {
	if h, ok := ctx.Value(actionKey).(*actionHolder); ok {
		h.set(name)
	}
}

// Logging logs each request with the resolved action, status and latency.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		holder := &actionHolder{}
		r = r.WithContext(context.WithValue(r.Context(), actionKey, holder))
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		action := holder.get()
		if action == "" {
			action = "-"
		}
		log.Printf(
			"[%s] %s action=%s %d %s rid=%s",
			r.Method,
			r.URL.Path,
			action,
			wrapped.statusCode,
			time.Since(start),
			GetRequestID(r.Context()),
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
