package httputil

import "net/http"

// GetTraceID gets a trace ID from the request headers.
// This utility is in a separate package to avoid circular imports between
// pkg/http and pkg/http/handlers.
func GetTraceID(r *http.Request) string {
	if traceID := r.Header.Get("X-Trace-ID"); traceID != "" {
		return traceID
	}
	return r.Header.Get("X-Request-ID")
}
