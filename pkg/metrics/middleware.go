package metrics

import (
	"net/http"
	"strconv"
)

// RouteUnmatched is the route label of requests no pattern matched.
const RouteUnmatched = "unmatched"

// Middleware counts requests to the admin endpoints. next must be a
// ServeMux (or wrap one) so the matched pattern is known after it runs;
// labelling by pattern keeps the series count fixed.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.Pattern
		if route == "" {
			route = RouteUnmatched
		}
		m.AdminRequestsTotal.WithLabelValues(route, strconv.Itoa(sw.status)).Inc()
	})
}

// statusWriter captures the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
