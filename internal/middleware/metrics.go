package middleware

import (
	"net/http"
	"time"

	"maisoku/internal/metrics"
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Metrics records request counts, latency, and in-flight gauge for every
// served request.
func Metrics(exporter *metrics.Exporter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			exporter.InFlight().Inc()
			defer exporter.InFlight().Dec()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rec, r)

			exporter.ObserveHTTP(r.URL.Path, r.Method, rec.status, time.Since(start))
		})
	}
}
