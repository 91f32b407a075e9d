package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"docpdf/internal/utils"
)

// PrometheusMiddleware records request metrics for every route it wraps.
type PrometheusMiddleware struct{}

func NewPrometheusMiddleware() *PrometheusMiddleware {
	return &PrometheusMiddleware{}
}

// Instrument is the HTTP middleware function. The route template is used as
// the path label so ids do not explode label cardinality.
func (m *PrometheusMiddleware) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw := &loggingResponseWriter{ResponseWriter: w}
		next.ServeHTTP(lrw, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if template, err := route.GetPathTemplate(); err == nil {
				path = template
			}
		}
		statusCode := strconv.Itoa(lrw.statusCode)

		utils.HTTPRequestsTotal.WithLabelValues(r.Method, path, statusCode).Inc()
		utils.HTTPRequestDurationSeconds.WithLabelValues(r.Method, path, statusCode).Observe(time.Since(start).Seconds())
	})
}

// loggingResponseWriter captures the status code written downstream.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(data []byte) (int, error) {
	if lrw.statusCode == 0 {
		lrw.statusCode = http.StatusOK
	}
	return lrw.ResponseWriter.Write(data)
}
