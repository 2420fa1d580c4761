package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/metrics"
)

// Metrics пишет латентность по шаблону маршрута, чтобы id не раздували метки.
func Metrics(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(sw, r)
			m.ObserveHTTP(r.Method, routeTemplate(r), sw.code(), time.Since(start))
		})
	}
}
