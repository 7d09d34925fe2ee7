package middleware

import (
	"net/http"

	"github.com/mbracken/njord/internal/domain"
	"github.com/mbracken/njord/internal/telemetry"
)

// Recovery turns panics into 500 responses. Panics are reported to Sentry
// when telemetry is enabled.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.CapturePanic(rec)
				GetLogger(r.Context()).Error("panic recovered",
					"error", rec,
					"path", r.URL.Path,
					"method", r.Method,
				)
				respondWithError(w, r, domain.Errorf(domain.EINTERNAL, "", "Internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
