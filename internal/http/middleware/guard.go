package middleware

import (
	"net/http"
	"strconv"

	"hireflow/internal/guard"
	"hireflow/internal/http/metrics"
	"hireflow/internal/http/response"
)

// RetryAfterSeconds is advertised while the session is still resolving.
const RetryAfterSeconds = 1

// Guard renders the view only when gate authorizes it. While the session
// resolves it answers 503 with a loading body and no redirect. An
// unauthorized request gets a 303 to the gate's redirect with an empty body.
func Guard(gate *guard.Gate, collector *metrics.Collector) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := gate.Decision()
			switch decision.Phase {
			case guard.Authorized:
				next.ServeHTTP(w, r.WithContext(guard.WithDecision(r.Context(), decision)))
			case guard.Unauthorized:
				if collector != nil {
					collector.IncRedirects()
				}
				w.Header().Set("Location", decision.Redirect)
				w.WriteHeader(http.StatusSeeOther)
			default:
				if collector != nil {
					collector.IncLoading()
				}
				w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
				response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
			}
		})
	}
}
