package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	request "medledger/pkg/platform/middleware/request"
)

const HeaderAdminToken = "X-Admin-Token"

// RequireAdminToken guards roster administration. An empty expected token
// rejects every request so an unconfigured deployment is closed.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderAdminToken)
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				requestID := request.GetRequestID(ctx)
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestID,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin token required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
