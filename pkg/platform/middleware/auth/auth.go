package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"medledger/internal/walletauth"
	request "medledger/pkg/platform/middleware/request"
	"medledger/pkg/requestcontext"
)

// SessionValidator validates a bearer token and returns the wallet session.
type SessionValidator interface {
	ValidateSession(tokenString string) (*walletauth.Session, error)
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireWallet rejects requests without a valid session and places the
// caller's wallet on the context.
func RequireWallet(validator SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			session, err := validator.ValidateSession(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithWallet(ctx, session.Wallet)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
