package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medledger/internal/walletauth"
	"medledger/pkg/domain"
	"medledger/pkg/requestcontext"
)

func TestRequireWallet(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := walletauth.NewJWTService("k", "medledger", "medledger-api")
	wallet := domain.WalletAddress("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")

	var seen domain.WalletAddress
	h := RequireWallet(svc, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.Wallet(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("valid token places wallet on context", func(t *testing.T) {
		token, err := svc.IssueToken(wallet, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, wallet, seen)
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid or expired token")
	})
}
