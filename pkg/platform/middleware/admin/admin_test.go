package admin

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireAdminToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	cases := []struct {
		name     string
		expected string
		header   string
		status   int
	}{
		{"matching token", "secret", "secret", http.StatusNoContent},
		{"wrong token", "secret", "nope", http.StatusUnauthorized},
		{"missing token", "secret", "", http.StatusUnauthorized},
		{"unconfigured token", "", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/roster", nil)
			if tc.header != "" {
				req.Header.Set(HeaderAdminToken, tc.header)
			}
			w := httptest.NewRecorder()
			RequireAdminToken(tc.expected, logger)(ok).ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}
