package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"medledger/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "1.1.1.1:80", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": " 10.0.0.9 "}, "1.1.1.1:80", "10.0.0.9"},
		{"remote ipv4", nil, "192.168.1.4:5555", "192.168.1.4"},
		{"remote ipv6", nil, "[::1]:5555", "::1"},
		{"no port", nil, "host", "host"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, ClientIPFromRequest(req))
		})
	}
}

func TestClientMetadata(t *testing.T) {
	var ip, ua string
	h := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		ua = requestcontext.UserAgent(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:9999"
	req.Header.Set("User-Agent", "curl/8.0")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "10.1.2.3", ip)
	assert.Equal(t, "curl/8.0", ua)
}
