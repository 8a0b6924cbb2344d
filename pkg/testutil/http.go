// Package testutil provides shared helpers for handler and integration tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medledger/internal/walletauth"
	"medledger/pkg/domain"
)

// Sessions signs and validates tokens in handler tests.
var Sessions = walletauth.NewJWTService("test-signing-key", "medledger-test", "medledger-test")

// NewJSONRequest builds a request whose body is body marshaled to JSON.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func NewRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

// AsWallet attaches a bearer session for wallet, as a signed-in client would.
func AsWallet(t *testing.T, req *http.Request, wallet domain.WalletAddress) *http.Request {
	t.Helper()
	token, err := Sessions.IssueToken(wallet, time.Hour)
	require.NoError(t, err, "failed to issue session token")
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// DoRequest serves req and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// UnmarshalResponse decodes the response body into T.
func UnmarshalResponse[T any](t *testing.T, rr *httptest.ResponseRecorder) *T {
	t.Helper()
	var result T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result), "failed to unmarshal response: %s", rr.Body.String())
	return &result
}

// AssertStatusAndError checks the status and the "error" field of the
// error envelope.
func AssertStatusAndError(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus int, expectedCode string) {
	t.Helper()
	assert.Equal(t, expectedStatus, rr.Code, "unexpected status code: %s", rr.Body.String())
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "failed to unmarshal error response")
	assert.Equal(t, expectedCode, body["error"], "unexpected error code")
}
