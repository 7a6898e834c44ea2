package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrustProxyHeaders(t *testing.T) {
	var seenRemoteAddr string
	inner := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seenRemoteAddr = r.RemoteAddr
	})
	handler := TrustProxyHeaders()(inner)

	req, err := http.NewRequest("GET", "/", nil)
	require.NoError(t, err)
	req.RemoteAddr = "10.0.0.1:4321"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.7", seenRemoteAddr)
}

func TestTrustProxyHeaders_NoHeader(t *testing.T) {
	var seenRemoteAddr string
	inner := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seenRemoteAddr = r.RemoteAddr
	})
	handler := TrustProxyHeaders()(inner)

	req, err := http.NewRequest("GET", "/", nil)
	require.NoError(t, err)
	req.RemoteAddr = "10.0.0.1:4321"

	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "10.0.0.1:4321", seenRemoteAddr)
}
