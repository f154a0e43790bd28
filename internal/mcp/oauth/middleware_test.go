package oauth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, rateLimit int) *Handler {
	t.Helper()

	userinfo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer valid-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(GoogleUserInfo{
			Sub:           "123",
			Email:         "jane@example.com",
			EmailVerified: true,
			Name:          "Jane",
		})
	}))
	t.Cleanup(userinfo.Close)

	h, err := NewHandler(&Config{
		Resource:         "http://localhost:8080",
		SupportedScopes:  []string{"https://www.googleapis.com/auth/adwords"},
		UserInfoEndpoint: userinfo.URL,
		RateLimit:        RateLimitConfig{Rate: rateLimit, Burst: rateLimit},
	})
	require.NoError(t, err)
	t.Cleanup(h.Stop)
	return h
}

func protectedEcho(t *testing.T, h *Handler) http.Handler {
	t.Helper()
	return h.ValidateGoogleToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUserFromContext(r.Context())
		require.True(t, ok)
		token, ok := GetGoogleTokenFromContext(r.Context())
		require.True(t, ok)
		w.Write([]byte(user.Email + " " + token.AccessToken))
	}))
}

func TestValidateGoogleToken_Valid(t *testing.T) {
	h := newTestHandler(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()

	protectedEcho(t, h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jane@example.com valid-token", rec.Body.String())

	// The token is now cached for the user.
	token, err := h.GetStore().GetGoogleToken(req.Context(), "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "valid-token", token.AccessToken)
}

func TestValidateGoogleToken_MissingHeader(t *testing.T) {
	h := newTestHandler(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	rec := httptest.NewRecorder()

	protectedEcho(t, h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "resource_metadata")

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "missing_token", errResp.Error)
}

func TestValidateGoogleToken_BadFormat(t *testing.T) {
	h := newTestHandler(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()

	protectedEcho(t, h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidateGoogleToken_InvalidToken(t *testing.T) {
	h := newTestHandler(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	rec := httptest.NewRecorder()

	protectedEcho(t, h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "invalid_token", errResp.Error)
	assert.Contains(t, errResp.ErrorDescription, "re-authenticate")
}

func TestServeProtectedResourceMetadata(t *testing.T) {
	h := newTestHandler(t, 0)

	req := httptest.NewRequest(http.MethodGet, protectedResourceWellKnown, nil)
	rec := httptest.NewRecorder()

	h.ServeProtectedResourceMetadata(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var metadata ProtectedResourceMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metadata))
	assert.Equal(t, "http://localhost:8080", metadata.Resource)
	assert.Equal(t, []string{googleAuthorizationServer}, metadata.AuthorizationServers)
	assert.Contains(t, metadata.ScopesSupported, "https://www.googleapis.com/auth/adwords")
}

func TestServeProtectedResourceMetadata_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, 0)

	req := httptest.NewRequest(http.MethodPost, protectedResourceWellKnown, nil)
	rec := httptest.NewRecorder()

	h.ServeProtectedResourceMetadata(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	h := newTestHandler(t, 2)

	handler := h.RateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Burst of 2 allows two requests, then the third is limited.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// A different IP has its own bucket.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.9")

	// Proxy headers ignored unless trusted.
	assert.Equal(t, "10.0.0.1", getClientIP(req, false))
	assert.Equal(t, "203.0.113.5", getClientIP(req, true))
}
