package oauth

import (
	"log/slog"
	"net/http"
)

// Google's authorization server and userinfo endpoints.
const (
	googleAuthorizationServer  = "https://accounts.google.com"
	defaultUserInfoEndpoint    = "https://www.googleapis.com/oauth2/v2/userinfo"
	protectedResourceWellKnown = "/.well-known/oauth-protected-resource"
)

// Config holds the OAuth handler configuration.
type Config struct {
	// Resource is the MCP server resource identifier for RFC 8707.
	// This should be the base URL of the MCP server.
	Resource string

	// SupportedScopes are the Google scopes this resource understands.
	SupportedScopes []string

	// RateLimit configures per-IP rate limiting for the OAuth endpoints
	// and the MCP endpoint behind the middleware.
	RateLimit RateLimitConfig

	// UserInfoEndpoint overrides Google's userinfo endpoint, for tests.
	UserInfoEndpoint string

	// Logger for structured logging (optional, uses default if not provided)
	Logger *slog.Logger

	// HTTPClient is a custom HTTP client for token validation requests.
	// If not provided, a default client with a timeout is used.
	HTTPClient *http.Client
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	// Rate is the number of requests per second allowed per IP (0 = no limit)
	Rate int

	// Burst is the maximum burst size allowed per IP
	Burst int

	// TrustProxy indicates whether to trust X-Forwarded-For and X-Real-IP
	// headers. Only set behind a trusted proxy.
	TrustProxy bool
}
