package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ptmyrd/google-ads-mcp-server/internal/google"
	"github.com/ptmyrd/google-ads-mcp-server/internal/mcp/oauth"
)

// OAuthHTTPServer wraps the MCP server with OAuth 2.1 authentication.
// It implements RFC 9728 Protected Resource Metadata so MCP clients
// discover Google as the authorization server, and validates Bearer
// tokens on the MCP endpoint.
type OAuthHTTPServer struct {
	mcpServer     *mcpserver.MCPServer
	oauthHandler  *oauth.Handler
	healthChecker *HealthChecker
	httpServer    *http.Server
}

// NewOAuthHTTPServer creates a new OAuth-enabled HTTP server for MCP.
// Tokens validated on incoming requests are cached in the handler's store
// and wired into the server context as a token provider, so Ads API calls
// run with the credentials of the authenticated MCP session.
func NewOAuthHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext, baseURL string) (*OAuthHTTPServer, error) {
	oauthConfig := &oauth.Config{
		Resource: baseURL,
		SupportedScopes: []string{
			"https://www.googleapis.com/auth/adwords",
			"https://www.googleapis.com/auth/userinfo.email",
		},
		RateLimit: oauth.RateLimitConfig{
			Rate:  10, // requests per second per IP
			Burst: 20,
		},
	}
	if sc != nil {
		oauthConfig.Logger = sc.Logger()
	}

	oauthHandler, err := oauth.NewHandler(oauthConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth handler: %w", err)
	}

	if sc != nil {
		// Session tokens win for authenticated users; the configured
		// strategy stays reachable for server-held credentials.
		sc.SetTokenProvider(google.NewChainTokenProvider(
			oauth.NewTokenProvider(oauthHandler.GetStore()),
			sc.TokenProvider(),
		))
	}

	s := &OAuthHTTPServer{
		mcpServer:    mcpServer,
		oauthHandler: oauthHandler,
	}
	if sc != nil {
		s.healthChecker = NewHealthChecker(sc)
	}
	return s, nil
}

// Handler builds the HTTP handler with the OAuth endpoints and the
// protected MCP endpoint registered.
func (s *OAuthHTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// Protected Resource Metadata endpoint (RFC 9728). This tells MCP
	// clients where to find the authorization server (Google).
	metadataHandler := http.HandlerFunc(s.oauthHandler.ServeProtectedResourceMetadata)
	mux.Handle("/.well-known/oauth-protected-resource", s.oauthHandler.RateLimitMiddleware(metadataHandler))

	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer,
		mcpserver.WithEndpointPath("/mcp"),
	)
	mux.Handle("/mcp", s.oauthHandler.RateLimitMiddleware(
		s.oauthHandler.ValidateGoogleToken(streamable)))

	if s.healthChecker != nil {
		s.healthChecker.RegisterHealthEndpoints(mux)
	}

	return mux
}

// Start starts the OAuth-enabled HTTP server. It blocks until the server
// stops.
func (s *OAuthHTTPServer) Start(addr string) error {
	// OAuth 2.1 requires HTTPS; localhost may use HTTP for development.
	baseURL := s.oauthHandler.GetConfig().Resource
	if err := validateHTTPSRequirement(baseURL); err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *OAuthHTTPServer) Shutdown(ctx context.Context) error {
	s.oauthHandler.Stop()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// GetOAuthHandler returns the OAuth handler for testing or direct access.
func (s *OAuthHTTPServer) GetOAuthHandler() *oauth.Handler {
	return s.oauthHandler
}

// validateHTTPSRequirement ensures OAuth 2.1 HTTPS compliance.
// Allows HTTP only for loopback addresses (localhost, 127.0.0.1, ::1).
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	if u.Scheme == "http" {
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("OAuth 2.1 requires HTTPS for production (got: %s). Use HTTPS or localhost for development", baseURL)
		}
	} else if u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s. Must be http (localhost only) or https", u.Scheme)
	}

	return nil
}
