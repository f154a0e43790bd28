package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Handler serves the protected resource metadata and validates Bearer
// tokens on the MCP endpoint.
type Handler struct {
	config      *Config
	store       *Store
	rateLimiter *RateLimiter
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewHandler creates an OAuth handler for the given configuration.
func NewHandler(config *Config) (*Handler, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.Resource == "" {
		return nil, fmt.Errorf("resource (base URL) is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	h := &Handler{
		config:     config,
		store:      NewStore(logger),
		httpClient: httpClient,
		logger:     logger,
	}

	if config.RateLimit.Rate > 0 {
		h.rateLimiter = NewRateLimiter(config.RateLimit.Rate, config.RateLimit.Burst, config.RateLimit.TrustProxy)
	}

	return h, nil
}

// ServeProtectedResourceMetadata serves RFC 9728 metadata telling MCP
// clients that Google is the authorization server for this resource.
func (h *Handler) ServeProtectedResourceMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "invalid_request", "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	metadata := ProtectedResourceMetadata{
		Resource:               h.config.Resource,
		AuthorizationServers:   []string{googleAuthorizationServer},
		BearerMethodsSupported: []string{"header"},
		ScopesSupported:        h.config.SupportedScopes,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := json.NewEncoder(w).Encode(metadata); err != nil {
		h.logger.Error("failed to encode protected resource metadata", "error", err)
	}
}

// getUserInfoFromGoogle validates a token by calling Google's userinfo
// endpoint.
func (h *Handler) getUserInfoFromGoogle(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	endpoint := h.config.UserInfoEndpoint
	if endpoint == "" {
		endpoint = defaultUserInfoEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	var userInfo GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if userInfo.Email == "" {
		return nil, fmt.Errorf("userinfo response has no email")
	}

	return &userInfo, nil
}

// GetStore returns the token store, for wiring the token provider.
func (h *Handler) GetStore() *Store {
	return h.store
}

// GetConfig returns the handler configuration.
func (h *Handler) GetConfig() *Config {
	return h.config
}

// Stop shuts down the handler's background services.
func (h *Handler) Stop() {
	h.store.Stop()
}

// writeError writes an OAuth error response with the given status.
func (h *Handler) writeError(w http.ResponseWriter, errorCode, description string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:            errorCode,
		ErrorDescription: description,
	}); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}
