package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ptmyrd/google-ads-mcp-server/internal/ads"
	"github.com/ptmyrd/google-ads-mcp-server/internal/google"
	"github.com/ptmyrd/google-ads-mcp-server/internal/instrumentation"
	"github.com/ptmyrd/google-ads-mcp-server/internal/logging"
)

// ServerContext holds the shared state for the MCP server
type ServerContext struct {
	ctx        context.Context
	cancel     context.CancelFunc
	adsConfig  *ads.Config
	provider   google.TokenProvider
	adsClients map[string]*ads.Client // Maps account name to Ads client
	logger     *slog.Logger

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context with the given Ads API
// configuration and token provider. A default-account client is created
// eagerly when a token is already available; everything else is lazy.
func NewServerContext(ctx context.Context, adsConfig *ads.Config, provider google.TokenProvider, logger *slog.Logger) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	if logger == nil {
		logger = slog.Default()
	}

	adsClients := make(map[string]*ads.Client)
	if provider.HasTokenForAccount("default") {
		adsClients["default"] = ads.NewClientForAccount(adsConfig, provider, "default")
	}

	return &ServerContext{
		ctx:        shutdownCtx,
		cancel:     cancel,
		adsConfig:  adsConfig,
		provider:   provider,
		adsClients: adsClients,
		logger:     logger,
		shutdown:   false,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Logger returns the server logger
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// AdsConfig returns the Google Ads API configuration
func (sc *ServerContext) AdsConfig() *ads.Config {
	return sc.adsConfig
}

// TokenProvider returns the token provider in use
func (sc *ServerContext) TokenProvider() google.TokenProvider {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.provider
}

// SetTokenProvider replaces the token provider and drops cached clients so
// they are rebuilt against the new provider.
func (sc *ServerContext) SetTokenProvider(provider google.TokenProvider) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.provider = provider
	sc.adsClients = make(map[string]*ads.Client)
}

// AdsClientForAccount returns the Ads client for a specific account.
// Creates and caches the client if it doesn't exist yet.
// Returns nil if the account has no token.
func (sc *ServerContext) AdsClientForAccount(account string) *ads.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.adsClients[account]; ok {
		return client
	}

	if !sc.provider.HasTokenForAccount(account) {
		sc.logger.Debug("no token for account, ads client unavailable", logging.Account(account))
		return nil
	}

	client := ads.NewClientForAccount(sc.adsConfig, sc.provider, account)
	sc.adsClients[account] = client
	return client
}

// AdsClient returns the Ads client for the default account
func (sc *ServerContext) AdsClient() *ads.Client {
	return sc.AdsClientForAccount("default")
}

// SetAdsClientForAccount sets the Ads client for a specific account
func (sc *ServerContext) SetAdsClientForAccount(account string, client *ads.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.adsClients[account] = client
}

// Metrics returns the instrumentation metrics, or nil when not configured
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the instrumentation metrics
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// AuditLogger returns the audit logger, or nil when not configured
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger
func (sc *ServerContext) SetAuditLogger(l *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = l
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
