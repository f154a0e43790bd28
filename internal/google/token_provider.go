package google

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// Auth strategy names, selectable via GOOGLE_ADS_AUTH_STRATEGY or the
// --auth-strategy flag.
const (
	StrategyFile    = "file"
	StrategyRefresh = "refresh"
	StrategyRelay   = "relay"
)

// TokenProvider is an interface for providing OAuth tokens for Google Ads
// API calls. This abstraction allows different token sources (file-based,
// mounted secrets, hosted relay) to be swapped per deployment.
type TokenProvider interface {
	// GetTokenForAccount retrieves an OAuth token for the specified account
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount checks if a token exists for the specified account
	HasTokenForAccount(account string) bool
}

// TokenRefresher is implemented by providers that can force a refresh of
// the cached access token regardless of its remaining lifetime.
type TokenRefresher interface {
	RefreshToken(ctx context.Context, account string) (*oauth2.Token, error)
}

// FileTokenProvider provides tokens from per-account files cached by the
// installed-app login flow (for STDIO transport).
type FileTokenProvider struct {
	clientSecret *ClientSecret

	mu    sync.RWMutex
	cache map[string]*oauth2.Token
}

// NewFileTokenProvider creates a file-based token provider using the
// client-secret file at GOOGLE_ADS_OAUTH_CONFIG_PATH.
func NewFileTokenProvider() (*FileTokenProvider, error) {
	cs, err := LoadClientSecret(os.Getenv("GOOGLE_ADS_OAUTH_CONFIG_PATH"))
	if err != nil {
		return nil, err
	}
	return &FileTokenProvider{
		clientSecret: cs,
		cache:        make(map[string]*oauth2.Token),
	}, nil
}

// GetTokenForAccount retrieves a token from the account's cached file,
// refreshing it when fewer than five minutes remain.
func (p *FileTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	p.mu.RLock()
	cached := p.cache[account]
	p.mu.RUnlock()

	if tokenValid(cached, timeNow()) {
		return cached, nil
	}

	ts, err := GetTokenSourceForAccount(ctx, p.clientSecret, account)
	if err != nil {
		return nil, err
	}

	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to get token from file: %w", err)
	}

	p.mu.Lock()
	p.cache[account] = token
	p.mu.Unlock()

	// Persist the refreshed access token so restarts skip one refresh.
	creds := CredentialsFromToken(token, p.clientSecret, DefaultOAuthScopes)
	_ = creds.Write(tokenFilePath(account))

	return token, nil
}

// HasTokenForAccount checks if a token file exists for the account.
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	return HasTokenForAccount(account)
}

// RefreshToken drops the in-memory token and forces a refresh from the
// account's refresh token.
func (p *FileTokenProvider) RefreshToken(ctx context.Context, account string) (*oauth2.Token, error) {
	p.mu.Lock()
	delete(p.cache, account)
	p.mu.Unlock()

	creds, err := ReadCredentials(tokenFilePath(account))
	if err != nil {
		return nil, err
	}

	conf := p.clientSecret.OAuthConfig(DefaultOAuthScopes...)
	stale := creds.OAuth2Token()
	stale.AccessToken = ""

	token, err := conf.TokenSource(ctx, stale).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	p.mu.Lock()
	p.cache[account] = token
	p.mu.Unlock()

	refreshed := CredentialsFromToken(token, p.clientSecret, DefaultOAuthScopes)
	_ = refreshed.Write(tokenFilePath(account))

	return token, nil
}

// ChainTokenProvider tries a sequence of providers in order. The HTTP
// transport chains the OAuth session provider in front of the configured
// strategy, so authenticated users get their own tokens while server-held
// credentials (mounted secret, relay) stay reachable.
type ChainTokenProvider struct {
	providers []TokenProvider
}

// NewChainTokenProvider creates a chain over the given providers. Nil
// entries are skipped.
func NewChainTokenProvider(providers ...TokenProvider) *ChainTokenProvider {
	chain := make([]TokenProvider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			chain = append(chain, p)
		}
	}
	return &ChainTokenProvider{providers: chain}
}

// GetTokenForAccount returns the token from the first provider that can
// produce one.
func (c *ChainTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	var lastErr error
	for _, p := range c.providers {
		token, err := p.GetTokenForAccount(ctx, account)
		if err == nil {
			return token, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no token providers configured")
	}
	return nil, lastErr
}

// HasTokenForAccount reports whether any provider in the chain has a token
// for the account.
func (c *ChainTokenProvider) HasTokenForAccount(account string) bool {
	for _, p := range c.providers {
		if p.HasTokenForAccount(account) {
			return true
		}
	}
	return false
}

// RefreshToken forwards to the first provider in the chain that supports
// refresh and succeeds.
func (c *ChainTokenProvider) RefreshToken(ctx context.Context, account string) (*oauth2.Token, error) {
	var lastErr error
	for _, p := range c.providers {
		refresher, ok := p.(TokenRefresher)
		if !ok {
			continue
		}
		token, err := refresher.RefreshToken(ctx, account)
		if err == nil {
			return token, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no provider in the chain supports refresh")
	}
	return nil, lastErr
}

// RelayProvider unwraps the relay provider from p, looking inside a chain.
// It returns nil when no relay strategy is configured.
func RelayProvider(p TokenProvider) *RelayTokenProvider {
	switch v := p.(type) {
	case *RelayTokenProvider:
		return v
	case *ChainTokenProvider:
		for _, inner := range v.providers {
			if r := RelayProvider(inner); r != nil {
				return r
			}
		}
	}
	return nil
}

// NewProviderForStrategy builds the token provider for the named strategy.
// An empty strategy falls back to GOOGLE_ADS_AUTH_STRATEGY, then to
// inference from the environment: a relay URL selects the relay strategy, a
// mounted token path selects refresh, otherwise the file strategy is used.
func NewProviderForStrategy(strategy string) (TokenProvider, error) {
	if strategy == "" {
		strategy = os.Getenv("GOOGLE_ADS_AUTH_STRATEGY")
	}
	if strategy == "" {
		switch {
		case os.Getenv("GOOGLE_ADS_AUTH_RELAY_URL") != "":
			strategy = StrategyRelay
		case os.Getenv("GOOGLE_ADS_TOKEN_PATH") != "":
			strategy = StrategyRefresh
		default:
			strategy = StrategyFile
		}
	}

	switch strategy {
	case StrategyFile:
		return NewFileTokenProvider()
	case StrategyRefresh:
		return NewRefreshTokenProvider()
	case StrategyRelay:
		return NewRelayTokenProvider()
	default:
		return nil, fmt.Errorf("unknown auth strategy %q (want %s, %s or %s)",
			strategy, StrategyFile, StrategyRefresh, StrategyRelay)
	}
}

// timeNow is swapped in tests.
var timeNow = time.Now
