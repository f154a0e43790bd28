package google

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2"
)

// RefreshTokenProvider serves tokens from secrets mounted as files, the
// deployment mode used on Cloud Run and similar platforms. A client-secret
// JSON (GOOGLE_ADS_OAUTH_CONFIG_PATH) and a refresh-token JSON
// (GOOGLE_ADS_TOKEN_PATH) are mounted read-only; refreshed access tokens
// are persisted best-effort to GOOGLE_ADS_TOKEN_SAVE_PATH since the
// mounted secret itself is not writable.
type RefreshTokenProvider struct {
	clientSecret *ClientSecret
	tokenPath    string
	savePath     string

	mu    sync.Mutex
	token *oauth2.Token
}

// NewRefreshTokenProvider creates a provider from the mounted secret paths.
func NewRefreshTokenProvider() (*RefreshTokenProvider, error) {
	cs, err := LoadClientSecret(os.Getenv("GOOGLE_ADS_OAUTH_CONFIG_PATH"))
	if err != nil {
		return nil, err
	}

	tokenPath := os.Getenv("GOOGLE_ADS_TOKEN_PATH")
	if tokenPath == "" {
		return nil, fmt.Errorf("token path is empty; set GOOGLE_ADS_TOKEN_PATH")
	}

	savePath := os.Getenv("GOOGLE_ADS_TOKEN_SAVE_PATH")
	if savePath == "" {
		savePath = tokenPath
	}

	return &RefreshTokenProvider{
		clientSecret: cs,
		tokenPath:    tokenPath,
		savePath:     savePath,
	}, nil
}

// GetTokenForAccount returns a valid access token, refreshing from the
// mounted refresh token when fewer than five minutes remain. The account is
// ignored; a mounted secret carries exactly one identity.
func (p *RefreshTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if tokenValid(p.token, timeNow()) {
		return p.token, nil
	}

	return p.refreshLocked(ctx)
}

// HasTokenForAccount checks if the mounted token file is present.
func (p *RefreshTokenProvider) HasTokenForAccount(account string) bool {
	_, err := os.Stat(p.tokenPath)
	return err == nil
}

// RefreshToken forces a refresh regardless of the cached token's lifetime.
func (p *RefreshTokenProvider) RefreshToken(ctx context.Context, account string) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.token = nil
	return p.refreshLocked(ctx)
}

func (p *RefreshTokenProvider) refreshLocked(ctx context.Context) (*oauth2.Token, error) {
	creds, err := ReadCredentials(p.tokenPath)
	if err != nil {
		return nil, err
	}
	if creds.RefreshToken == "" {
		return nil, fmt.Errorf("mounted token file %s has no refresh_token", p.tokenPath)
	}

	cs := p.clientSecret
	// The token file may carry its own client identity; prefer it so a
	// rotated client secret does not strand existing refresh tokens.
	if creds.ClientID != "" && creds.ClientSecret != "" {
		cs = &ClientSecret{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			AuthURI:      p.clientSecret.AuthURI,
			TokenURI:     p.clientSecret.TokenURI,
		}
		if creds.TokenURI != "" {
			cs.TokenURI = creds.TokenURI
		}
	}

	conf := cs.OAuthConfig(DefaultOAuthScopes...)
	stale := creds.OAuth2Token()
	stale.AccessToken = ""

	token, err := conf.TokenSource(ctx, stale).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh mounted token: %w", err)
	}

	p.token = token

	// Best effort: the save path may be read-only or absent in some
	// deployments, so persistence failures are not fatal.
	refreshed := CredentialsFromToken(token, cs, creds.Scopes)
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = creds.RefreshToken
	}
	_ = refreshed.Write(p.savePath)

	return token, nil
}
