package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenProvider implements google.TokenProvider on top of the OAuth store,
// so Ads API clients created for HTTP sessions use the token the MCP
// client authenticated with.
type TokenProvider struct {
	store *Store
}

// NewTokenProvider creates a new OAuth-based token provider.
func NewTokenProvider(store *Store) *TokenProvider {
	return &TokenProvider{
		store: store,
	}
}

// GetTokenForAccount retrieves a Google OAuth token from the store. The
// authenticated user from the request context takes priority; the account
// name is the fallback lookup key.
func (p *TokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	if userInfo, ok := GetUserFromContext(ctx); ok && userInfo != nil && userInfo.Email != "" {
		if token, err := p.store.GetGoogleToken(ctx, userInfo.Email); err == nil {
			return token, nil
		}
	}

	token, err := p.store.GetGoogleToken(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no Google OAuth token found for account %s. Please authenticate with Google through your MCP client", account)
	}
	return token, nil
}

// HasTokenForAccount checks if a token exists in the store for the account.
// No request context is available here, so only the account key is checked.
func (p *TokenProvider) HasTokenForAccount(account string) bool {
	_, err := p.store.GetGoogleToken(context.Background(), account)
	return err == nil
}
