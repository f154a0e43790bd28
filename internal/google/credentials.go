package google

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
)

// TokenExpiryMargin is how much remaining lifetime a token must have to be
// considered valid. Tokens with less than this margin are refreshed before
// use so they cannot expire mid-request.
const TokenExpiryMargin = 5 * time.Minute

// Credentials is the persisted token record (google_ads_token.json layout).
// It carries everything needed to rebuild an oauth2 token source without
// re-running the consent flow.
type Credentials struct {
	RefreshToken string   `json:"refresh_token"`
	TokenURI     string   `json:"token_uri,omitempty"`
	ClientID     string   `json:"client_id,omitempty"`
	ClientSecret string   `json:"client_secret,omitempty"`
	Scopes       []string `json:"scopes,omitempty"`
	Token        string   `json:"token,omitempty"`
	Expiry       string   `json:"expiry,omitempty"`
}

// ReadCredentials loads a persisted credentials file.
func ReadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", path, err)
	}
	return &creds, nil
}

// Write persists the credentials to path with owner-only permissions,
// creating parent directories as needed.
func (c *Credentials) Write(path string) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create credentials directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file %s: %w", path, err)
	}
	return nil
}

// ExpiryTime parses the stored expiry timestamp. The zero time is returned
// when no expiry is recorded.
func (c *Credentials) ExpiryTime() time.Time {
	if c.Expiry == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, c.Expiry)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ExpiredAt reports whether the access token is expired at the given
// instant. A token with no recorded expiry, or with fewer than
// TokenExpiryMargin remaining, counts as expired.
func (c *Credentials) ExpiredAt(now time.Time) bool {
	if c.Token == "" {
		return true
	}
	expiry := c.ExpiryTime()
	if expiry.IsZero() {
		return true
	}
	return now.Add(TokenExpiryMargin).After(expiry)
}

// Expired reports whether the access token is expired now.
func (c *Credentials) Expired() bool {
	return c.ExpiredAt(time.Now())
}

// OAuth2Token converts the persisted record to an oauth2.Token.
func (c *Credentials) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.Token,
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       c.ExpiryTime(),
	}
}

// CredentialsFromToken builds a persistable record from an oauth2 token and
// the client configuration it was issued against.
func CredentialsFromToken(token *oauth2.Token, cs *ClientSecret, scopes []string) *Credentials {
	creds := &Credentials{
		RefreshToken: token.RefreshToken,
		Scopes:       scopes,
		Token:        token.AccessToken,
	}
	if cs != nil {
		creds.TokenURI = cs.TokenURI
		creds.ClientID = cs.ClientID
		creds.ClientSecret = cs.ClientSecret
	}
	if !token.Expiry.IsZero() {
		creds.Expiry = token.Expiry.UTC().Format(time.RFC3339)
	}
	return creds
}

// tokenValid reports whether an oauth2 token still has at least
// TokenExpiryMargin of lifetime left.
func tokenValid(token *oauth2.Token, now time.Time) bool {
	if token == nil || token.AccessToken == "" {
		return false
	}
	if token.Expiry.IsZero() {
		// No expiry recorded; trust the token (matches oauth2 semantics).
		return true
	}
	return now.Add(TokenExpiryMargin).Before(token.Expiry)
}
