package google

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
)

// Default Google OAuth endpoints, used when the client-secret file does not
// carry its own URIs (the flat layout often omits them).
const (
	defaultAuthURI  = "https://accounts.google.com/o/oauth2/auth"
	defaultTokenURI = "https://oauth2.googleapis.com/token"
)

// ClientSecret holds the normalized OAuth client configuration loaded from a
// client-secret JSON file. Google issues these files in three layouts:
// wrapped in an "installed" object (desktop apps), wrapped in a "web" object
// (web apps), or flat. All three are accepted.
type ClientSecret struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	AuthURI      string `json:"auth_uri"`
	TokenURI     string `json:"token_uri"`
}

// clientSecretFile mirrors the on-disk layouts of a Google OAuth
// client-secret file.
type clientSecretFile struct {
	Installed *ClientSecret `json:"installed"`
	Web       *ClientSecret `json:"web"`

	// Flat layout fields
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	AuthURI      string `json:"auth_uri"`
	TokenURI     string `json:"token_uri"`
}

// LoadClientSecret reads and normalizes an OAuth client-secret JSON file.
func LoadClientSecret(path string) (*ClientSecret, error) {
	if path == "" {
		return nil, fmt.Errorf("client secret path is empty; set GOOGLE_ADS_OAUTH_CONFIG_PATH")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read client secret file %s: %w", path, err)
	}

	return ParseClientSecret(data)
}

// ParseClientSecret normalizes client-secret JSON from any of the three
// supported layouts (installed, web, flat).
func ParseClientSecret(data []byte) (*ClientSecret, error) {
	var file clientSecretFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse client secret JSON: %w", err)
	}

	var cs *ClientSecret
	switch {
	case file.Installed != nil:
		cs = file.Installed
	case file.Web != nil:
		cs = file.Web
	default:
		cs = &ClientSecret{
			ClientID:     file.ClientID,
			ClientSecret: file.ClientSecret,
			AuthURI:      file.AuthURI,
			TokenURI:     file.TokenURI,
		}
	}

	if cs.ClientID == "" || cs.ClientSecret == "" {
		return nil, fmt.Errorf("client_id/client_secret missing in client secret JSON")
	}

	if cs.AuthURI == "" {
		cs.AuthURI = defaultAuthURI
	}
	if cs.TokenURI == "" {
		cs.TokenURI = defaultTokenURI
	}

	return cs, nil
}

// OAuthConfig builds an oauth2.Config for the client with the given scopes.
// The redirect URL is left empty; callers set it per flow (local callback
// server for the installed-app flow, none for refresh-only usage).
func (cs *ClientSecret) OAuthConfig(scopes ...string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cs.ClientID,
		ClientSecret: cs.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cs.AuthURI,
			TokenURL: cs.TokenURI,
		},
		Scopes: scopes,
	}
}
