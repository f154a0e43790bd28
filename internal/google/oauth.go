package google

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/oauth2"
)

const cacheDirName = "google-ads-mcp"

// OOBRedirectURL is the out-of-band redirect for the copy/paste auth flow
// used by the MCP auth tools, where no local callback server is running.
const OOBRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// tokenFilePath returns the on-disk location of the cached token for the
// given account. The default account uses google_ads_token.json; named
// accounts get their own file so multiple logins can coexist.
func tokenFilePath(account string) string {
	name := "google_ads_token.json"
	if account != "" && account != "default" {
		name = fmt.Sprintf("google_ads_token-%s.json", account)
	}
	return filepath.Join(userCacheDir(), cacheDirName, name)
}

// HasTokenForAccount checks if a cached token file exists for the account.
func HasTokenForAccount(account string) bool {
	_, err := os.Stat(tokenFilePath(account))
	return err == nil
}

// GetAuthURL returns the consent URL for the installed-app flow. The
// redirect URL must point at the local callback server started by the
// caller.
func GetAuthURL(cs *ClientSecret, redirectURL, state string) string {
	conf := cs.OAuthConfig(DefaultOAuthScopes...)
	conf.RedirectURL = redirectURL
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// SaveAuthCode exchanges an authorization code for tokens and caches them
// for the account.
func SaveAuthCode(ctx context.Context, cs *ClientSecret, redirectURL, authCode, account string) error {
	conf := cs.OAuthConfig(DefaultOAuthScopes...)
	conf.RedirectURL = redirectURL

	token, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	creds := CredentialsFromToken(token, cs, DefaultOAuthScopes)
	if err := creds.Write(tokenFilePath(account)); err != nil {
		return err
	}

	return nil
}

// GetAuthURLForAccount returns the consent URL for the copy/paste flow used
// by the MCP auth tools. The client secret is loaded from
// GOOGLE_ADS_OAUTH_CONFIG_PATH.
func GetAuthURLForAccount(account string) (string, error) {
	cs, err := LoadClientSecret(os.Getenv("GOOGLE_ADS_OAUTH_CONFIG_PATH"))
	if err != nil {
		return "", err
	}
	return GetAuthURL(cs, OOBRedirectURL, "state-"+account), nil
}

// SaveAuthCodeForAccount completes the copy/paste flow by exchanging the
// pasted authorization code and caching the token for the account.
func SaveAuthCodeForAccount(ctx context.Context, account, authCode string) error {
	cs, err := LoadClientSecret(os.Getenv("GOOGLE_ADS_OAUTH_CONFIG_PATH"))
	if err != nil {
		return err
	}
	return SaveAuthCode(ctx, cs, OOBRedirectURL, authCode, account)
}

// GetAuthenticationErrorMessage returns the guidance shown when a tool is
// invoked for an account that has not completed authentication yet.
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf(`Google OAuth token not found for account %q. To authorize access:

1. Call the ads_get_auth_url tool to get the consent URL
2. Visit the URL in your browser and sign in with your Google account
3. Grant access to Google Ads
4. Copy the authorization code
5. Call the ads_save_auth_code tool with the code and account=%q

You only need to authorize once. Tokens are refreshed automatically.`, account, account)
}

// GetTokenSourceForAccount returns an auto-refreshing token source backed by
// the cached token file for the account.
func GetTokenSourceForAccount(ctx context.Context, cs *ClientSecret, account string) (oauth2.TokenSource, error) {
	creds, err := ReadCredentials(tokenFilePath(account))
	if err != nil {
		return nil, fmt.Errorf("no cached token for account %q; run the login command first: %w", account, err)
	}

	token := creds.OAuth2Token()
	// The persisted access token may have less than TokenExpiryMargin
	// left; blank it so the token source refreshes instead of serving it.
	if creds.ExpiredAt(timeNow()) {
		token.AccessToken = ""
	}

	conf := cs.OAuthConfig(DefaultOAuthScopes...)
	return conf.TokenSource(ctx, token), nil
}

// GetHTTPClientForAccount returns an HTTP client that authenticates requests
// with the account's cached token, refreshing it as needed.
func GetHTTPClientForAccount(ctx context.Context, cs *ClientSecret, account string) (*http.Client, error) {
	ts, err := GetTokenSourceForAccount(ctx, cs, account)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		panic("No Windows TEMP or TMP environment variables found")
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
