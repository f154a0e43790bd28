package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func writeTestClientSecret(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client_secret.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"installed":{"client_id":"id-1","client_secret":"secret-1"}}`), 0600))
	return path
}

func TestNewProviderForStrategy_Explicit(t *testing.T) {
	t.Setenv("GOOGLE_ADS_OAUTH_CONFIG_PATH", writeTestClientSecret(t))
	t.Setenv("GOOGLE_ADS_TOKEN_PATH", filepath.Join(t.TempDir(), "token.json"))
	t.Setenv("GOOGLE_ADS_AUTH_RELAY_URL", "https://relay.example.com")

	p, err := NewProviderForStrategy(StrategyFile)
	require.NoError(t, err)
	assert.IsType(t, &FileTokenProvider{}, p)

	p, err = NewProviderForStrategy(StrategyRefresh)
	require.NoError(t, err)
	assert.IsType(t, &RefreshTokenProvider{}, p)

	p, err = NewProviderForStrategy(StrategyRelay)
	require.NoError(t, err)
	assert.IsType(t, &RelayTokenProvider{}, p)

	_, err = NewProviderForStrategy("bogus")
	assert.Error(t, err)
}

func TestNewProviderForStrategy_EnvInference(t *testing.T) {
	t.Setenv("GOOGLE_ADS_OAUTH_CONFIG_PATH", writeTestClientSecret(t))
	t.Setenv("GOOGLE_ADS_AUTH_STRATEGY", "")
	t.Setenv("GOOGLE_ADS_TOKEN_PATH", "")
	t.Setenv("GOOGLE_ADS_AUTH_RELAY_URL", "")

	// Nothing set: installed-app files are the default.
	p, err := NewProviderForStrategy("")
	require.NoError(t, err)
	assert.IsType(t, &FileTokenProvider{}, p)

	// A mounted token path selects the refresh strategy.
	t.Setenv("GOOGLE_ADS_TOKEN_PATH", filepath.Join(t.TempDir(), "token.json"))
	p, err = NewProviderForStrategy("")
	require.NoError(t, err)
	assert.IsType(t, &RefreshTokenProvider{}, p)

	// A relay URL wins over the token path.
	t.Setenv("GOOGLE_ADS_AUTH_RELAY_URL", "https://relay.example.com")
	p, err = NewProviderForStrategy("")
	require.NoError(t, err)
	assert.IsType(t, &RelayTokenProvider{}, p)

	// GOOGLE_ADS_AUTH_STRATEGY overrides inference.
	t.Setenv("GOOGLE_ADS_AUTH_STRATEGY", StrategyFile)
	p, err = NewProviderForStrategy("")
	require.NoError(t, err)
	assert.IsType(t, &FileTokenProvider{}, p)
}

func TestFileTokenProvider_HasTokenForAccount(t *testing.T) {
	t.Setenv("GOOGLE_ADS_OAUTH_CONFIG_PATH", writeTestClientSecret(t))
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	p, err := NewFileTokenProvider()
	require.NoError(t, err)
	assert.False(t, p.HasTokenForAccount("default"))

	creds := &Credentials{RefreshToken: "refresh-1"}
	require.NoError(t, creds.Write(tokenFilePath("default")))
	assert.True(t, p.HasTokenForAccount("default"))
	assert.False(t, p.HasTokenForAccount("work"))
}

// fileProviderWithCachedToken sets up a file provider whose client secret
// points at a fake token endpoint and whose token file expires at the given
// instant.
func fileProviderWithCachedToken(t *testing.T, expiry time.Time) (*FileTokenProvider, *int) {
	t.Helper()

	refreshes := new(int)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*refreshes++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"fresh-token","token_type":"Bearer","expires_in":3600,"refresh_token":"refresh-1"}`)
	}))
	t.Cleanup(srv.Close)

	secretPath := filepath.Join(t.TempDir(), "client_secret.json")
	secret := fmt.Sprintf(`{"installed":{"client_id":"id-1","client_secret":"secret-1","token_uri":%q}}`, srv.URL)
	require.NoError(t, os.WriteFile(secretPath, []byte(secret), 0600))
	t.Setenv("GOOGLE_ADS_OAUTH_CONFIG_PATH", secretPath)
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	creds := &Credentials{
		RefreshToken: "refresh-1",
		Token:        "cached-token",
		Expiry:       expiry.UTC().Format(time.RFC3339),
	}
	require.NoError(t, creds.Write(tokenFilePath("default")))

	p, err := NewFileTokenProvider()
	require.NoError(t, err)
	return p, refreshes
}

func TestFileTokenProvider_RefreshesWithinExpiryMargin(t *testing.T) {
	// Three minutes left is inside the five-minute margin; the cached
	// access token must not be served.
	p, refreshes := fileProviderWithCachedToken(t, time.Now().Add(3*time.Minute))

	token, err := p.GetTokenForAccount(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token.AccessToken)
	assert.Equal(t, 1, *refreshes)
}

func TestFileTokenProvider_ServesCachedTokenOutsideMargin(t *testing.T) {
	p, refreshes := fileProviderWithCachedToken(t, time.Now().Add(time.Hour))

	token, err := p.GetTokenForAccount(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, "cached-token", token.AccessToken)
	assert.Equal(t, 0, *refreshes)
}

type staticProvider struct {
	token *oauth2.Token
	err   error
}

func (p staticProvider) GetTokenForAccount(context.Context, string) (*oauth2.Token, error) {
	return p.token, p.err
}

func (p staticProvider) HasTokenForAccount(string) bool { return p.token != nil }

type staticRefresher struct {
	staticProvider
}

func (p staticRefresher) RefreshToken(context.Context, string) (*oauth2.Token, error) {
	return p.token, p.err
}

func TestChainTokenProvider_FallsBack(t *testing.T) {
	fallback := &oauth2.Token{AccessToken: "fallback-token"}
	chain := NewChainTokenProvider(
		staticProvider{err: errors.New("no session")},
		nil,
		staticProvider{token: fallback},
	)

	assert.True(t, chain.HasTokenForAccount("default"))

	token, err := chain.GetTokenForAccount(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, "fallback-token", token.AccessToken)
}

func TestChainTokenProvider_FirstProviderWins(t *testing.T) {
	chain := NewChainTokenProvider(
		staticProvider{token: &oauth2.Token{AccessToken: "session-token"}},
		staticProvider{token: &oauth2.Token{AccessToken: "fallback-token"}},
	)

	token, err := chain.GetTokenForAccount(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, "session-token", token.AccessToken)
}

func TestChainTokenProvider_AllFail(t *testing.T) {
	chain := NewChainTokenProvider(
		staticProvider{err: errors.New("no session")},
		staticProvider{err: errors.New("no mounted token")},
	)

	assert.False(t, chain.HasTokenForAccount("default"))

	_, err := chain.GetTokenForAccount(context.Background(), "default")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no mounted token")
}

func TestChainTokenProvider_RefreshSkipsNonRefreshers(t *testing.T) {
	refreshed := &oauth2.Token{AccessToken: "refreshed-token"}
	chain := NewChainTokenProvider(
		staticProvider{token: &oauth2.Token{AccessToken: "session-token"}},
		staticRefresher{staticProvider{token: refreshed}},
	)

	token, err := chain.RefreshToken(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, "refreshed-token", token.AccessToken)

	noRefresh := NewChainTokenProvider(staticProvider{})
	_, err = noRefresh.RefreshToken(context.Background(), "default")
	assert.Error(t, err)
}

func TestRelayProvider_UnwrapsChain(t *testing.T) {
	relay := NewRelayTokenProviderWithURL("https://relay.example.com")

	assert.Equal(t, relay, RelayProvider(relay))
	assert.Equal(t, relay, RelayProvider(NewChainTokenProvider(staticProvider{}, relay)))
	assert.Nil(t, RelayProvider(staticProvider{}))
	assert.Nil(t, RelayProvider(NewChainTokenProvider(staticProvider{})))
}

func TestTokenFilePath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache")

	assert.Equal(t, "/tmp/cache/google-ads-mcp/google_ads_token.json", tokenFilePath(""))
	assert.Equal(t, "/tmp/cache/google-ads-mcp/google_ads_token.json", tokenFilePath("default"))
	assert.Equal(t, "/tmp/cache/google-ads-mcp/google_ads_token-work.json", tokenFilePath("work"))
}
