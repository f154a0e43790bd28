package google

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestCredentials_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "google_ads_token.json")

	creds := &Credentials{
		RefreshToken: "refresh-1",
		TokenURI:     "https://oauth2.googleapis.com/token",
		ClientID:     "id-1",
		ClientSecret: "secret-1",
		Scopes:       []string{ScopeAdWords},
		Token:        "access-1",
		Expiry:       "2026-01-02T15:04:05Z",
	}
	require.NoError(t, creds.Write(path))

	got, err := ReadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, creds, got)
}

func TestReadCredentials_Missing(t *testing.T) {
	_, err := ReadCredentials(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestCredentials_ExpiredAt(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		creds   Credentials
		expired bool
	}{
		{
			name:    "plenty of lifetime left",
			creds:   Credentials{Token: "a", Expiry: now.Add(time.Hour).Format(time.RFC3339)},
			expired: false,
		},
		{
			name:    "inside the five minute margin",
			creds:   Credentials{Token: "a", Expiry: now.Add(4 * time.Minute).Format(time.RFC3339)},
			expired: true,
		},
		{
			name:    "already past expiry",
			creds:   Credentials{Token: "a", Expiry: now.Add(-time.Minute).Format(time.RFC3339)},
			expired: true,
		},
		{
			name:    "no access token",
			creds:   Credentials{Expiry: now.Add(time.Hour).Format(time.RFC3339)},
			expired: true,
		},
		{
			name:    "no recorded expiry",
			creds:   Credentials{Token: "a"},
			expired: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, tt.creds.ExpiredAt(now))
		})
	}
}

func TestCredentialsFromToken(t *testing.T) {
	expiry := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	token := &oauth2.Token{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		Expiry:       expiry,
	}
	cs := &ClientSecret{ClientID: "id-1", ClientSecret: "secret-1", TokenURI: "https://t"}

	creds := CredentialsFromToken(token, cs, []string{ScopeAdWords})
	assert.Equal(t, "refresh-1", creds.RefreshToken)
	assert.Equal(t, "access-1", creds.Token)
	assert.Equal(t, "id-1", creds.ClientID)
	assert.Equal(t, "https://t", creds.TokenURI)
	assert.Equal(t, "2026-01-02T15:04:05Z", creds.Expiry)

	back := creds.OAuth2Token()
	assert.Equal(t, token.AccessToken, back.AccessToken)
	assert.Equal(t, token.RefreshToken, back.RefreshToken)
	assert.True(t, expiry.Equal(back.Expiry))
}

func TestTokenValid(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)

	assert.False(t, tokenValid(nil, now))
	assert.False(t, tokenValid(&oauth2.Token{}, now))
	assert.True(t, tokenValid(&oauth2.Token{AccessToken: "a"}, now))
	assert.True(t, tokenValid(&oauth2.Token{AccessToken: "a", Expiry: now.Add(time.Hour)}, now))
	assert.False(t, tokenValid(&oauth2.Token{AccessToken: "a", Expiry: now.Add(4 * time.Minute)}, now))
}
