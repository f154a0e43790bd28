package google

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClientSecret_Layouts(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{
			name: "installed",
			json: `{"installed":{"client_id":"id-1","client_secret":"secret-1","auth_uri":"https://a","token_uri":"https://t"}}`,
		},
		{
			name: "web",
			json: `{"web":{"client_id":"id-1","client_secret":"secret-1","auth_uri":"https://a","token_uri":"https://t"}}`,
		},
		{
			name: "flat",
			json: `{"client_id":"id-1","client_secret":"secret-1","auth_uri":"https://a","token_uri":"https://t"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, err := ParseClientSecret([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, "id-1", cs.ClientID)
			assert.Equal(t, "secret-1", cs.ClientSecret)
			assert.Equal(t, "https://a", cs.AuthURI)
			assert.Equal(t, "https://t", cs.TokenURI)
		})
	}
}

func TestParseClientSecret_DefaultEndpoints(t *testing.T) {
	cs, err := ParseClientSecret([]byte(`{"client_id":"id-1","client_secret":"secret-1"}`))
	require.NoError(t, err)
	assert.Equal(t, defaultAuthURI, cs.AuthURI)
	assert.Equal(t, defaultTokenURI, cs.TokenURI)
}

func TestParseClientSecret_MissingFields(t *testing.T) {
	_, err := ParseClientSecret([]byte(`{"installed":{"client_id":"id-1"}}`))
	assert.Error(t, err)

	_, err = ParseClientSecret([]byte(`{}`))
	assert.Error(t, err)

	_, err = ParseClientSecret([]byte(`not json`))
	assert.Error(t, err)
}

func TestLoadClientSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client_secret.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"installed":{"client_id":"id-1","client_secret":"secret-1"}}`), 0600))

	cs, err := LoadClientSecret(path)
	require.NoError(t, err)
	assert.Equal(t, "id-1", cs.ClientID)

	_, err = LoadClientSecret("")
	assert.Error(t, err)

	_, err = LoadClientSecret(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestOAuthConfig(t *testing.T) {
	cs := &ClientSecret{
		ClientID:     "id-1",
		ClientSecret: "secret-1",
		AuthURI:      "https://a",
		TokenURI:     "https://t",
	}

	conf := cs.OAuthConfig(ScopeAdWords)
	assert.Equal(t, "id-1", conf.ClientID)
	assert.Equal(t, "https://a", conf.Endpoint.AuthURL)
	assert.Equal(t, "https://t", conf.Endpoint.TokenURL)
	assert.Equal(t, []string{ScopeAdWords}, conf.Scopes)
}
