package oauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodeVerifier(t *testing.T) {
	v1, err := GenerateCodeVerifier()
	require.NoError(t, err)
	// RFC 7636 minimum length
	assert.GreaterOrEqual(t, len(v1), 43)

	v2, err := GenerateCodeVerifier()
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)
}

func TestValidateCodeChallenge_S256(t *testing.T) {
	verifier, err := GenerateCodeVerifier()
	require.NoError(t, err)

	challenge := GenerateCodeChallenge(verifier)
	assert.True(t, ValidateCodeChallenge(verifier, challenge, "S256"))
	assert.False(t, ValidateCodeChallenge("wrong-verifier", challenge, "S256"))
	assert.False(t, ValidateCodeChallenge(verifier, "wrong-challenge", "S256"))
}

func TestValidateCodeChallenge_KnownVector(t *testing.T) {
	// Test vector from RFC 7636 appendix B
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	challenge := "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"

	assert.Equal(t, challenge, GenerateCodeChallenge(verifier))
	assert.True(t, ValidateCodeChallenge(verifier, challenge, "S256"))
}

func TestValidateCodeChallenge_Plain(t *testing.T) {
	assert.True(t, ValidateCodeChallenge("abc", "abc", "plain"))
	assert.True(t, ValidateCodeChallenge("abc", "abc", ""))
	assert.False(t, ValidateCodeChallenge("abc", "def", "plain"))
}

func TestValidateCodeChallenge_UnknownMethod(t *testing.T) {
	assert.False(t, ValidateCodeChallenge("abc", "abc", "S512"))
}

func TestGenerateState(t *testing.T) {
	s1, err := GenerateState()
	require.NoError(t, err)
	require.NotEmpty(t, s1)

	s2, err := GenerateState()
	require.NoError(t, err)
	assert.NotEqual(t, s1, s2)
}
