package logging

import (
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
	}{
		{name: "regular email", email: "user@example.com"},
		{name: "another email", email: "admin@ads.example.org"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnonymizeEmail(tt.email)
			assert.True(t, strings.HasPrefix(got, "user:"))
			assert.NotContains(t, got, tt.email)
			// Deterministic: same input, same hash
			assert.Equal(t, got, AnonymizeEmail(tt.email))
		})
	}
}

func TestAnonymizeEmail_Empty(t *testing.T) {
	assert.Equal(t, "", AnonymizeEmail(""))
}

func TestSanitizeToken(t *testing.T) {
	assert.Equal(t, "<empty>", SanitizeToken(""))

	got := SanitizeToken("ya29.a0AfH6SMBexample")
	assert.Equal(t, "[token:21 chars]", got)
	assert.NotContains(t, got, "ya29")
}

func TestErr_Nil(t *testing.T) {
	attr := Err(nil)
	// Empty group is omitted by slog handlers
	assert.Equal(t, slog.KindGroup, attr.Value.Kind())
}

func TestErr_NonNil(t *testing.T) {
	attr := Err(errors.New("boom"))
	assert.Equal(t, KeyError, attr.Key)
	assert.Equal(t, "boom", attr.Value.String())
}

func TestExtractDomain(t *testing.T) {
	assert.Equal(t, "example.com", ExtractDomain("user@example.com"))
	assert.Equal(t, "", ExtractDomain("not-an-email"))
	assert.Equal(t, "", ExtractDomain(""))
}
