package sheets

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestTokenCache_RoundTrip(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "nested", "sheets_token.json")

	token := &oauth2.Token{
		AccessToken:  "access-abc",
		RefreshToken: "refresh-xyz",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Round(time.Second),
	}

	require.NoError(t, saveToken(tokenFile, token), "save creates missing directories")

	loaded, err := LoadToken(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, token.AccessToken, loaded.AccessToken)
	assert.Equal(t, token.RefreshToken, loaded.RefreshToken)
	assert.True(t, loaded.Valid())
}

func TestLoadToken_MissingFile(t *testing.T) {
	_, err := LoadToken(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestRefreshTokenIfNeeded_ValidTokenPassesThrough(t *testing.T) {
	token := &oauth2.Token{
		AccessToken: "still-good",
		Expiry:      time.Now().Add(time.Hour),
	}

	got, err := RefreshTokenIfNeeded(context.Background(), OAuth2Config{
		ClientID:     "client",
		ClientSecret: "secret",
	}, token)
	require.NoError(t, err)
	assert.Same(t, token, got, "a valid token never hits the network")
}

func TestGetOrCreateToken_UsesCachedToken(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "sheets_token.json")
	cached := &oauth2.Token{
		AccessToken: "cached-access",
		Expiry:      time.Now().Add(time.Hour),
	}
	require.NoError(t, saveToken(tokenFile, cached))

	// A valid cached token short-circuits before either the refresh
	// endpoint or the interactive callback server is reached.
	got, err := GetOrCreateToken(context.Background(), OAuth2Config{
		ClientID:     "client",
		ClientSecret: "secret",
		TokenFile:    tokenFile,
	})
	require.NoError(t, err)
	assert.Equal(t, "cached-access", got.AccessToken)
}

func TestDefaultTokenFile(t *testing.T) {
	path := DefaultTokenFile()
	if path == "" {
		t.Skip("no user config dir in this environment")
	}
	assert.Equal(t, "sheets_token.json", filepath.Base(path))
	assert.Contains(t, path, "spendlens")
}
