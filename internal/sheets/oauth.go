package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

const (
	// authCallbackAddr is the local listener the browser flow redirects to.
	authCallbackAddr = ":8080"
	authCallbackPath = "/callback"
	// authTimeout bounds how long the browser flow waits for the user.
	authTimeout = 5 * time.Minute
)

// OAuth2Config holds the client credentials for the browser-based flow.
// TokenFile, when set, is where the granted token is cached between runs.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	TokenFile    string
}

// DefaultTokenFile returns where spendlens caches the Sheets OAuth2 token.
func DefaultTokenFile() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "spendlens", "sheets_token.json")
}

// endpointConfig builds the oauth2 endpoint config shared by the
// interactive and refresh paths.
func (c OAuth2Config) endpointConfig(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

// GetOrCreateToken returns a usable Sheets token: the cached one when it
// is still valid (refreshing if expired), otherwise a fresh one from the
// interactive browser flow. The export path falls back to this when no
// refresh token is configured.
func GetOrCreateToken(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	if config.TokenFile != "" {
		if token, err := LoadToken(config.TokenFile); err == nil {
			slog.Debug("using cached Sheets token", "file", config.TokenFile)
			return RefreshTokenIfNeeded(ctx, config, token)
		}
		slog.Info("No cached Sheets token, starting browser authentication")
	}
	return AuthenticateOAuth2Interactive(ctx, config)
}

// AuthenticateOAuth2Interactive walks the user through the browser
// consent flow, receiving the authorization code on a localhost callback
// and exchanging it for a token. The token is cached when a TokenFile is
// configured.
func AuthenticateOAuth2Interactive(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	oauthConfig := config.endpointConfig("http://localhost" + authCallbackAddr + authCallbackPath)

	authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	slog.Info("🔐 Google Sheets authorization required")
	slog.Info("Open this URL in your browser", "url", authURL)

	code, err := waitForAuthCode(ctx)
	if err != nil {
		return nil, err
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if config.TokenFile != "" {
		if err := saveToken(config.TokenFile, token); err != nil {
			slog.Warn("Failed to cache Sheets token", "error", err, "file", config.TokenFile)
		}
	}

	return token, nil
}

// waitForAuthCode serves the localhost callback until the provider
// redirects back with an authorization code, the context ends, or the
// flow times out.
func waitForAuthCode(ctx context.Context) (string, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(authCallbackPath, func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errCh <- fmt.Errorf("callback received no authorization code")
			_, _ = fmt.Fprint(w, "<html><body><p>Authorization failed. Return to the terminal and try again.</p></body></html>")
			return
		}
		codeCh <- code
		_, _ = fmt.Fprint(w, "<html><body><p>Authorized. You can close this window.</p></body></html>")
	})

	server := &http.Server{Addr: authCallbackAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- fmt.Errorf("callback server: %w", err)
		}
	}()
	defer func() {
		if err := server.Shutdown(ctx); err != nil {
			slog.Warn("Error shutting down callback server", "error", err)
		}
	}()

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(authTimeout):
		return "", fmt.Errorf("authorization timed out after %s", authTimeout)
	}
}

// LoadToken reads a cached token from disk.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenFile) // #nosec G304
	if err != nil {
		return nil, err
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	return token, nil
}

// saveToken caches a token to disk, creating the directory as needed.
// The file is user-readable only since it grants spreadsheet access.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// RefreshTokenIfNeeded returns the token as-is while it is valid,
// otherwise exchanges its refresh token for a new one and re-caches it.
func RefreshTokenIfNeeded(ctx context.Context, config OAuth2Config, token *oauth2.Token) (*oauth2.Token, error) {
	if token.Valid() {
		return token, nil
	}

	slog.Info("Sheets token expired, refreshing")
	newToken, err := config.endpointConfig("").TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	if config.TokenFile != "" {
		if err := saveToken(config.TokenFile, newToken); err != nil {
			slog.Warn("Failed to cache refreshed token", "error", err)
		}
	}

	return newToken, nil
}
