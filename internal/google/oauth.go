package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultAccount is the account name used when none is given.
const DefaultAccount = "default"

// Environment variables read by GetOAuthConfig and tokenDir.
const (
	EnvCredentialsFile = "HANDOFF_GOOGLE_CREDENTIALS"
	EnvClientID        = "HANDOFF_GOOGLE_CLIENT_ID"
	EnvClientSecret    = "HANDOFF_GOOGLE_CLIENT_SECRET"
	EnvTokenDir        = "HANDOFF_TOKEN_DIR"
)

// loopbackRedirect is used when the client config carries no redirect URL.
// The browser ends on an unreachable localhost page whose URL holds the code.
const loopbackRedirect = "http://localhost"

// ErrNoToken is returned when no token is cached for an account.
var ErrNoToken = errors.New("no Google OAuth token found")

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, '-' and '_' are allowed", account)
	}
	return nil
}

// GetOAuthConfig returns the OAuth client configuration for user tokens.
func GetOAuthConfig() (*oauth2.Config, error) {
	if path := os.Getenv(EnvCredentialsFile); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read client credentials %s: %w", path, err)
		}
		conf, err := google.ConfigFromJSON(b, DefaultOAuthScopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse client credentials: %w", err)
		}
		if conf.RedirectURL == "" {
			conf.RedirectURL = loopbackRedirect
		}
		return conf, nil
	}

	clientID := os.Getenv(EnvClientID)
	clientSecret := os.Getenv(EnvClientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("no OAuth client configured: set %s or %s and %s", EnvCredentialsFile, EnvClientID, EnvClientSecret)
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  loopbackRedirect,
		Scopes:       DefaultOAuthScopes,
	}, nil
}

func tokenDir() (string, error) {
	if dir := os.Getenv(EnvTokenDir); dir != "" {
		return dir, nil
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("unable to get user cache directory: %w", err)
	}
	return filepath.Join(cache, "handoff"), nil
}

func getTokenFilePath(account string) (string, error) {
	dir, err := tokenDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "google-"+account+".token"), nil
}

// HasTokenForAccount reports whether a token is cached for account.
func HasTokenForAccount(account string) bool {
	if validateAccountName(account) != nil {
		return false
	}
	path, err := getTokenFilePath(account)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// GetAuthURLForAccount returns the consent URL to authorize account.
func GetAuthURLForAccount(account string) (string, error) {
	if err := validateAccountName(account); err != nil {
		return "", err
	}
	conf, err := GetOAuthConfig()
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL("handoff-"+account, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// SaveTokenForAccount exchanges an authorization code and caches the token.
func SaveTokenForAccount(ctx context.Context, account, authCode string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	conf, err := GetOAuthConfig()
	if err != nil {
		return err
	}

	tok, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return writeToken(account, tok)
}

func writeToken(account string, tok *oauth2.Token) error {
	path, err := getTokenFilePath(account)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	b, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func readToken(account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}
	path, err := getTokenFilePath(account)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w for account %s", ErrNoToken, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(b, tok); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", path, err)
	}
	return tok, nil
}

// GetTokenSourceForAccount returns a refreshing token source for account.
// Refreshed tokens are written back to the cache.
func GetTokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	tok, err := readToken(account)
	if err != nil {
		return nil, err
	}
	conf, err := GetOAuthConfig()
	if err != nil {
		return nil, err
	}
	return &persistingTokenSource{
		account: account,
		base:    conf.TokenSource(ctx, tok),
		last:    tok.AccessToken,
	}, nil
}

// persistingTokenSource writes a token back whenever it was refreshed.
type persistingTokenSource struct {
	account string
	base    oauth2.TokenSource
	last    string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != p.last {
		p.last = tok.AccessToken
		_ = writeToken(p.account, tok)
	}
	return tok, nil
}

// GetAuthenticationErrorMessage returns the hint shown when account has no
// usable token.
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf("Google OAuth token missing or invalid for account %q. Run 'handoff auth --account %s' to authorize access.", account, account)
}
