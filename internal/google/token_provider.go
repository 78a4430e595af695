package google

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// TokenProvider supplies OAuth tokens for Google API clients.
type TokenProvider interface {
	// TokenSource returns a token source for API calls.
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)

	// Account names the identity the tokens belong to.
	Account() string
}

// FileTokenProvider reads the cached user token of an account.
type FileTokenProvider struct {
	account string
}

// NewFileTokenProvider creates a provider for account ("default" when empty).
func NewFileTokenProvider(account string) *FileTokenProvider {
	if account == "" {
		account = DefaultAccount
	}
	return &FileTokenProvider{account: account}
}

// TokenSource implements TokenProvider.
func (p *FileTokenProvider) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	ts, err := GetTokenSourceForAccount(ctx, p.account)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", GetAuthenticationErrorMessage(p.account), err)
	}
	return ts, nil
}

// Account implements TokenProvider.
func (p *FileTokenProvider) Account() string {
	return p.account
}

// ServiceAccountProvider authenticates with a service account key,
// impersonating Subject through domain-wide delegation.
type ServiceAccountProvider struct {
	KeyFile string
	Subject string
}

// TokenSource implements TokenProvider.
func (p *ServiceAccountProvider) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	b, err := os.ReadFile(p.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account key: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(b, DefaultOAuthScopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account key: %w", err)
	}
	conf.Subject = p.Subject
	return conf.TokenSource(ctx), nil
}

// Account implements TokenProvider.
func (p *ServiceAccountProvider) Account() string {
	if p.Subject != "" {
		return p.Subject
	}
	return "service-account"
}

// NewTokenProvider returns a ServiceAccountProvider when keyFile is set and
// a FileTokenProvider for account otherwise.
func NewTokenProvider(account, keyFile, subject string) (TokenProvider, error) {
	if keyFile != "" {
		return &ServiceAccountProvider{KeyFile: keyFile, Subject: subject}, nil
	}
	if err := validateAccountName(NewFileTokenProvider(account).account); err != nil {
		return nil, err
	}
	return NewFileTokenProvider(account), nil
}

// NewHTTPClient returns an HTTP client authorized by provider.
// The client uses HTTP/1.1 to avoid HTTP/2 stream errors seen with Google APIs.
func NewHTTPClient(ctx context.Context, provider TokenProvider) (*http.Client, error) {
	ts, err := provider.TokenSource(ctx)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, ts)
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}
	return client, nil
}
