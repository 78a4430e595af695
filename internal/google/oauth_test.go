package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestValidateAccountName(t *testing.T) {
	tests := []struct {
		name    string
		account string
		wantErr bool
	}{
		{"valid default", "default", false},
		{"valid with hyphen", "office-main", false},
		{"valid with underscore", "front_desk", false},
		{"valid alphanumeric", "account123", false},
		{"empty", "", true},
		{"with spaces", "my account", true},
		{"with special chars", "account@work", true},
		{"with slash", "work/personal", true},
		{"with dot", "work.email", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAccountName(tt.account)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAccountName() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetTokenFilePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvTokenDir, dir)

	got, err := getTokenFilePath("office")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "google-office.token"); got != want {
		t.Errorf("getTokenFilePath() = %v, want %v", got, want)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv(EnvTokenDir, t.TempDir())

	if HasTokenForAccount("office") {
		t.Fatal("HasTokenForAccount() should be false before a token is written")
	}

	tok := &oauth2.Token{AccessToken: "at", RefreshToken: "rt", Expiry: time.Now().Add(time.Hour)}
	if err := writeToken("office", tok); err != nil {
		t.Fatal(err)
	}
	if !HasTokenForAccount("office") {
		t.Fatal("HasTokenForAccount() should be true after a token is written")
	}

	got, err := readToken("office")
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessToken != "at" || got.RefreshToken != "rt" {
		t.Errorf("readToken() = %+v, want access/refresh at/rt", got)
	}
}

func TestReadToken_Missing(t *testing.T) {
	t.Setenv(EnvTokenDir, t.TempDir())

	if _, err := readToken("nobody"); err == nil {
		t.Error("readToken() should fail for a missing token")
	}
	if HasTokenForAccount("invalid account") {
		t.Error("HasTokenForAccount() should return false for invalid account name")
	}
}

func TestGetOAuthConfig(t *testing.T) {
	t.Setenv(EnvCredentialsFile, "")
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")

	if _, err := GetOAuthConfig(); err == nil {
		t.Error("GetOAuthConfig() should fail without a client")
	}

	t.Setenv(EnvClientID, "id")
	t.Setenv(EnvClientSecret, "secret")
	conf, err := GetOAuthConfig()
	if err != nil {
		t.Fatal(err)
	}
	if conf.ClientID != "id" || conf.RedirectURL != loopbackRedirect {
		t.Errorf("unexpected config %+v", conf)
	}
	if len(conf.Scopes) != len(DefaultOAuthScopes) {
		t.Errorf("expected %d scopes, got %d", len(DefaultOAuthScopes), len(conf.Scopes))
	}
}

func TestGetOAuthConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.json")
	secret := `{"installed":{"client_id":"file-id","client_secret":"file-secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`
	if err := os.WriteFile(path, []byte(secret), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvCredentialsFile, path)

	conf, err := GetOAuthConfig()
	if err != nil {
		t.Fatal(err)
	}
	if conf.ClientID != "file-id" {
		t.Errorf("ClientID = %q, want file-id", conf.ClientID)
	}
	if conf.RedirectURL != loopbackRedirect {
		t.Errorf("RedirectURL = %q, want %q", conf.RedirectURL, loopbackRedirect)
	}
}

func TestGetAuthenticationErrorMessage(t *testing.T) {
	msg := GetAuthenticationErrorMessage("office")
	if !strings.Contains(msg, "office") || !strings.Contains(msg, "OAuth") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestNewTokenProvider(t *testing.T) {
	p, err := NewTokenProvider("", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if p.Account() != DefaultAccount {
		t.Errorf("Account() = %q, want %q", p.Account(), DefaultAccount)
	}

	if _, err := NewTokenProvider("bad name", "", ""); err == nil {
		t.Error("NewTokenProvider() should reject an invalid account")
	}

	sa, err := NewTokenProvider("", "/path/key.json", "office@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if sa.Account() != "office@example.com" {
		t.Errorf("Account() = %q, want subject", sa.Account())
	}
}

func TestFileTokenProvider_NoToken(t *testing.T) {
	t.Setenv(EnvTokenDir, t.TempDir())

	_, err := NewFileTokenProvider("office").TokenSource(context.Background())
	if err == nil {
		t.Fatal("TokenSource() should fail without a cached token")
	}
	if !strings.Contains(err.Error(), "handoff auth") {
		t.Errorf("error should point to the auth command, got %v", err)
	}
}
