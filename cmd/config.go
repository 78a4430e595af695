package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/handoff/internal/identity"
)

// GlobalOptions holds the settings shared by all commands.
type GlobalOptions struct {
	LogLevel  string
	LogFormat string
	LogPII    bool

	// Account is the cached OAuth token to use (default: "default").
	Account string

	// ServiceAccountKey switches to service account authentication,
	// impersonating Impersonate.
	ServiceAccountKey string
	Impersonate       string

	CalendarID     string
	TemplateID     string
	ParentFolderID string

	// TimeZone renders {Timestamp} (default: local time).
	TimeZone string

	Storage StorageConfig
}

// StorageConfig holds identity store backend configuration
type StorageConfig struct {
	// Type is the storage backend type: "file", "memory" or "valkey" (default: "file")
	Type string

	// FilePath is the JSON document of the file backend
	FilePath string

	// Valkey configuration (used when Type is "valkey")
	Valkey ValkeyStorageConfig
}

// ValkeyStorageConfig holds configuration for Valkey storage backend
type ValkeyStorageConfig struct {
	// URL is the Valkey server address (e.g., "valkey.namespace.svc:6379")
	URL string

	// Password is the optional password for Valkey authentication
	Password string

	// TLSEnabled enables TLS for Valkey connections
	TLSEnabled bool

	// TLSCAFile is the path to a custom CA certificate file for TLS verification.
	TLSCAFile string

	// KeyPrefix is the prefix for all Valkey keys (default: "handoff:")
	KeyPrefix string

	// DB is the Valkey database number (default: 0)
	DB int
}

var globals GlobalOptions

func bindGlobalFlags(cmd *cobra.Command, o *GlobalOptions) {
	flags := cmd.PersistentFlags()

	flags.StringVar(&o.LogLevel, "log-level", "info", "Log level: debug, info, warn, error (env: LOG_LEVEL)")
	flags.StringVar(&o.LogFormat, "log-format", "text", "Log format: text or json (env: LOG_FORMAT)")
	flags.BoolVar(&o.LogPII, "log-pii", false, "Log participant emails in clear instead of hashed (env: HANDOFF_LOG_PII)")

	flags.StringVar(&o.Account, "account", "default", "Google account whose cached token is used (env: HANDOFF_ACCOUNT)")
	flags.StringVar(&o.ServiceAccountKey, "service-account-key", "", "Service account key file; replaces the cached token (env: HANDOFF_SERVICE_ACCOUNT_KEY)")
	flags.StringVar(&o.Impersonate, "impersonate", "", "User the service account acts as (env: HANDOFF_IMPERSONATE)")

	flags.StringVar(&o.CalendarID, "calendar", "primary", "Calendar to scan (env: HANDOFF_CALENDAR_ID)")
	flags.StringVar(&o.TemplateID, "template", "", "Google Docs template copied for every submission (env: HANDOFF_TEMPLATE_ID)")
	flags.StringVar(&o.ParentFolderID, "parent-folder", "", "Drive folder that holds the participant folders (env: HANDOFF_PARENT_FOLDER)")
	flags.StringVar(&o.TimeZone, "timezone", "", "IANA time zone of the {Timestamp} placeholder (env: HANDOFF_TIMEZONE)")

	flags.StringVar(&o.Storage.Type, "store-type", string(identity.StorageTypeFile), "Identity store backend: file, memory or valkey (env: HANDOFF_STORE_TYPE)")
	flags.StringVar(&o.Storage.FilePath, "store-file", "", "Identity store file for the file backend (env: HANDOFF_STORE_FILE)")
	flags.StringVar(&o.Storage.Valkey.URL, "valkey-url", "", "Valkey server address (env: VALKEY_URL)")
	flags.StringVar(&o.Storage.Valkey.Password, "valkey-password", "", "Valkey password (env: VALKEY_PASSWORD)")
	flags.BoolVar(&o.Storage.Valkey.TLSEnabled, "valkey-tls", false, "Enable TLS for Valkey (env: VALKEY_TLS_ENABLED)")
	flags.StringVar(&o.Storage.Valkey.KeyPrefix, "valkey-key-prefix", "", "Prefix for Valkey keys (env: VALKEY_KEY_PREFIX)")
	flags.IntVar(&o.Storage.Valkey.DB, "valkey-db", 0, "Valkey database number (env: VALKEY_DB)")
}

// loadEnvVars fills settings from environment variables.
// Environment variables only override flag values when the flag was not explicitly set.
func loadEnvVars(cmd *cobra.Command, o *GlobalOptions) error {
	envString(cmd, "log-level", "LOG_LEVEL", &o.LogLevel)
	envString(cmd, "log-format", "LOG_FORMAT", &o.LogFormat)
	if err := envBool(cmd, "log-pii", "HANDOFF_LOG_PII", &o.LogPII); err != nil {
		return err
	}

	envString(cmd, "account", "HANDOFF_ACCOUNT", &o.Account)
	envString(cmd, "service-account-key", "HANDOFF_SERVICE_ACCOUNT_KEY", &o.ServiceAccountKey)
	envString(cmd, "impersonate", "HANDOFF_IMPERSONATE", &o.Impersonate)

	envString(cmd, "calendar", "HANDOFF_CALENDAR_ID", &o.CalendarID)
	envString(cmd, "template", "HANDOFF_TEMPLATE_ID", &o.TemplateID)
	envString(cmd, "parent-folder", "HANDOFF_PARENT_FOLDER", &o.ParentFolderID)
	envString(cmd, "timezone", "HANDOFF_TIMEZONE", &o.TimeZone)

	envString(cmd, "store-type", "HANDOFF_STORE_TYPE", &o.Storage.Type)
	envString(cmd, "store-file", "HANDOFF_STORE_FILE", &o.Storage.FilePath)
	envString(cmd, "valkey-url", "VALKEY_URL", &o.Storage.Valkey.URL)
	envString(cmd, "valkey-password", "VALKEY_PASSWORD", &o.Storage.Valkey.Password)
	envString(cmd, "valkey-key-prefix", "VALKEY_KEY_PREFIX", &o.Storage.Valkey.KeyPrefix)
	if err := envBool(cmd, "valkey-tls", "VALKEY_TLS_ENABLED", &o.Storage.Valkey.TLSEnabled); err != nil {
		return err
	}
	if err := envInt(cmd, "valkey-db", "VALKEY_DB", &o.Storage.Valkey.DB); err != nil {
		return err
	}

	// No flag for the CA bundle: it is mounted alongside the deployment.
	if o.Storage.Valkey.TLSCAFile == "" {
		o.Storage.Valkey.TLSCAFile = os.Getenv("VALKEY_TLS_CA_FILE")
	}
	return nil
}

func envString(cmd *cobra.Command, flag, env string, dst *string) {
	if cmd.Flags().Changed(flag) {
		return
	}
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func envBool(cmd *cobra.Command, flag, env string, dst *bool) error {
	if cmd.Flags().Changed(flag) {
		return nil
	}
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q (expected true/false)", env, v)
	}
	*dst = b
	return nil
}

func envInt(cmd *cobra.Command, flag, env string, dst *int) error {
	if cmd.Flags().Changed(flag) {
		return nil
	}
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q (expected a number)", env, v)
	}
	*dst = n
	return nil
}

func envDuration(cmd *cobra.Command, flag, env string, dst *time.Duration) error {
	if cmd.Flags().Changed(flag) {
		return nil
	}
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q (expected a duration like 15m)", env, v)
	}
	*dst = d
	return nil
}

// identityConfig converts the store settings.
func (o *GlobalOptions) identityConfig() identity.StorageConfig {
	return identity.StorageConfig{
		Type:     identity.StorageType(o.Storage.Type),
		FilePath: o.Storage.FilePath,
		Valkey: identity.ValkeyConfig{
			URL:        o.Storage.Valkey.URL,
			Password:   o.Storage.Valkey.Password,
			TLSEnabled: o.Storage.Valkey.TLSEnabled,
			TLSCAFile:  o.Storage.Valkey.TLSCAFile,
			KeyPrefix:  o.Storage.Valkey.KeyPrefix,
			DB:         o.Storage.Valkey.DB,
		},
	}
}

// location resolves TimeZone.
func (o *GlobalOptions) location() (*time.Location, error) {
	if o.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(o.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", o.TimeZone, err)
	}
	return loc, nil
}
