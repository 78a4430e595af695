package identity

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/valkey-io/valkey-go"
)

// DefaultValkeyKeyPrefix namespaces all keys written by ValkeyBackend.
const DefaultValkeyKeyPrefix = "handoff:"

// ValkeyConfig holds connection settings for ValkeyBackend.
type ValkeyConfig struct {
	// URL is the server address (e.g., "valkey.namespace.svc:6379").
	URL string

	// Password is the optional AUTH password.
	Password string

	// TLSEnabled enables TLS for the connection.
	TLSEnabled bool

	// TLSCAFile is an optional PEM bundle for servers signed by a private CA.
	TLSCAFile string

	// KeyPrefix is prepended to every key (default: "handoff:").
	KeyPrefix string

	// DB is the database number.
	DB int
}

// ValkeyBackend stores entries in a Valkey (or Redis) server. Multi-key
// writes run inside MULTI/EXEC on a dedicated connection.
type ValkeyBackend struct {
	client valkey.Client
	prefix string
}

// NewValkeyBackend connects to the server described by cfg.
func NewValkeyBackend(ctx context.Context, cfg ValkeyConfig) (*ValkeyBackend, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("valkey URL is required")
	}

	opt := valkey.ClientOption{
		InitAddress:  []string{cfg.URL},
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		// Reads always go to the server; client-side caching needs
		// CLIENT TRACKING, which not every compatible server offers.
		DisableCache: true,
	}
	if cfg.TLSEnabled {
		tlsConfig, err := buildTLSConfig(cfg.TLSCAFile)
		if err != nil {
			return nil, err
		}
		opt.TLSConfig = tlsConfig
	}

	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey at %s: %w", cfg.URL, err)
	}

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping valkey at %s: %w", cfg.URL, err)
	}

	return &ValkeyBackend{client: client, prefix: keyPrefixOrDefault(cfg.KeyPrefix)}, nil
}

func keyPrefixOrDefault(prefix string) string {
	if prefix == "" {
		return DefaultValkeyKeyPrefix
	}
	return prefix
}

func buildTLSConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}

	pem, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file %s: %w", caFile, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", caFile)
	}
	cfg.RootCAs = pool
	return cfg, nil
}

func (b *ValkeyBackend) key(k string) string {
	return b.prefix + k
}

func (b *ValkeyBackend) unkey(k string) string {
	return strings.TrimPrefix(k, b.prefix)
}

// Get implements Backend.
func (b *ValkeyBackend) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := b.client.Do(ctx, b.client.B().Get().Key(b.key(key)).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("valkey GET %s: %w", key, err)
	}
	return v, true, nil
}

// Set implements Backend.
func (b *ValkeyBackend) Set(ctx context.Context, entries ...Entry) error {
	switch len(entries) {
	case 0:
		return nil
	case 1:
		e := entries[0]
		if err := b.client.Do(ctx, b.client.B().Set().Key(b.key(e.Key)).Value(e.Value).Build()).Error(); err != nil {
			return fmt.Errorf("valkey SET %s: %w", e.Key, err)
		}
		return nil
	}

	return b.client.Dedicated(func(c valkey.DedicatedClient) error {
		cmds := make(valkey.Commands, 0, len(entries)+2)
		cmds = append(cmds, c.B().Multi().Build())
		for _, e := range entries {
			cmds = append(cmds, c.B().Set().Key(b.key(e.Key)).Value(e.Value).Build())
		}
		cmds = append(cmds, c.B().Exec().Build())

		resps := c.DoMulti(ctx, cmds...)
		for _, resp := range resps[:len(resps)-1] {
			if err := resp.Error(); err != nil {
				return fmt.Errorf("valkey MULTI/EXEC: %w", err)
			}
		}

		// Errors of queued commands only show up inside the EXEC reply.
		results, err := resps[len(resps)-1].ToArray()
		if err != nil {
			return fmt.Errorf("valkey EXEC: %w", err)
		}
		for i, r := range results {
			if err := r.Error(); err != nil {
				return fmt.Errorf("valkey SET %s: %w", entries[i].Key, err)
			}
		}
		return nil
	})
}

// Delete implements Backend. A single DEL removes all keys at once.
func (b *ValkeyBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = b.key(k)
	}
	if err := b.client.Do(ctx, b.client.B().Del().Key(full...).Build()).Error(); err != nil {
		return fmt.Errorf("valkey DEL: %w", err)
	}
	return nil
}

// Keys implements Backend using SCAN.
func (b *ValkeyBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)
	match := escapeGlob(b.key(prefix)) + "*"
	for {
		entry, err := b.client.Do(ctx, b.client.B().Scan().Cursor(cursor).Match(match).Count(100).Build()).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("valkey SCAN: %w", err)
		}
		for _, k := range entry.Elements {
			keys = append(keys, b.unkey(k))
		}
		if entry.Cursor == 0 {
			break
		}
		cursor = entry.Cursor
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements Backend.
func (b *ValkeyBackend) Close() error {
	b.client.Close()
	return nil
}

// escapeGlob escapes glob metacharacters so emails are matched literally.
func escapeGlob(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
