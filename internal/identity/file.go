package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const fileFormatVersion = 1

type fileDocument struct {
	Version    int               `json:"version"`
	Properties map[string]string `json:"properties"`
}

// FileBackend keeps entries in a JSON document on local disk. The whole
// document is rewritten on each change through a temp file and a rename, so
// a batch passed to Set or Delete lands on disk all at once.
type FileBackend struct {
	path string

	mu   sync.Mutex
	data map[string]string
}

// DefaultFilePath returns the default location of the identity document.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("unable to get user config directory: %w", err)
	}
	return filepath.Join(dir, "handoff", "identity.json"), nil
}

// NewFileBackend opens the document at path, creating an empty one in
// memory if the file does not exist yet.
func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("file path is required")
	}

	b := &FileBackend{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return b, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc fileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if doc.Version > fileFormatVersion {
		return nil, fmt.Errorf("%s has unsupported version %d", path, doc.Version)
	}
	for k, v := range doc.Properties {
		b.data[k] = v
	}
	return b, nil
}

// Path returns the document location.
func (b *FileBackend) Path() string {
	return b.path
}

// Get implements Backend.
func (b *FileBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.data[key]
	return v, ok, nil
}

// Set implements Backend.
func (b *FileBackend) Set(_ context.Context, entries ...Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.clone()
	for _, e := range entries {
		next[e.Key] = e.Value
	}
	if err := b.persist(next); err != nil {
		return err
	}
	b.data = next
	return nil
}

// Delete implements Backend.
func (b *FileBackend) Delete(_ context.Context, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.clone()
	changed := false
	for _, k := range keys {
		if _, ok := next[k]; ok {
			delete(next, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := b.persist(next); err != nil {
		return err
	}
	b.data = next
	return nil
}

// Keys implements Backend.
func (b *FileBackend) Keys(_ context.Context, prefix string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return sortedKeys(b.data, prefix), nil
}

// Close implements Backend.
func (b *FileBackend) Close() error {
	return nil
}

func (b *FileBackend) clone() map[string]string {
	out := make(map[string]string, len(b.data))
	for k, v := range b.data {
		out[k] = v
	}
	return out
}

func (b *FileBackend) persist(data map[string]string) error {
	raw, err := json.MarshalIndent(fileDocument{Version: fileFormatVersion, Properties: data}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode identity document: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(b.path), 0o700); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", b.path, err)
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", b.path, err)
	}
	return nil
}
