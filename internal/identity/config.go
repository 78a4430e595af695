package identity

import (
	"context"
	"fmt"
)

// StorageType selects a Backend implementation.
type StorageType string

const (
	StorageTypeMemory StorageType = "memory"
	StorageTypeFile   StorageType = "file"
	StorageTypeValkey StorageType = "valkey"
)

// StorageConfig selects and configures the identity backend.
type StorageConfig struct {
	// Type is the backend type (default: "file").
	Type StorageType

	// FilePath is the JSON document used by the file backend.
	// Defaults to DefaultFilePath().
	FilePath string

	// Valkey configures the valkey backend.
	Valkey ValkeyConfig
}

// Open builds the configured backend and wraps it in a Store.
func Open(ctx context.Context, cfg StorageConfig) (*Store, error) {
	backend, err := OpenBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewStore(backend), nil
}

// OpenBackend builds the configured backend.
func OpenBackend(ctx context.Context, cfg StorageConfig) (Backend, error) {
	switch cfg.Type {
	case StorageTypeMemory:
		return NewMemoryBackend(), nil
	case StorageTypeFile, "":
		path := cfg.FilePath
		if path == "" {
			var err error
			path, err = DefaultFilePath()
			if err != nil {
				return nil, err
			}
		}
		return NewFileBackend(path)
	case StorageTypeValkey:
		return NewValkeyBackend(ctx, cfg.Valkey)
	default:
		return nil, fmt.Errorf("unknown storage type %q (valid: memory, file, valkey)", cfg.Type)
	}
}
