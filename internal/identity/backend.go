package identity

import "context"

// Entry is a single key/value pair written to a Backend.
type Entry struct {
	Key   string
	Value string
}

// Backend is a durable key-value store keyed by string.
//
// Set and Delete apply all given entries in one step when the backend
// supports it. Backends that cannot do that apply them in argument order.
type Backend interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes all entries.
	Set(ctx context.Context, entries ...Entry) error

	// Delete removes all keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Keys returns every key starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases backend resources.
	Close() error
}
