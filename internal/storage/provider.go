// Package storage defines the key-based persistence port.
package storage

// Provider is the interface for persisting JSON-serializable values under
// string keys. There are no transactions across keys; each Save replaces the
// value for its key atomically.
type Provider interface {
	// Load decodes the value stored under key into v. When the key has never
	// been written, v is left untouched and Load returns nil so that callers
	// keep their default value.
	Load(key string, v any) error
	// Save encodes v as JSON and atomically replaces the value under key.
	Save(key string, v any) error
}
