package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/dverne/promptdeck/internal/checksum"
)

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// FS implements Provider with one JSON file per key in a data directory.
type FS struct {
	root string // absolute path to the data directory

	mu        sync.Mutex
	lastWrite map[string]string // key -> checksum of the most recent self-write
}

// NewFS creates an FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs, lastWrite: make(map[string]string)}, nil
}

// Root returns the absolute data directory path.
func (f *FS) Root() string { return f.root }

// keyPath maps a key to its backing file, rejecting anything that is not a
// plain lowercase identifier (keys never contain path separators).
func (f *FS) keyPath(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("storage: invalid key: %q", key)
	}
	return filepath.Join(f.root, key+".json"), nil
}

// Load decodes the JSON file for key into v. A missing file is not an
// error: the caller's default value stands.
func (f *FS) Load(key string, v any) error {
	path, err := f.keyPath(key)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("storage: read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("storage: decode %s: %w", key, err)
	}
	f.mu.Lock()
	f.lastWrite[key] = checksum.Sum(data)
	f.mu.Unlock()
	return nil
}

// Save atomically writes v as indented JSON: tmp file → fsync → rename.
func (f *FS) Save(key string, v any) error {
	path, err := f.keyPath(key)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(f.root, ".promptdeck-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true

	f.mu.Lock()
	f.lastWrite[key] = checksum.Sum(data)
	f.mu.Unlock()
	return nil
}

// IsSelfWrite reports whether data matches the most recent Save for key.
// The watcher uses this to distinguish our own writes from external edits.
func (f *FS) IsSelfWrite(key string, data []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastWrite[key] == checksum.Sum(data)
}
