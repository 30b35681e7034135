package recordstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend stores each collection as a JSON file under a base directory.
// It is the development default; a deployment with multiple writers should
// use the Postgres backend instead.
type FileBackend struct {
	baseDir string
}

// NewFileBackend ensures the base directory exists and returns a handle.
func NewFileBackend(baseDir string) (*FileBackend, error) {
	if baseDir == "" {
		baseDir = "./data"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileBackend{baseDir: baseDir}, nil
}

// Load reads the payload stored under key.
func (b *FileBackend) Load(_ context.Context, key string) ([]byte, error) {
	raw, err := os.ReadFile(b.resolve(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read collection %s: %w", key, err)
	}
	return raw, nil
}

// Save writes the payload under key, replacing any prior content.
func (b *FileBackend) Save(_ context.Context, key string, payload []byte) error {
	path := b.resolve(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write collection %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace collection %s: %w", key, err)
	}
	return nil
}

func (b *FileBackend) resolve(key string) string {
	// Keys carry a namespace prefix like "classtrack:attendance"; colons are
	// not portable in filenames.
	name := strings.ReplaceAll(key, ":", "_") + ".json"
	return filepath.Join(b.baseDir, name)
}
