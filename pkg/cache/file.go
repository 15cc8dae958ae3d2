package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores entries as individual JSON files in a directory.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache rooted at dir, creating the
// directory if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// envelope wraps a cached payload with its expiration.
type envelope struct {
	Payload   []byte    `json:"payload"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get retrieves a value. Expired or unreadable entries are removed and
// reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !env.ExpiresAt.IsZero() && time.Now().After(env.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return env.Payload, true, nil
}

// Set stores a value.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	env := envelope{Payload: data}
	if ttl > 0 {
		env.ExpiresAt = time.Now().Add(ttl)
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(key), raw, 0644)
}

// Delete removes a value.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for the file backend.
func (c *FileCache) Close() error {
	return nil
}

// Entries counts the stored cache files, for the cache CLI.
func (c *FileCache) Entries() (int, error) {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

// path maps a key to its file. Keys are hashed so arbitrary key strings
// stay filesystem-safe.
func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, Hash([]byte(key))+".json")
}

var _ Cache = (*FileCache)(nil)
