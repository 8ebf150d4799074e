package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Store looks up a named secret.
type Store interface {
	Lookup(key string) (string, bool)
}

// Env reads secrets from environment variables.
type Env struct{}

func (Env) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Map is an in-memory Store.
type Map map[string]string

func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// FileStore reads secrets from a local TOML file such as .streamlit/secrets.toml.
type FileStore struct {
	path string
	v    *viper.Viper
}

// OpenFileStore reads the TOML secrets file at path. A missing file yields an
// empty store.
func OpenFileStore(path string) (*FileStore, error) {
	v := viper.New()
	store := &FileStore{path: path, v: v}

	path = strings.TrimSpace(path)
	if path == "" {
		return store, nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("checking secrets file %q: %w", path, err)
	}

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading secrets file %q: %w", path, err)
	}

	return store, nil
}

func (s *FileStore) Lookup(key string) (string, bool) {
	if s == nil || s.v == nil || !s.v.IsSet(key) {
		return "", false
	}
	return s.v.GetString(key), true
}

// Path returns the file the store was opened from.
func (s *FileStore) Path() string {
	return s.path
}

// Resolve returns the first non-blank value of key found in stores, in order.
// The found value is trimmed.
func Resolve(name, key string, stores ...Store) (string, error) {
	for _, store := range stores {
		if store == nil {
			continue
		}
		if value, ok := store.Lookup(key); ok {
			if value = strings.TrimSpace(value); value != "" {
				return value, nil
			}
		}
	}

	if strings.TrimSpace(name) == "" {
		name = key
	}
	return "", fmt.Errorf("%s is not configured", name)
}
