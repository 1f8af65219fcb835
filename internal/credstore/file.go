// ABOUTME: YAML file credential store under the user's config directory
// ABOUTME: Writes atomically with 0600 permissions so tokens survive restarts

package credstore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// File is a Store persisted as a YAML mapping of storage keys to tokens.
type File struct {
	mu        sync.Mutex
	path      string
	namespace string
	values    map[string]string
	logger    *slog.Logger
}

// DefaultFilePath returns $XDG_CONFIG_HOME/bookdesk/credentials.yaml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultFilePath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine config directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "bookdesk", "credentials.yaml"), nil
}

// OpenFile loads the credential file at path. A missing file is an empty store; a
// corrupt file is logged and treated as empty so the next Set rewrites it.
func OpenFile(path, namespace string, logger *slog.Logger) *File {
	if logger == nil {
		logger = slog.Default()
	}
	f := &File{
		path:      path,
		namespace: namespace,
		values:    make(map[string]string),
		logger:    logger.With("component", "credstore", "backend", "file"),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		f.logger.Warn("reading credentials file", "path", path, "error", err)
	default:
		if err := yaml.Unmarshal(data, &f.values); err != nil {
			f.logger.Warn("parsing credentials file", "path", path, "error", err)
			f.values = make(map[string]string)
		}
		if f.values == nil {
			f.values = make(map[string]string)
		}
	}
	return f
}

func (f *File) Get(kind Kind) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[kind.Key(f.namespace)]
	return v, ok
}

func (f *File) Set(kind Kind, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[kind.Key(f.namespace)] = token
	f.persistLocked()
}

func (f *File) Clear(kind Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := kind.Key(f.namespace)
	if _, ok := f.values[key]; !ok {
		return
	}
	delete(f.values, key)
	f.persistLocked()
}

// persistLocked writes the current values. Must be called with mu held.
func (f *File) persistLocked() {
	if err := f.write(); err != nil {
		f.logger.Error("writing credentials file", "path", f.path, "error", err)
	}
}

func (f *File) write() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}
	data, err := yaml.Marshal(f.values)
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	return os.Rename(tmp.Name(), f.path)
}
