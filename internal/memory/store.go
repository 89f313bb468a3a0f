// Package memory implements the persistent context store shared by
// the dispatcher and every skill: a single JSON document on disk.
package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/metoolok/metoolok/internal/config"
	"go.uber.org/zap"
)

// Store owns the context document. All access goes through the mutex:
// the assistant processes one conversation at a time, but the HTTP API
// and the autosave runner read concurrently.
type Store struct {
	mu      sync.RWMutex
	path    string
	tempDir string
	doc     map[string]interface{}
	logger  *zap.Logger
}

// Open loads the context document from path. A missing file starts an
// empty document; a corrupted one is logged and replaced with an empty
// document rather than failing startup.
func Open(path, tempDir string, logger *zap.Logger) (*Store, error) {
	if tempDir != "" {
		if err := os.MkdirAll(tempDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create temp directory: %w", err)
		}
	}

	s := &Store{
		path:    path,
		tempDir: tempDir,
		doc:     make(map[string]interface{}),
		logger:  logger,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read context file: %w", err)
		}
		return s, nil
	}

	if err := json.Unmarshal(data, &s.doc); err != nil {
		logger.Warn("Context file is corrupted, starting with empty memory",
			zap.String("path", path),
			zap.Error(err),
		)
		s.doc = make(map[string]interface{})
	}

	return s, nil
}

// Get returns the value for key, or def when absent.
func (s *Store) Get(key string, def interface{}) interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if val, ok := s.doc[key]; ok {
		return val
	}
	return def
}

// Set stores a value under key. Callers persist with Save.
func (s *Store) Set(key string, val interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc[key] = val
}

// Delete removes a key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.doc, key)
}

// String returns a string value, or def when absent or not a string.
func (s *Store) String(key, def string) string {
	if val, ok := s.Get(key, nil).(string); ok {
		return val
	}
	return def
}

// List returns a list value, or an empty slice when absent or not a list.
func (s *Store) List(key string) []interface{} {
	if val, ok := s.Get(key, nil).([]interface{}); ok {
		return val
	}
	return []interface{}{}
}

// Map returns a map value, or an empty map when absent or not a map.
func (s *Store) Map(key string) map[string]interface{} {
	if val, ok := s.Get(key, nil).(map[string]interface{}); ok {
		return val
	}
	return map[string]interface{}{}
}

// Save writes the whole document atomically: marshal, write a sibling
// temp file, rename over the target.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.doc, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create context directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write context file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace context file: %w", err)
	}

	return nil
}

// Snapshot returns a copy of the document via a JSON round trip, so
// callers can't mutate shared state through it.
func (s *Store) Snapshot() map[string]interface{} {
	s.mu.RLock()
	data, err := json.Marshal(s.doc)
	s.mu.RUnlock()
	if err != nil {
		return map[string]interface{}{}
	}

	out := make(map[string]interface{})
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Secret looks up an API key for a service from the environment
// (<SERVICE>_API_KEY, with known aliases). Empty means not configured.
func (s *Store) Secret(service string) string {
	key := strings.ToUpper(service) + "_API_KEY"
	val := config.ResolveEnvWithAliases(key)
	if val == "" {
		s.logger.Warn("API key not found in environment", zap.String("service", service))
	}
	return val
}

// SaveUpload writes uploaded bytes under the temp directory with a
// uuid-prefixed name to avoid collisions, and records it as the last
// uploaded file.
func (s *Store) SaveUpload(name string, data []byte) (string, error) {
	if s.tempDir == "" {
		return "", fmt.Errorf("no temp directory configured")
	}

	unique := fmt.Sprintf("%s_%s", uuid.New().String()[:8], filepath.Base(name))
	path := filepath.Join(s.tempDir, unique)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}

	s.Set("last_uploaded_file", path)
	s.logger.Info("File saved", zap.String("path", path))
	return path, nil
}

// RemoveFile deletes a temp file, reporting whether it existed.
func (s *Store) RemoveFile(path string) bool {
	if err := os.Remove(path); err != nil {
		return false
	}
	return true
}
