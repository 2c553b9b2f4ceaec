// Package file provides a TOML-backed configuration store.
package file

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/kohi-labs/kohi-cli/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// defaults are applied for keys with no configured value. Written
// configuration always wins over a default.
var defaults = map[string]any{
	"retrieval.top_k":        int64(7),
	"index.collection":       "coffee",
	"index.batch_size":       int64(5000),
	"llm.max_tokens":         int64(1200),
	"llm.temperature":        0.55,
	"chunker.segment_length": int64(120),
	"chunker.overlap":        int64(30),
	"flatten.concurrency":    int64(10),
}

// ConfigStore persists configuration in a TOML file under the kohi
// config directory. Keys use dot notation, mapping to TOML tables.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore creates a config store rooted at configDir.
// An empty configDir defaults to ~/.kohi/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".kohi")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		data:     make(map[string]any),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Get retrieves a configuration value by key, falling back to the
// built-in default when the key is unset.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if val, ok := s.data[key]; ok {
		return val, true
	}
	val, ok := defaults[key]
	return val, ok
}

// GetString retrieves a string value, or "" when unset or mistyped.
func (s *ConfigStore) GetString(key string) string {
	val, ok := s.Get(key)
	if !ok {
		return ""
	}
	str, _ := val.(string)
	return str
}

// GetInt retrieves an integer value, or 0 when unset or mistyped.
// TOML integers decode as int64.
func (s *ConfigStore) GetInt(key string) int {
	val, ok := s.Get(key)
	if !ok {
		return 0
	}
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// GetFloat retrieves a float value, or 0 when unset or mistyped.
func (s *ConfigStore) GetFloat(key string) float64 {
	val, ok := s.Get(key)
	if !ok {
		return 0
	}
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// GetBool retrieves a boolean value, or false when unset or mistyped.
func (s *ConfigStore) GetBool(key string) bool {
	val, ok := s.Get(key)
	if !ok {
		return false
	}
	b, _ := val.(bool)
	return b
}

// Set stores a value and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes the TOML file. The caller must hold the lock.
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(unflattenMap(s.data))
	if err != nil {
		return err
	}

	// Config may hold API keys: keep permissions tight.
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads configuration from the TOML file. A missing file is not an
// error; the store starts empty.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]any)
			return nil
		}
		return err
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return err
	}

	s.data = flattenMap(loaded, "")
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// flattenMap converts nested TOML tables to dot-notation keys, so
// {"llm": {"model": "grok-3"}} becomes {"llm.model": "grok-3"}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)
	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
			continue
		}
		result[fullKey] = value
	}
	return result
}

// unflattenMap is the inverse of flattenMap, rebuilding nested tables
// so the written TOML stays readable.
func unflattenMap(flat map[string]any) map[string]any {
	result := make(map[string]any)
	for key, value := range flat {
		parts := splitKey(key)
		node := result
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return result
}

func splitKey(key string) []string {
	var parts []string
	start := 0
	for i, r := range key {
		if r == '.' {
			parts = append(parts, key[start:i])
			start = i + 1
		}
	}
	return append(parts, key[start:])
}
