package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultLargeFileThreshold is the size above which an open asks for
// confirmation (64 MiB).
const DefaultLargeFileThreshold = 64 << 20

// Config holds the application configuration
type Config struct {
	// LargeFileThreshold is the per-item size in bytes above which the
	// dispatcher asks the user before opening. 0 disables the check.
	LargeFileThreshold int64 `json:"large_file_threshold,omitempty"`

	// Recurse is the default recurse-into-subfolders setting for folder
	// compares when a request leaves it unspecified.
	Recurse bool `json:"recurse,omitempty"`

	// HiddenItems are item names filtered from folder compares.
	HiddenItems []string `json:"hidden_items,omitempty"`

	// PluginDir is the directory scanned for pipeline manifests.
	PluginDir string `json:"plugin_dir,omitempty"`

	// NotificationsEnabled turns on desktop notifications when a
	// background compare finishes loading.
	NotificationsEnabled bool `json:"notifications_enabled,omitempty"`

	// Recent holds the persisted most-recently-used lists per kind key.
	Recent map[string][]string `json:"recent,omitempty"`

	mu       sync.RWMutex
	filePath string
}

// configDir returns the path to the config directory
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".collate"), nil
}

// configPath returns the path to the config file
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultPluginDir returns the directory pipeline manifests live in.
func DefaultPluginDir() string {
	dir, err := configDir()
	if err != nil {
		return "plugins"
	}
	return filepath.Join(dir, "plugins")
}

// Load reads the config from disk, or creates a new one if it doesn't exist
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LargeFileThreshold: DefaultLargeFileThreshold,
		PluginDir:          DefaultPluginDir(),
		Recent:             make(map[string][]string),
		filePath:           path,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Ensure maps are initialized (not nil) after unmarshaling.
	// This must happen before Validate() since Validate() only reads.
	cfg.ensureInitialized()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ensureInitialized ensures all slices and maps are initialized (not nil).
//
// Thread-safety: NOT thread-safe; only call during single-threaded
// initialization, before the Config is shared.
func (c *Config) ensureInitialized() {
	if c.Recent == nil {
		c.Recent = make(map[string][]string)
	}
	if c.PluginDir == "" {
		c.PluginDir = DefaultPluginDir()
	}
}

// Validate checks that the config is internally consistent.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.LargeFileThreshold < 0 {
		return fmt.Errorf("large_file_threshold must not be negative")
	}
	return nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c, "", "  ")
	path := c.filePath
	c.mu.RUnlock()
	if err != nil {
		return err
	}

	if path == "" {
		path, err = configPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SetFilePath overrides where Save writes. Test hook.
func (c *Config) SetFilePath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filePath = path
}

// GetLargeFileThreshold returns the confirmation threshold in bytes.
func (c *Config) GetLargeFileThreshold() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.LargeFileThreshold
}

// GetRecurse returns the default recurse setting.
func (c *Config) GetRecurse() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Recurse
}

// GetHiddenItems returns the folder-compare hidden item names.
func (c *Config) GetHiddenItems() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.HiddenItems))
	copy(out, c.HiddenItems)
	return out
}

// GetPluginDir returns the pipeline manifest directory.
func (c *Config) GetPluginDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.PluginDir
}

// GetNotificationsEnabled reports whether desktop notifications are on.
func (c *Config) GetNotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NotificationsEnabled
}

// SaveRecent persists a kind key's recent list. Implements mru.Store;
// persistence failures are non-fatal and silently dropped — the list
// survives in memory for the session.
func (c *Config) SaveRecent(kindKey string, items []string) {
	c.mu.Lock()
	c.Recent[kindKey] = items
	c.mu.Unlock()
	_ = c.Save()
}

// LoadRecent returns a kind key's persisted recent list.
func (c *Config) LoadRecent(kindKey string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := c.Recent[kindKey]
	out := make([]string, len(items))
	copy(out, items)
	return out
}
