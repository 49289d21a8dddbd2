// Package config loads and saves the pickfs settings file and applies
// PICKFS_* environment overrides.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
	"go.uber.org/zap"

	"pickfs/internal/capability"
	apperrors "pickfs/internal/errors"
	"pickfs/internal/logging"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "PICKFS"

// Config represents the application configuration
type Config struct {
	Window WindowConfig `json:"window"`
	Host   HostConfig   `json:"host"`
	Picker PickerConfig `json:"picker"`
	Store  StoreConfig  `json:"store"`
}

// WindowConfig represents window-related settings
type WindowConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// HostConfig selects the host environment the picker runs in.
type HostConfig struct {
	Kind            string `json:"kind"`            // "auto", "browser", "shell"
	ForceRestricted bool   `json:"forceRestricted"` // ignore native pickers even when present
	DirectoryInput  bool   `json:"directoryInput"`  // the input control can select directories
	Debug           bool   `json:"debug"`
}

// PickerConfig holds picker defaults.
type PickerConfig struct {
	Extensions        []string                `json:"extensions"` // default accept list, e.g. ".csv"
	Description       string                  `json:"description"`
	Multiple          bool                    `json:"multiple"`
	RecentDirectories RecentDirectoriesConfig `json:"recentDirectories"`
}

// RecentDirectoriesConfig remembers directories picked through the shell.
type RecentDirectoriesConfig struct {
	MaxEntries int                  `json:"maxEntries"` // Maximum number of paths to remember
	Entries    []string             `json:"entries"`    // Path history (newest first)
	LastUsed   map[string]time.Time `json:"lastUsed"`   // LRU management
}

// StoreConfig configures the remembered-handle store.
type StoreConfig struct {
	Path       string `json:"path"` // empty means next to the config file
	MaxHandles int    `json:"maxHandles"`
}

// envOverrides are read from PICKFS_* variables. Pointers distinguish an
// unset variable from a false one.
type envOverrides struct {
	Host            string `envconfig:"HOST"`
	Debug           *bool  `envconfig:"DEBUG"`
	ForceRestricted *bool  `envconfig:"FORCE_RESTRICTED"`
	DirectoryInput  *bool  `envconfig:"DIRECTORY_INPUT"`
}

// Manager provides configuration management functionality
type Manager struct {
	configPath string
	log        *zap.Logger
}

// NewManager creates a new configuration manager
func NewManager(log *zap.Logger) *Manager {
	return NewManagerWithPath(getConfigPath(), log)
}

// NewManagerWithPath creates a manager for an explicit file.
func NewManagerWithPath(path string, log *zap.Logger) *Manager {
	return &Manager{configPath: path, log: logging.OrNop(log).Named("config")}
}

// Path returns the configuration file path.
func (m *Manager) Path() string { return m.configPath }

// Load loads configuration from file, merges it with defaults and applies
// environment overrides. The file may contain comments and trailing commas.
func (m *Manager) Load() (*Config, error) {
	config := getDefaultConfig()

	data, err := os.ReadFile(m.configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		m.log.Debug("config file not found, using defaults", zap.String("path", m.configPath))
	case err != nil:
		return nil, apperrors.NewConfigError("load", "cannot read config file", err)
	default:
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return nil, apperrors.NewConfigError("load", "invalid config syntax", err)
		}
		var fileConfig Config
		if err := json.Unmarshal(standardized, &fileConfig); err != nil {
			return nil, apperrors.NewConfigError("load", "error parsing config file", err)
		}
		mergeConfigs(config, &fileConfig)
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}

// Save writes configuration atomically.
func (m *Manager) Save(config *Config) error {
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0o755); err != nil {
		return apperrors.NewConfigError("save", "error creating config directory", err)
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return apperrors.NewConfigError("save", "error marshaling config", err)
	}
	if err := atomic.WriteFile(m.configPath, bytes.NewReader(data)); err != nil {
		return apperrors.NewConfigError("save", "error writing config file", err)
	}
	m.log.Debug("config saved", zap.String("path", m.configPath))
	return nil
}

// StorePath resolves the handle store file.
func (m *Manager) StorePath(c *Config) string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(filepath.Dir(m.configPath), "handles.json")
}

func applyEnv(c *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return apperrors.NewConfigError("env", "invalid "+EnvPrefix+"_* variable", err)
	}
	if env.Host != "" {
		c.Host.Kind = strings.ToLower(env.Host)
	}
	if env.Debug != nil {
		c.Host.Debug = *env.Debug
	}
	if env.ForceRestricted != nil {
		c.Host.ForceRestricted = *env.ForceRestricted
	}
	if env.DirectoryInput != nil {
		c.Host.DirectoryInput = *env.DirectoryInput
	}
	return nil
}

// Validate checks values a user can get wrong.
func (c *Config) Validate() error {
	if c.Host.Kind != "auto" {
		if _, err := capability.ParseHostKind(c.Host.Kind); err != nil {
			return apperrors.NewConfigError("validate", fmt.Sprintf("unknown host kind %q", c.Host.Kind), err)
		}
	}
	if c.Store.MaxHandles < 0 {
		return apperrors.NewConfigError("validate", "store.maxHandles must not be negative", nil)
	}
	return nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  800,
			Height: 600,
		},
		Host: HostConfig{
			Kind:           "auto",
			DirectoryInput: true,
		},
		Picker: PickerConfig{
			Extensions:  []string{".csv", ".json", ".parquet"},
			Description: "Data files",
			Multiple:    true,
			RecentDirectories: RecentDirectoriesConfig{
				MaxEntries: 20,
				Entries:    make([]string, 0),
				LastUsed:   make(map[string]time.Time),
			},
		},
		Store: StoreConfig{
			MaxHandles: 32,
		},
	}
}

// getConfigPath returns the path to the configuration file following OS conventions
func getConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %APPDATA%\pickfs\config.json
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "config.json"
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, "pickfs")

	case "darwin":
		// macOS: ~/Library/Application Support/pickfs/config.json
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.json"
		}
		configDir = filepath.Join(home, "Library", "Application Support", "pickfs")

	default:
		// Linux/Unix: $XDG_CONFIG_HOME/pickfs/config.json or ~/.config/pickfs/config.json
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "config.json"
			}
			xdgConfigHome = filepath.Join(home, ".config")
		}
		configDir = filepath.Join(xdgConfigHome, "pickfs")
	}

	return filepath.Join(configDir, "config.json")
}

// mergeConfigs merges file config values into default config
func mergeConfigs(defaultConfig *Config, fileConfig *Config) {
	if fileConfig.Window.Width != 0 {
		defaultConfig.Window.Width = fileConfig.Window.Width
	}
	if fileConfig.Window.Height != 0 {
		defaultConfig.Window.Height = fileConfig.Window.Height
	}

	// Note: for bool values, we can't distinguish between false and unset, so we always use file value
	if fileConfig.Host.Kind != "" {
		defaultConfig.Host.Kind = fileConfig.Host.Kind
	}
	defaultConfig.Host.ForceRestricted = fileConfig.Host.ForceRestricted
	defaultConfig.Host.DirectoryInput = fileConfig.Host.DirectoryInput
	defaultConfig.Host.Debug = fileConfig.Host.Debug

	if fileConfig.Picker.Extensions != nil {
		defaultConfig.Picker.Extensions = fileConfig.Picker.Extensions
	}
	if fileConfig.Picker.Description != "" {
		defaultConfig.Picker.Description = fileConfig.Picker.Description
	}
	defaultConfig.Picker.Multiple = fileConfig.Picker.Multiple

	recent := &fileConfig.Picker.RecentDirectories
	if recent.MaxEntries != 0 {
		defaultConfig.Picker.RecentDirectories.MaxEntries = recent.MaxEntries
	}
	if recent.Entries != nil {
		defaultConfig.Picker.RecentDirectories.Entries = recent.Entries
	}
	if recent.LastUsed != nil {
		defaultConfig.Picker.RecentDirectories.LastUsed = recent.LastUsed
	}

	if fileConfig.Store.Path != "" {
		defaultConfig.Store.Path = fileConfig.Store.Path
	}
	if fileConfig.Store.MaxHandles != 0 {
		defaultConfig.Store.MaxHandles = fileConfig.Store.MaxHandles
	}
}

// AddRecentDirectory records a picked directory (newest first).
func (c *Config) AddRecentDirectory(path string) {
	recent := &c.Picker.RecentDirectories
	if recent.LastUsed == nil {
		recent.LastUsed = make(map[string]time.Time)
	}

	// Remove existing entry if it exists
	for i, entry := range recent.Entries {
		if entry == path {
			recent.Entries = append(recent.Entries[:i], recent.Entries[i+1:]...)
			break
		}
	}
	recent.Entries = append([]string{path}, recent.Entries...)
	recent.LastUsed[path] = time.Now()

	// Enforce max entries limit
	if recent.MaxEntries > 0 && len(recent.Entries) > recent.MaxEntries {
		for _, dropped := range recent.Entries[recent.MaxEntries:] {
			delete(recent.LastUsed, dropped)
		}
		recent.Entries = recent.Entries[:recent.MaxEntries]
	}
}

// FilterRecentDirectories filters entries by query (case-insensitive partial match)
func (c *Config) FilterRecentDirectories(query string) []string {
	if query == "" {
		return c.Picker.RecentDirectories.Entries
	}

	query = strings.ToLower(query)
	var filtered []string
	for _, path := range c.Picker.RecentDirectories.Entries {
		if strings.Contains(strings.ToLower(path), query) {
			filtered = append(filtered, path)
		}
	}
	return filtered
}
