// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the persisted user configuration.
type Config struct {
	Token           string `yaml:"token"`
	Theme           string `yaml:"theme"`
	CacheTTLMinutes int    `yaml:"cache_ttl_minutes"`
	WaybarFormat    string `yaml:"waybar_format"`
	Username        string `yaml:"username,omitempty"`
}

// Default values
const (
	defaultTheme        = "dark"
	defaultTTLMinutes   = 5
	defaultWaybarFormat = "{percentage}%"
)

// Default returns a configuration populated with defaults and no token.
func Default() *Config {
	return &Config{
		Theme:           defaultTheme,
		CacheTTLMinutes: defaultTTLMinutes,
		WaybarFormat:    defaultWaybarFormat,
	}
}

// Manager loads and saves the configuration file.
type Manager struct {
	path string
}

// NewManager resolves the configuration path and ensures its directory
// exists. Env files and COPILOT_USAGE_CONFIG override the default location.
func NewManager() (*Manager, error) {
	for _, path := range envPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	path := getEnvString("COPILOT_USAGE_CONFIG", defaultConfigPath())
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	return &Manager{path: path}, nil
}

// NewManagerWithPath creates a Manager for a specific file, used in tests.
func NewManagerWithPath(path string) *Manager {
	return &Manager{path: path}
}

// Path returns the configuration file location.
func (m *Manager) Path() string {
	return m.path
}

// Load reads the configuration. A missing file returns (nil, nil) so the
// caller can trigger first-run setup.
func (m *Manager) Load() (*Config, error) {
	content, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.CacheTTLMinutes <= 0 {
		cfg.CacheTTLMinutes = defaultTTLMinutes
	}
	if cfg.WaybarFormat == "" {
		cfg.WaybarFormat = defaultWaybarFormat
	}
	if cfg.Theme == "" {
		cfg.Theme = defaultTheme
	}

	return cfg, nil
}

// Save writes the configuration. The file holds a credential, so it is
// created user-readable only.
func (m *Manager) Save(cfg *Config) error {
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(m.path, content, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// envPaths returns a list of paths to check for .env files.
func envPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "copilot-usage", ".env"),
		)
	}

	return paths
}

// defaultConfigPath returns the default path for the YAML config file.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "copilot-usage", "config.yaml")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
