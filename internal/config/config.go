// Package config resolves client settings from defaults, the config
// file and the environment, in that order.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults. The backend address matches the development server.
const (
	DefaultServerURL      = "http://127.0.0.1:5000"
	DefaultTimeoutSeconds = 30
)

// Env var names. A .env file in the working directory is honored too.
const (
	envServerURL = "CHATLINE_SERVER_URL"
	envTimeout   = "CHATLINE_TIMEOUT"
	envStateDir  = "CHATLINE_STATE_DIR"
)

// Config holds the client's persistent settings.
type Config struct {
	ServerURL      string `json:"server_url,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	StateDir       string `json:"state_dir,omitempty"` // where the session file lives
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Manager handles loading and saving the configuration.
type Manager struct {
	configDir string
}

// NewManager creates a configuration manager rooted at the user config
// dir.
func NewManager() (*Manager, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user config dir: %w", err)
	}
	return &Manager{
		configDir: filepath.Join(configDir, "chatline"),
	}, nil
}

// NewManagerAt creates a manager rooted at an explicit directory.
func NewManagerAt(dir string) *Manager {
	return &Manager{configDir: dir}
}

// GetConfigPath returns the absolute path to the config.json file.
func (m *Manager) GetConfigPath() string {
	return filepath.Join(m.configDir, "config.json")
}

// Load resolves the effective configuration: defaults, then the config
// file when present, then environment overrides.
func (m *Manager) Load() (*Config, error) {
	cfg := &Config{
		ServerURL:      DefaultServerURL,
		TimeoutSeconds: DefaultTimeoutSeconds,
		StateDir:       m.configDir,
	}

	path := m.GetConfigPath()
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg Config
		if err := json.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to parse config json: %w", err)
		}
		if fileCfg.ServerURL != "" {
			cfg.ServerURL = fileCfg.ServerURL
		}
		if fileCfg.TimeoutSeconds > 0 {
			cfg.TimeoutSeconds = fileCfg.TimeoutSeconds
		}
		if fileCfg.StateDir != "" {
			cfg.StateDir = fileCfg.StateDir
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

// Save writes the configuration to disk.
func (m *Manager) Save(cfg *Config) error {
	if err := os.MkdirAll(m.configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.GetConfigPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(envServerURL); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv(envTimeout); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.TimeoutSeconds = secs
		}
	}
	if v := os.Getenv(envStateDir); v != "" {
		cfg.StateDir = v
	}
}
