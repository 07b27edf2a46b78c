// Package config loads the application configuration from a config.toml
// beside the executable, with defaults for everything it omits.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig is the full application configuration.
type AppConfig struct {
	Server  ServerConfig  `toml:"server"`
	Data    DataConfig    `toml:"data"`
	Google  GoogleConfig  `toml:"google"`
	Redmine RedmineConfig `toml:"redmine"`
	Import  ImportConfig  `toml:"import"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig holds storage locations.
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// GoogleConfig holds the Sheets API credential.
type GoogleConfig struct {
	CredentialsFile string `toml:"credentials_file"`
}

// RedmineConfig holds the Redmine API connection.
type RedmineConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// ImportConfig tunes import behavior.
type ImportConfig struct {
	// QuotaCooldownSeconds is the wait between rate-limited Sheets calls.
	QuotaCooldownSeconds int `toml:"quota_cooldown_seconds"`
	// MaxRetries is how many times a rate-limited call is retried.
	MaxRetries int `toml:"max_retries"`
	// DailyHour is the local hour (0-23) the daily import job fires at.
	DailyHour int `toml:"daily_hour"`
	// DailyEnabled turns the scheduler on.
	DailyEnabled bool `toml:"daily_enabled"`
}

// LoadConfigInfo reports which settings the file set explicitly.
type LoadConfigInfo struct {
	PortSpecified bool
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20264,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Google: GoogleConfig{
			CredentialsFile: "credentials.json",
		},
		Import: ImportConfig{
			QuotaCooldownSeconds: 60,
			MaxRetries:           3,
			DailyHour:            6,
			DailyEnabled:         false,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}
	serverAny, ok := raw["server"]
	if !ok {
		return false
	}
	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}
	_, ok = serverMap["port"]
	return ok
}

// GetExeDir returns the directory holding the executable.
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo loads config.toml from the executable's directory
// and reports load metadata. A missing file yields the defaults.
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{}
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, info, nil
		}
		return nil, info, err
	}

	info.PortSpecified = isPortSpecifiedInToml(data)

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, info, err
	}

	// Environment overrides for local runs and CI.
	if v := os.Getenv("TESTHUB_GOOGLE_CREDENTIALS"); v != "" {
		config.Google.CredentialsFile = v
	}
	if v := os.Getenv("TESTHUB_REDMINE_API_KEY"); v != "" {
		config.Redmine.APIKey = v
	}

	return config, info, nil
}

// LoadConfig loads config.toml from the executable's directory.
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig writes the configuration back to config.toml.
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	configPath := filepath.Join(exeDir, "config.toml")

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

// EnsureDataDir creates the data directory (and its uploads subdir)
// beside the executable and returns its path.
func EnsureDataDir(config *AppConfig) (string, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	dataDir := filepath.Join(exeDir, config.Data.DataDir)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(dataDir, "uploads"), 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}
