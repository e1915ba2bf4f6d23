package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file and the environment.
type Config struct {
	API     APIConfig     `toml:"api"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
}

// APIConfig contains the catalogue backend location and service credentials.
type APIConfig struct {
	BaseURL   string  `toml:"base_url"`
	Token     string  `toml:"token"`
	Timeout   string  `toml:"timeout"`
	RateLimit float64 `toml:"rate_limit"`
}

// StorageConfig selects and configures the persisted local key/value store.
type StorageConfig struct {
	Driver        string `toml:"driver"`
	Path          string `toml:"path"`
	MaxOpenConns  int    `toml:"max_open_conns"`
	MaxIdleConns  int    `toml:"max_idle_conns"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Prefix        string `toml:"prefix"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// RequestTimeout parses [APIConfig.Timeout], falling back to 15 seconds.
func (c APIConfig) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes the configuration to path as TOML, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ApplyEnv overlays REELX_* environment variables onto the configuration.
//
// Values are taken as given; the API base URL and token are not validated beyond presence.
func ApplyEnv(config *Config) *Config {
	config.API.BaseURL = getString("REELX_API_BASE_URL", config.API.BaseURL)
	config.API.Token = getString("REELX_API_TOKEN", config.API.Token)
	config.API.Timeout = getString("REELX_API_TIMEOUT", config.API.Timeout)
	config.API.RateLimit = getFloat("REELX_API_RATE_LIMIT", config.API.RateLimit)

	config.Storage.Driver = strings.ToLower(getString("REELX_STORAGE_DRIVER", config.Storage.Driver))
	config.Storage.Path = getString("REELX_STORAGE_PATH", config.Storage.Path)
	config.Storage.RedisAddr = getString("REELX_REDIS_ADDR", config.Storage.RedisAddr)
	config.Storage.RedisPassword = getString("REELX_REDIS_PASSWORD", config.Storage.RedisPassword)
	config.Storage.RedisDB = getInt("REELX_REDIS_DB", config.Storage.RedisDB)

	config.Log.Level = getString("REELX_LOG_LEVEL", config.Log.Level)
	return config
}

// ConfigPath returns the configuration file path from REELX_CONFIG, defaulting to config.toml.
func ConfigPath() string {
	return getString("REELX_CONFIG", "config.toml")
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return f
}
