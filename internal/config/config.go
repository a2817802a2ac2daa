// ABOUTME: Centralized configuration for the Olympus client
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Storage backends
const (
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"
	BackendMemory = "memory"
)

// Config holds all configuration for the client
type Config struct {
	// Storage settings
	Backend     string
	DataDir     string
	CharmHost   string
	CharmDBName string
	AutoSync    bool

	// OpenAI settings
	OpenAIKey     string
	ChatModel     string
	RealtimeModel string
	RealtimeURL   string
	Voice         string
	Timeout       time.Duration

	// Oura settings
	OuraToken   string
	OuraBaseURL string

	// Runtime settings
	Debug          bool
	NotifyInterval time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Backend:        getEnv("OLYMPUS_BACKEND", BackendSQLite),
		DataDir:        getEnv("OLYMPUS_DATA_DIR", DefaultDataDir()),
		CharmHost:      getEnv("CHARM_HOST", "cloud.charm.sh"),
		CharmDBName:    getEnv("CHARM_DB", "olympus"),
		AutoSync:       getEnvBool("CHARM_AUTO_SYNC", true),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		ChatModel:      getEnv("OLYMPUS_CHAT_MODEL", "gpt-4o-mini"),
		RealtimeModel:  getEnv("OLYMPUS_REALTIME_MODEL", "gpt-4o-realtime-preview"),
		RealtimeURL:    getEnv("OLYMPUS_REALTIME_URL", "wss://api.openai.com/v1/realtime"),
		Voice:          getEnv("OLYMPUS_VOICE", "alloy"),
		Timeout:        getEnvDuration("OPENAI_TIMEOUT", 60*time.Second),
		OuraToken:      os.Getenv("OURA_TOKEN"),
		OuraBaseURL:    getEnv("OURA_BASE_URL", "https://api.ouraring.com"),
		Debug:          getEnvBool("OLYMPUS_DEBUG", false),
		NotifyInterval: getEnvDuration("OLYMPUS_NOTIFY_INTERVAL", time.Minute),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendCharm, BackendMemory:
	default:
		return fmt.Errorf("OLYMPUS_BACKEND must be sqlite, charm or memory, got %q", c.Backend)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("OPENAI_TIMEOUT must be positive, got %v", c.Timeout)
	}
	if c.NotifyInterval < time.Second {
		return fmt.Errorf("OLYMPUS_NOTIFY_INTERVAL must be at least 1s, got %v", c.NotifyInterval)
	}
	return nil
}

// DBPath returns the sqlite file used by the sqlite backend
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "olympus.db")
}

// LogDir returns the directory for rotated log files
func (c *Config) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// DefaultDataDir returns $XDG_DATA_HOME/olympus, falling back to ~/.local/share/olympus
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".local", "share", "olympus")
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "olympus")
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
