package config

import "time"

// Config represents the main configuration structure
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Privacy   PrivacyConfig   `yaml:"privacy" mapstructure:"privacy"`
	Pseudonym PseudonymConfig `yaml:"pseudonym" mapstructure:"pseudonym"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
	Journal   JournalConfig   `yaml:"journal" mapstructure:"journal"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	WebSocket WebSocketConfig `yaml:"websocket" mapstructure:"websocket"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	RateLimit    struct {
		Enabled        bool `yaml:"enabled" mapstructure:"enabled"`
		RequestsPerMin int  `yaml:"requests_per_min" mapstructure:"requests_per_min"`
		Burst          int  `yaml:"burst" mapstructure:"burst"`
	} `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// PrivacyConfig contains detection configuration
type PrivacyConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Detectors lists enabled rule IDs, or "all"
	Detectors []string `yaml:"detectors" mapstructure:"detectors"`
	// MinConfidence is the lowest confidence reported: low, medium, or high
	MinConfidence string `yaml:"min_confidence" mapstructure:"min_confidence"`
}

// PseudonymConfig contains pseudonym engine configuration
type PseudonymConfig struct {
	// BracketOutput wraps pseudonyms in square brackets in rewritten text
	BracketOutput bool `yaml:"bracket_output" mapstructure:"bracket_output"`
}

// StorageConfig selects and tunes the key-value store backend
type StorageConfig struct {
	// Backend is one of: memory, redis, postgres
	Backend    string `yaml:"backend" mapstructure:"backend"`
	QuotaBytes int64  `yaml:"quota_bytes" mapstructure:"quota_bytes"`
	Redis      struct {
		URL            string `yaml:"url" mapstructure:"url"`
		KeyPrefix      string `yaml:"key_prefix" mapstructure:"key_prefix"`
		MaxConnections int    `yaml:"max_connections" mapstructure:"max_connections"`
		MinIdleConns   int    `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	} `yaml:"redis" mapstructure:"redis"`
	Postgres struct {
		DatabaseURL     string        `yaml:"database_url" mapstructure:"database_url"`
		MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
		MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	} `yaml:"postgres" mapstructure:"postgres"`
}

// JournalConfig contains audit journal configuration
type JournalConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// MinRetention is the window inside which entries are never evicted
	MinRetention time.Duration `yaml:"min_retention" mapstructure:"min_retention"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
		Path    string `yaml:"path" mapstructure:"path"`
	} `yaml:"file" mapstructure:"file"`
}

// WebSocketConfig contains live event feed configuration
type WebSocketConfig struct {
	Enabled             bool `yaml:"enabled" mapstructure:"enabled"`
	MaxConnections      int  `yaml:"max_connections" mapstructure:"max_connections"`
	BroadcastDetections bool `yaml:"broadcast_detections" mapstructure:"broadcast_detections"`
	BroadcastQuota      bool `yaml:"broadcast_quota" mapstructure:"broadcast_quota"`
}

// GetDefaults returns a configuration with sensible defaults
func GetDefaults() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Privacy: PrivacyConfig{
			Enabled:       true,
			Detectors:     []string{"all"},
			MinConfidence: "low",
		},
		Pseudonym: PseudonymConfig{
			BracketOutput: true,
		},
		Storage: StorageConfig{
			Backend:    "memory",
			QuotaBytes: 10 * 1024 * 1024,
		},
		Journal: JournalConfig{
			Enabled:      true,
			MinRetention: 7 * 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		WebSocket: WebSocketConfig{
			Enabled:             true,
			MaxConnections:      100,
			BroadcastDetections: true,
			BroadcastQuota:      true,
		},
	}

	cfg.Server.RateLimit.Enabled = true
	cfg.Server.RateLimit.RequestsPerMin = 300
	cfg.Server.RateLimit.Burst = 30

	cfg.Storage.Redis.URL = "redis://localhost:6379/0"
	cfg.Storage.Redis.KeyPrefix = "pseudoshield"
	cfg.Storage.Redis.MaxConnections = 10
	cfg.Storage.Redis.MinIdleConns = 2

	cfg.Storage.Postgres.MaxOpenConns = 10
	cfg.Storage.Postgres.MaxIdleConns = 2
	cfg.Storage.Postgres.ConnMaxLifetime = time.Hour

	return cfg
}
