package config

import (
	"fmt"
	"time"
)

// Config represents the editor service configuration
type Config struct {
	// Server holds the HTTP front door settings
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Storage holds durable store settings
	Storage StorageConfig `json:"storage" mapstructure:"storage"`

	// Cache holds the optional redis cache settings
	Cache CacheConfig `json:"cache" mapstructure:"cache"`

	// Document holds per-document actor tuning
	Document DocumentConfig `json:"document" mapstructure:"document"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr           string   `json:"addr" mapstructure:"addr"`
	AllowedOrigins []string `json:"allowed_origins" mapstructure:"allowed_origins"`
}

// StorageConfig holds durable store configuration
type StorageConfig struct {
	Driver        string `json:"driver" mapstructure:"driver"` // sqlite, memory
	Path          string `json:"path" mapstructure:"path"`     // sqlite database path
	EncryptionKey string `json:"encryption_key" mapstructure:"encryption_key"`
}

// CacheConfig holds redis cache configuration. An empty Addr disables the
// cache entirely; the service works without it.
type CacheConfig struct {
	Addr     string        `json:"addr" mapstructure:"addr"`
	Password string        `json:"password" mapstructure:"password"`
	DB       int           `json:"db" mapstructure:"db"`
	TTL      time.Duration `json:"ttl" mapstructure:"ttl"`
}

// DocumentConfig holds per-document actor tuning
type DocumentConfig struct {
	// SaveInterval is both the debounce window and the periodic
	// durability tick period.
	SaveInterval time.Duration `json:"save_interval" mapstructure:"save_interval"`

	// IdleTimeout is how long an actor with no sessions survives before
	// the janitor reclaims it.
	IdleTimeout time.Duration `json:"idle_timeout" mapstructure:"idle_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `json:"level" mapstructure:"level"`
	File    string `json:"file" mapstructure:"file"`
	Console bool   `json:"console" mapstructure:"console"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8787",
			AllowedOrigins: []string{"https://*", "http://*"},
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "editor.db",
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
		Document: DocumentConfig{
			SaveInterval: 60 * time.Second,
			IdleTimeout:  10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}

	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the sqlite driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}

	if c.Document.SaveInterval <= 0 {
		return fmt.Errorf("document.save_interval must be positive")
	}
	if c.Document.IdleTimeout <= 0 {
		return fmt.Errorf("document.idle_timeout must be positive")
	}
	if c.Cache.Addr != "" && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when the cache is enabled")
	}

	return nil
}
