package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Device     DeviceConfig     `yaml:"device"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Admin      AdminConfig      `yaml:"admin"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for operator web push notifications.
type PushConfig struct {
	Enabled    bool   `yaml:"enabled"`
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DeviceConfig holds the ESP8266 intermediary link configuration.
type DeviceConfig struct {
	BaseURL              string        `yaml:"base_url"`
	PollIntervalSeconds  int           `yaml:"poll_interval_seconds"`
	PollInterval         time.Duration `yaml:"-"` // Ignored by YAML parser
	RequestTimeoutSecs   int           `yaml:"request_timeout_seconds"`
	RequestTimeout       time.Duration `yaml:"-"`
	ReconnectGraceSecs   int           `yaml:"reconnect_grace_seconds"`
	ReconnectGracePeriod time.Duration `yaml:"-"`
	MessageLogSize       int           `yaml:"message_log_size"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "sqlite" or "postgres"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// AdminConfig holds the admin gate configuration.
type AdminConfig struct {
	MaxLoginAttempts int           `yaml:"max_login_attempts"`
	LockoutSeconds   int           `yaml:"lockout_seconds"`
	Lockout          time.Duration `yaml:"-"`
	TokenTTLMinutes  int           `yaml:"token_ttl_minutes"`
	TokenTTL         time.Duration `yaml:"-"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Device.BaseURL == "" {
		cfg.Device.BaseURL = "http://localhost:8000"
	}
	if cfg.Device.PollIntervalSeconds <= 0 {
		cfg.Device.PollIntervalSeconds = 5
	}
	cfg.Device.PollInterval = time.Duration(cfg.Device.PollIntervalSeconds) * time.Second

	if cfg.Device.RequestTimeoutSecs <= 0 {
		cfg.Device.RequestTimeoutSecs = 10
	}
	cfg.Device.RequestTimeout = time.Duration(cfg.Device.RequestTimeoutSecs) * time.Second

	if cfg.Device.ReconnectGraceSecs <= 0 {
		cfg.Device.ReconnectGraceSecs = 2
	}
	cfg.Device.ReconnectGracePeriod = time.Duration(cfg.Device.ReconnectGraceSecs) * time.Second

	if cfg.Device.MessageLogSize <= 0 {
		cfg.Device.MessageLogSize = 256
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "./data/kiosk.db"
	}

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	// The services endpoint carries the 1-second countdown, so the cache
	// must not outlive a tick.
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 1
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Admin.MaxLoginAttempts <= 0 {
		cfg.Admin.MaxLoginAttempts = 5
	}
	if cfg.Admin.LockoutSeconds <= 0 {
		cfg.Admin.LockoutSeconds = 60
	}
	cfg.Admin.Lockout = time.Duration(cfg.Admin.LockoutSeconds) * time.Second

	if cfg.Admin.TokenTTLMinutes <= 0 {
		cfg.Admin.TokenTTLMinutes = 30
	}
	cfg.Admin.TokenTTL = time.Duration(cfg.Admin.TokenTTLMinutes) * time.Minute

	return &cfg, nil
}
