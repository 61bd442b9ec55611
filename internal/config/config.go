package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the roadwatch configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Security SecurityConfig `yaml:"security"`
	Drive    DriveConfig    `yaml:"drive"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	HTTPPort        int           `yaml:"http_port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	Backend  string      `yaml:"backend"`
	Data     string      `yaml:"data"`
	Database string      `yaml:"database"`
	Redis    RedisConfig `yaml:"redis"`
}

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// SecurityConfig holds password hashing settings.
type SecurityConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

// DriveConfig holds the simulated speed readout settings.
type DriveConfig struct {
	Interval   time.Duration `yaml:"interval"`
	MaxDrives  int           `yaml:"max_drives"`
	StartSpeed float64       `yaml:"start_speed"`
	MinSpeed   float64       `yaml:"min_speed"`
	MaxSpeed   float64       `yaml:"max_speed"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration used when a key is absent from the file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8000,
			ShutdownTimeout: 5 * time.Second,
		},
		Storage: StorageConfig{
			Backend:  BackendSQLite,
			Data:     "./data",
			Database: "./data/roadwatch.db",
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "roadwatch:",
			},
		},
		Security: SecurityConfig{
			BcryptCost: 12,
		},
		Drive: DriveConfig{
			Interval:   2 * time.Second,
			MaxDrives:  16,
			StartSpeed: 45,
			MinSpeed:   40,
			MaxSpeed:   50,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects settings the services cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port %d", c.Server.HTTPPort)
	}
	if c.Drive.Interval <= 0 {
		return fmt.Errorf("drive interval must be positive")
	}
	if c.Drive.MaxDrives <= 0 {
		return fmt.Errorf("max_drives must be > 0")
	}
	if c.Drive.MinSpeed > c.Drive.MaxSpeed {
		return fmt.Errorf("min_speed %.1f exceeds max_speed %.1f", c.Drive.MinSpeed, c.Drive.MaxSpeed)
	}
	return nil
}
