// Package config loads server configuration from an optional YAML file and
// the environment. Environment variables win over the file; the file wins
// over the defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends for the cart and auth snapshots.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Directory backends for the account directory.
const (
	DirectoryMemory = "memory"
	DirectorySQLite = "sqlite"
)

// Config is everything the server needs to start.
type Config struct {
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	// Storage picks where store snapshots go: memory, file, sqlite or redis.
	Storage string `yaml:"storage"`
	// DataDir is the FileStorage root.
	DataDir string `yaml:"dataDir"`
	// DBPath is the SQLite file, used by the sqlite storage and directory.
	DBPath string `yaml:"dbPath"`

	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisPrefix   string `yaml:"redisPrefix"`

	// Directory picks the account directory: memory or sqlite.
	Directory string `yaml:"directory"`

	AuthLatency    time.Duration `yaml:"authLatency"`
	PaymentLatency time.Duration `yaml:"paymentLatency"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:           8080,
		LogLevel:       "info",
		Storage:        StorageFile,
		DataDir:        "data",
		DBPath:         "data/modernshop.db",
		RedisAddr:      "localhost:6379",
		RedisPrefix:    "modernshop:",
		Directory:      DirectoryMemory,
		AuthLatency:    1 * time.Second,
		PaymentLatency: 3 * time.Second,
	}
}

// Load builds the configuration. path may be empty, in which case only the
// defaults and the environment are used.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("STORAGE"); v != "" {
		cfg.Storage = strings.ToLower(v)
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("DIRECTORY"); v != "" {
		cfg.Directory = strings.ToLower(v)
	}

	var err error
	if cfg.AuthLatency, err = durationEnv("AUTH_LATENCY", cfg.AuthLatency); err != nil {
		return err
	}
	if cfg.PaymentLatency, err = durationEnv("PAYMENT_LATENCY", cfg.PaymentLatency); err != nil {
		return err
	}
	return nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("config: invalid %s %q: %w", name, v, err)
	}
	return d, nil
}

// Validate reports the first setting that can't work.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	switch c.Storage {
	case StorageMemory:
	case StorageFile:
		if c.DataDir == "" {
			return errors.New("config: dataDir is required for file storage")
		}
	case StorageSQLite:
		if c.DBPath == "" {
			return errors.New("config: dbPath is required for sqlite storage")
		}
	case StorageRedis:
		if c.RedisAddr == "" {
			return errors.New("config: redisAddr is required for redis storage")
		}
	default:
		return fmt.Errorf("config: unknown storage %q (want memory, file, sqlite or redis)", c.Storage)
	}

	switch c.Directory {
	case DirectoryMemory:
	case DirectorySQLite:
		if c.DBPath == "" {
			return errors.New("config: dbPath is required for the sqlite directory")
		}
	default:
		return fmt.Errorf("config: unknown directory %q (want memory or sqlite)", c.Directory)
	}

	if c.AuthLatency < 0 || c.PaymentLatency < 0 {
		return errors.New("config: latencies must not be negative")
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// UsesSQLite reports whether any component needs the SQLite database.
func (c Config) UsesSQLite() bool {
	return c.Storage == StorageSQLite || c.Directory == DirectorySQLite
}
