// Package config loads studentrecords settings from defaults, an optional .env
// file, an optional YAML file, and STUDENTS_* environment variables, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers accepted by StorageConfig.Driver.
const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMemory   = "memory"
)

// Metrics backends accepted by MetricsConfig.Backend.
const (
	MetricsNone       = "none"
	MetricsExpvar     = "expvar"
	MetricsPrometheus = "prometheus"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "STUDENTS_"

// Config is the complete application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Backup  BackupConfig  `yaml:"backup"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// StorageConfig selects the snapshot driver.
type StorageConfig struct {
	Driver      string      `yaml:"driver"`
	Path        string      `yaml:"path"`
	SQLitePath  string      `yaml:"sqlite_path"`
	PostgresDSN string      `yaml:"postgres_dsn"`
	Redis       RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis snapshot driver.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// BackupConfig selects the blob store receiving snapshot backups.
type BackupConfig struct {
	Driver string   `yaml:"driver"`
	Root   string   `yaml:"root"`
	Prefix string   `yaml:"prefix"`
	Keep   int      `yaml:"keep"`
	S3     S3Config `yaml:"s3"`
}

// S3Config configures the S3 backup driver.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PathStyle       bool   `yaml:"path_style"`
}

// LogConfig configures zerolog output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// MetricsConfig selects the metrics recorder.
type MetricsConfig struct {
	Backend  string `yaml:"backend"`
	Textfile string `yaml:"textfile"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:      StorageFile,
			Path:        "students.json",
			SQLitePath:  "students.db",
			PostgresDSN: "postgres://localhost/studentrecords?sslmode=disable",
			Redis: RedisConfig{
				Addr: "localhost:6379",
				Key:  "studentrecords:records",
			},
		},
		Backup: BackupConfig{
			Driver: "fs",
			Root:   "backups",
			Prefix: "snapshots/",
			S3:     S3Config{Region: "us-east-1"},
		},
		Log:     LogConfig{Level: "warn"},
		Metrics: MetricsConfig{Backend: MetricsNone},
	}
}

// Load builds the configuration. envFile and path may be empty; a missing
// envFile is ignored while a missing explicit path is an error.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("load from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadDotEnv(envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Storage.Driver, "STORAGE_DRIVER")
	setString(&cfg.Storage.Path, "STORAGE_PATH")
	setString(&cfg.Storage.SQLitePath, "SQLITE_PATH")
	setString(&cfg.Storage.PostgresDSN, "POSTGRES_DSN")
	setString(&cfg.Storage.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Storage.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Storage.Redis.Key, "REDIS_KEY")
	setString(&cfg.Backup.Driver, "BACKUP_DRIVER")
	setString(&cfg.Backup.Root, "BACKUP_ROOT")
	setString(&cfg.Backup.Prefix, "BACKUP_PREFIX")
	setString(&cfg.Backup.S3.Bucket, "BACKUP_S3_BUCKET")
	setString(&cfg.Backup.S3.Region, "BACKUP_S3_REGION")
	setString(&cfg.Backup.S3.Endpoint, "BACKUP_S3_ENDPOINT")
	setString(&cfg.Backup.S3.AccessKeyID, "BACKUP_S3_ACCESS_KEY_ID")
	setString(&cfg.Backup.S3.SecretAccessKey, "BACKUP_S3_SECRET_ACCESS_KEY")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Metrics.Backend, "METRICS_BACKEND")
	setString(&cfg.Metrics.Textfile, "METRICS_TEXTFILE")
	if err := setInt(&cfg.Storage.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}
	if err := setInt(&cfg.Backup.Keep, "BACKUP_KEEP"); err != nil {
		return err
	}
	if err := setBool(&cfg.Backup.S3.PathStyle, "BACKUP_S3_PATH_STYLE"); err != nil {
		return err
	}
	return setBool(&cfg.Log.Pretty, "LOG_PRETTY")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || v == "" {
		return nil
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		*dst = true
	case "0", "false", "no":
		*dst = false
	default:
		return fmt.Errorf("%s%s: invalid boolean %q", EnvPrefix, key, v)
	}
	return nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageFile:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage path is required for the file driver")
		}
	case StorageSQLite, StoragePostgres, StorageMemory:
	case StorageRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("redis address is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Backup.Driver {
	case "fs", "memory":
	case "s3":
		if c.Backup.S3.Bucket == "" {
			return fmt.Errorf("backup s3 bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown backup driver %q", c.Backup.Driver)
	}
	if c.Backup.Keep < 0 {
		return fmt.Errorf("backup keep must not be negative")
	}
	switch c.Metrics.Backend {
	case "", MetricsNone, MetricsExpvar, MetricsPrometheus:
	default:
		return fmt.Errorf("unknown metrics backend %q", c.Metrics.Backend)
	}
	return nil
}
