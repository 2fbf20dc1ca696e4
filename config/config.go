package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// PlaceholderToken is the shipped default access token. It is never usable.
const PlaceholderToken = "REPLACE_WITH_YOUR_NEW_FACEBOOK_ACCESS_TOKEN"

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Facebook FacebookConfig
	Download DownloadConfig
	Logs     LogsConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AWS      AWSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int    // 0 = no limit; batch downloads can run long
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// FacebookConfig holds Graph API (Ad Library) settings.
type FacebookConfig struct {
	AccessToken     string // FACEBOOK_ACCESS_TOKEN takes precedence over the placeholder default
	GraphURL        string
	APIVersion      string
	TimeoutSec      int
	DefaultCountry  string
	DefaultLanguage string // empty = no languages filter
}

// DownloadConfig holds batch download settings.
type DownloadConfig struct {
	Dir           string
	MaxConcurrent int
	TimeoutSec    int
}

// LogsConfig holds log level and in-memory capture settings.
type LogsConfig struct {
	Level      string
	BufferSize int
}

// DatabaseConfig holds PostgreSQL connection settings. Empty URL disables batch history.
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis connection settings. Empty Addr disables the mirror queue.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AWSConfig holds AWS credentials and the S3 bucket batches are mirrored to.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BatchBucket     string // empty = mirroring disabled
	BatchPrefix     string
}

// Enabled reports whether a database URL was configured.
func (c DatabaseConfig) Enabled() bool { return c.URL != "" }

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// MirrorEnabled reports whether batches should be mirrored to S3.
func (c AWSConfig) MirrorEnabled() bool { return c.Region != "" && c.BatchBucket != "" }

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "3001"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 0),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Facebook: FacebookConfig{
			AccessToken:     getEnv("FACEBOOK_ACCESS_TOKEN", PlaceholderToken),
			GraphURL:        strings.TrimRight(getEnv("FACEBOOK_GRAPH_URL", "https://graph.facebook.com"), "/"),
			APIVersion:      getEnv("FACEBOOK_API_VERSION", "v20.0"),
			TimeoutSec:      getEnvInt("FACEBOOK_TIMEOUT_SEC", 30),
			DefaultCountry:  getEnv("FACEBOOK_DEFAULT_COUNTRY", "BR"),
			DefaultLanguage: getEnv("FACEBOOK_DEFAULT_LANGUAGE", ""),
		},
		Download: DownloadConfig{
			Dir:           getEnv("DOWNLOADS_DIR", "downloads"),
			MaxConcurrent: getEnvInt("MAX_CONCURRENT_DOWNLOADS", 8),
			TimeoutSec:    getEnvInt("DOWNLOAD_TIMEOUT_SEC", 300),
		},
		Logs: LogsConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			BufferSize: getEnvInt("LOG_BUFFER_SIZE", 1000),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BatchBucket:     getEnv("AWS_S3_BATCH_BUCKET", ""),
			BatchPrefix:     strings.Trim(getEnv("AWS_S3_PREFIX", "batches"), "/"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	var errs []error
	if p, err := strconv.Atoi(c.Server.Port); err != nil || p <= 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %q", c.Server.Port))
	}
	if c.Download.MaxConcurrent <= 0 {
		errs = append(errs, fmt.Errorf("MAX_CONCURRENT_DOWNLOADS must be positive, got %d", c.Download.MaxConcurrent))
	}
	if c.Download.Dir == "" {
		errs = append(errs, errors.New("DOWNLOADS_DIR must not be empty"))
	}
	if c.Logs.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("LOG_BUFFER_SIZE must be positive, got %d", c.Logs.BufferSize))
	}
	if c.Facebook.GraphURL == "" || c.Facebook.APIVersion == "" {
		errs = append(errs, errors.New("FACEBOOK_GRAPH_URL and FACEBOOK_API_VERSION are required"))
	}
	return errors.Join(errs...)
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
