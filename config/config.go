package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultMaxFileSize is the upload ceiling checked against the declared request size.
	DefaultMaxFileSize int64 = 700000000
	// DefaultDownloadsFolder is where zip artifacts are written.
	DefaultDownloadsFolder = "files_dir"
)

type Config struct {
	Port               int
	DatabaseURL        string
	DownloadsFolder    string
	MaxFileSize        int64
	BaseURL            string
	QRSize             int
	IDMaxShortAttempts int
	UploadTimeout      time.Duration
	GinMode            string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	Log     LogConfig
	Storage StorageConfig
}

type LogConfig struct {
	Level  string
	Format string
	Output string
	File   string
}

// RedisEnabled reports whether identifier reservation through Redis is configured.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.RedisHost) != ""
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8000)
	v.SetDefault("database_url", "sqlite://files.db")
	v.SetDefault("downloads_folder", DefaultDownloadsFolder)
	v.SetDefault("max_file_size", DefaultMaxFileSize)
	v.SetDefault("base_url", "")
	v.SetDefault("qr_size", 256)
	v.SetDefault("id_max_short_attempts", 64)
	v.SetDefault("upload_timeout", 10*time.Minute)
	v.SetDefault("gin_mode", "release")

	v.SetDefault("redis_host", "")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("log_output", "console")
	v.SetDefault("log_file", "logs/share.log")

	v.SetDefault("artifact_backend", BackendLocal)
	v.SetDefault("minio_host", "localhost")
	v.SetDefault("minio_port", "9000")
	v.SetDefault("minio_username", "minioadmin")
	v.SetDefault("minio_password", "minioadmin")
	v.SetDefault("minio_use_ssl", false)
	v.SetDefault("bucket_name", "go-share")
}

// InitConfig loads .env (if present), an optional config file named by CONFIG_FILE,
// and the process environment, in increasing order of precedence.
func InitConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded, using environment variables")
	}
	return Load(viper.New())
}

// Load builds a Config from the given viper instance.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Port:               v.GetInt("port"),
		DatabaseURL:        strings.TrimSpace(v.GetString("database_url")),
		DownloadsFolder:    strings.TrimSpace(v.GetString("downloads_folder")),
		MaxFileSize:        v.GetInt64("max_file_size"),
		BaseURL:            strings.TrimRight(strings.TrimSpace(v.GetString("base_url")), "/"),
		QRSize:             v.GetInt("qr_size"),
		IDMaxShortAttempts: v.GetInt("id_max_short_attempts"),
		UploadTimeout:      v.GetDuration("upload_timeout"),
		GinMode:            v.GetString("gin_mode"),
		RedisHost:          v.GetString("redis_host"),
		RedisPort:          v.GetString("redis_port"),
		RedisPassword:      v.GetString("redis_password"),
		RedisDB:            v.GetInt("redis_db"),
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
			Output: v.GetString("log_output"),
			File:   v.GetString("log_file"),
		},
		Storage: loadStorageConfig(v),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return errors.New("database_url is required")
	}
	if c.DownloadsFolder == "" {
		return errors.New("downloads_folder is required")
	}
	if c.MaxFileSize <= 0 {
		return errors.New("max_file_size must be positive")
	}
	if c.QRSize <= 0 {
		c.QRSize = 256
	}
	if c.IDMaxShortAttempts <= 0 {
		c.IDMaxShortAttempts = 64
	}
	if c.UploadTimeout <= 0 {
		c.UploadTimeout = 10 * time.Minute
	}
	return c.Storage.Validate()
}
