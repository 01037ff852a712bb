package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	AWS      AWSConfig      `yaml:"aws"`
	JWT      JWTConfig      `yaml:"jwt"`
	Log      LogConfig      `yaml:"log"`
	Uploads  UploadsConfig  `yaml:"uploads"`
	Redis    RedisConfig    `yaml:"redis"`
	APNs     APNsConfig     `yaml:"apns"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	Migrate  bool   `yaml:"migrate"`
}

// AWSConfig holds S3 configuration for image storage. An empty bucket
// keeps uploads on local disk.
type AWSConfig struct {
	Region    string `yaml:"region"`
	S3Bucket  string `yaml:"s3_bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
	PublicURL string `yaml:"public_url"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret   string `yaml:"secret"`
	TTLHours int    `yaml:"ttl_hours"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// UploadsConfig holds local image storage configuration
type UploadsConfig struct {
	Dir         string `yaml:"dir"`
	PublicPath  string `yaml:"public_path"`
	DefaultExt  string `yaml:"default_ext"`
	MaxMemoryMB int    `yaml:"max_memory_mb"`
}

// RedisConfig holds the notification fan-out connection. An empty address
// disables Redis.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// APNsConfig holds token-based Apple push configuration. An empty key file
// disables push.
type APNsConfig struct {
	KeyFile    string `yaml:"key_file"`
	KeyID      string `yaml:"key_id"`
	TeamID     string `yaml:"team_id"`
	Topic      string `yaml:"topic"`
	Production bool   `yaml:"production"`
}

// Load reads configuration from a YAML file. Values from a .env file and
// FITFEED_* environment variables take precedence over the file.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// environment only
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Host, "FITFEED_HOST")
	if err := setInt(&c.Server.Port, "FITFEED_PORT"); err != nil {
		return err
	}
	setString(&c.Database.Host, "FITFEED_DB_HOST")
	if err := setInt(&c.Database.Port, "FITFEED_DB_PORT"); err != nil {
		return err
	}
	setString(&c.Database.User, "FITFEED_DB_USER")
	setString(&c.Database.Password, "FITFEED_DB_PASSWORD")
	setString(&c.Database.DBName, "FITFEED_DB_NAME")
	setString(&c.JWT.Secret, "FITFEED_JWT_SECRET")
	setString(&c.Log.Level, "FITFEED_LOG_LEVEL")
	setString(&c.Uploads.Dir, "FITFEED_UPLOADS_DIR")
	setString(&c.AWS.S3Bucket, "FITFEED_S3_BUCKET")
	setString(&c.AWS.AccessKey, "FITFEED_AWS_ACCESS_KEY")
	setString(&c.AWS.SecretKey, "FITFEED_AWS_SECRET_KEY")
	setString(&c.Redis.Addr, "FITFEED_REDIS_ADDR")
	setString(&c.Redis.Password, "FITFEED_REDIS_PASSWORD")
	setString(&c.APNs.KeyFile, "FITFEED_APNS_KEY_FILE")
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.JWT.TTLHours <= 0 {
		c.JWT.TTLHours = 24
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Uploads.Dir == "" {
		c.Uploads.Dir = "uploads"
	}
	if c.Uploads.PublicPath == "" {
		c.Uploads.PublicPath = "/uploads"
	}
	if c.Uploads.DefaultExt == "" {
		c.Uploads.DefaultExt = ".jpg"
	}
	if c.Uploads.MaxMemoryMB <= 0 {
		c.Uploads.MaxMemoryMB = 32
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
