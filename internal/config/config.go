package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Storage StorageConfig `yaml:"storage" toml:"storage"`
	AWS     AWSConfig     `yaml:"aws" toml:"aws"`
	Index   IndexConfig   `yaml:"index" toml:"index"`
	Auth    AuthConfig    `yaml:"auth" toml:"auth"`
	Gallery GalleryConfig `yaml:"gallery" toml:"gallery"`
	Web     WebConfig     `yaml:"web" toml:"web"`
	Log     LogConfig     `yaml:"log" toml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port" toml:"port"`
	Host string `yaml:"host" toml:"host"`
}

// StorageConfig describes where credentials and photos live
type StorageConfig struct {
	DataDir string `yaml:"data_dir" toml:"data_dir"`
	Backend string `yaml:"backend" toml:"backend"` // "local" or "s3"
}

// AWSConfig holds S3 configuration, used when storage.backend is "s3"
type AWSConfig struct {
	Region    string `yaml:"region" toml:"region"`
	S3Bucket  string `yaml:"s3_bucket" toml:"s3_bucket"`
	S3Prefix  string `yaml:"s3_prefix" toml:"s3_prefix"`
	AccessKey string `yaml:"access_key" toml:"access_key"`
	SecretKey string `yaml:"secret_key" toml:"secret_key"`
	Endpoint  string `yaml:"endpoint" toml:"endpoint"` // MinIO and other S3-compatible hosts
}

// IndexConfig holds the optional Postgres photo index
type IndexConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	Host     string `yaml:"host" toml:"host"`
	Port     int    `yaml:"port" toml:"port"`
	User     string `yaml:"user" toml:"user"`
	Password string `yaml:"password" toml:"password"`
	DBName   string `yaml:"dbname" toml:"dbname"`
	SSLMode  string `yaml:"sslmode" toml:"sslmode"`
}

// AuthConfig holds token settings
type AuthConfig struct {
	JWTSecret    string        `yaml:"jwt_secret" toml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl" toml:"token_ttl"`
	RequireToken bool          `yaml:"require_token" toml:"require_token"`
}

// GalleryConfig holds gallery behavior settings
type GalleryConfig struct {
	UploaderLabel  string `yaml:"uploader_label" toml:"uploader_label"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" toml:"max_upload_bytes"`
}

// WebConfig holds the client application location
type WebConfig struct {
	DistDir string `yaml:"dist_dir" toml:"dist_dir"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "console" or "json"
}

// Default returns the configuration matching the historical fixed constants
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3001,
		},
		Storage: StorageConfig{
			DataDir: "data",
			Backend: "local",
		},
		Index: IndexConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Gallery: GalleryConfig{
			UploaderLabel:  "demo",
			MaxUploadBytes: 32 << 20,
		},
		Web: WebConfig{
			DistDir: "dist",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from a YAML or TOML file on top of the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail at first use
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Storage.DataDir == "" {
		return errors.New("storage.data_dir is required")
	}
	switch c.Storage.Backend {
	case "local":
	case "s3":
		if c.AWS.S3Bucket == "" {
			return errors.New("aws.s3_bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Auth.RequireToken && c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required when auth.require_token is set")
	}
	if c.Gallery.MaxUploadBytes <= 0 {
		return errors.New("gallery.max_upload_bytes must be positive")
	}
	return nil
}

// CredentialsPath returns the location of the credential file
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.Storage.DataDir, "credentials.dat")
}

// PhotosDir returns the location of the local photo directory
func (c *Config) PhotosDir() string {
	return filepath.Join(c.Storage.DataDir, "photos")
}

// DSN returns the PostgreSQL connection string
func (c *IndexConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
