package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Redis    RedisConfig    `yaml:"redis"`
	AWS      AWSConfig      `yaml:"aws"`
	Search   SearchConfig   `yaml:"search"`
	Places   PlacesConfig   `yaml:"places"`
	Session  SessionConfig  `yaml:"session"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Push     PushConfig     `yaml:"push"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port               int           `yaml:"port"`
	Host               string        `yaml:"host"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds the relational store configuration
type DatabaseConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	DBName   string        `yaml:"dbname"`
	SSLMode  string        `yaml:"sslmode"`
	Timeout  time.Duration `yaml:"timeout"`
}

// MongoConfig holds the document store configuration
type MongoConfig struct {
	URI      string        `yaml:"uri"`
	Database string        `yaml:"database"`
	Timeout  time.Duration `yaml:"timeout"`
}

// RedisConfig holds the view queue configuration
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AWSConfig holds AWS configuration
type AWSConfig struct {
	Region     string `yaml:"region"`
	S3Bucket   string `yaml:"s3_bucket"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Endpoint   string `yaml:"endpoint"`
	DisableSSL bool   `yaml:"disable_ssl"`
	// Timeout bounds each S3, Rekognition and CloudSearch request
	Timeout time.Duration `yaml:"timeout"`
}

// SearchConfig holds the search domain configuration
type SearchConfig struct {
	Endpoint       string `yaml:"endpoint"`
	SortExpression string `yaml:"sort_expression"`
	MaxPageSize    int    `yaml:"max_page_size"`
}

// PlacesConfig holds the place lookup configuration
type PlacesConfig struct {
	BaseURL           string  `yaml:"base_url"`
	APIKey            string  `yaml:"api_key"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// SessionConfig holds session and realtime token configuration
type SessionConfig struct {
	Secret     string        `yaml:"secret"`
	Timeout    time.Duration `yaml:"timeout"`
	WSTokenTTL time.Duration `yaml:"ws_token_ttl"`
}

// JobsConfig holds scheduled job configuration
type JobsConfig struct {
	EnrichmentSchedule   string        `yaml:"enrichment_schedule"`
	SessionPurgeSchedule string        `yaml:"session_purge_schedule"`
	EnrichmentTimeout    time.Duration `yaml:"enrichment_timeout"`
	MaxRetries           int           `yaml:"max_retries"`
	BackoffInitial       time.Duration `yaml:"backoff_initial"`
	BackoffMax           time.Duration `yaml:"backoff_max"`
}

// PushConfig holds APNs configuration, push is disabled without a certificate
type PushConfig struct {
	CertFile     string `yaml:"cert_file"`
	CertPassword string `yaml:"cert_password"`
	Topic        string `yaml:"topic"`
	Production   bool   `yaml:"production"`
}

// Enabled reports whether a push certificate is configured
func (c PushConfig) Enabled() bool {
	return c.CertFile != ""
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Load reads configuration from a YAML file, then applies .env and environment overrides
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	var errs []error
	if c.Session.Secret == "" {
		errs = append(errs, errors.New("session.secret is required"))
	}
	if c.Mongo.URI == "" {
		errs = append(errs, errors.New("mongo.uri is required"))
	}
	if c.Database.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if c.Push.Enabled() && c.Push.Topic == "" {
		errs = append(errs, errors.New("push.topic is required when push.cert_file is set"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) applyEnv() {
	overrideString(&c.Database.Password, "DB_PASSWORD")
	overrideString(&c.Mongo.URI, "MONGO_URI")
	overrideString(&c.Redis.Password, "REDIS_PASSWORD")
	overrideString(&c.AWS.AccessKey, "AWS_ACCESS_KEY")
	overrideString(&c.AWS.SecretKey, "AWS_SECRET_KEY")
	overrideString(&c.Session.Secret, "JWT_SECRET")
	overrideString(&c.Places.APIKey, "PLACES_API_KEY")
	overrideString(&c.Push.CertPassword, "APNS_CERT_PASSWORD")
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func (c *Config) applyDefaults() {
	defaultInt(&c.Server.Port, 8080)
	defaultInt(&c.Server.RateLimitPerMinute, 600)
	defaultDuration(&c.Server.ShutdownTimeout, 15*time.Second)

	defaultInt(&c.Database.Port, 5432)
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	defaultDuration(&c.Database.Timeout, 5*time.Second)

	if c.Mongo.Database == "" {
		c.Mongo.Database = "photo_points"
	}
	defaultDuration(&c.Mongo.Timeout, 5*time.Second)

	defaultDuration(&c.AWS.Timeout, 10*time.Second)

	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}

	if c.Search.SortExpression == "" {
		c.Search.SortExpression = "_score"
	}
	defaultInt(&c.Search.MaxPageSize, 100)

	if c.Places.RequestsPerSecond <= 0 {
		c.Places.RequestsPerSecond = 5
	}

	defaultDuration(&c.Session.Timeout, 600*time.Second)
	defaultDuration(&c.Session.WSTokenTTL, 24*time.Hour)

	if c.Jobs.EnrichmentSchedule == "" {
		c.Jobs.EnrichmentSchedule = "0 0 3 * * *"
	}
	if c.Jobs.SessionPurgeSchedule == "" {
		c.Jobs.SessionPurgeSchedule = "0 */5 * * * *"
	}
	defaultDuration(&c.Jobs.EnrichmentTimeout, 30*time.Minute)
	defaultInt(&c.Jobs.MaxRetries, 3)
	defaultDuration(&c.Jobs.BackoffInitial, time.Second)
	defaultDuration(&c.Jobs.BackoffMax, 30*time.Second)

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	defaultInt(&c.Log.MaxSizeMB, 100)
	defaultInt(&c.Log.MaxBackups, 3)
	defaultInt(&c.Log.MaxAgeDays, 28)
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func defaultInt(dst *int, v int) {
	if *dst <= 0 {
		*dst = v
	}
}

func defaultDuration(dst *time.Duration, v time.Duration) {
	if *dst <= 0 {
		*dst = v
	}
}
