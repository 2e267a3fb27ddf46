package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable, e.g. CERTIFLY_SERVER_ADDR.
const EnvPrefix = "CERTIFLY"

const devJWTSigningKey = "dev-secret-key-change-in-production"

// Config is the full service configuration. Values come from defaults, then
// an optional YAML file, then environment variables.
type Config struct {
	Environment string          `yaml:"environment" envconfig:"ENV"`
	Server      ServerConfig    `yaml:"server"`
	Auth        AuthConfig      `yaml:"auth"`
	Database    DatabaseConfig  `yaml:"database"`
	Redis       RedisConfig     `yaml:"redis"`
	Storage     StorageConfig   `yaml:"storage"`
	Oracle      UpstreamConfig  `yaml:"oracle"`
	Ledger      UpstreamConfig  `yaml:"ledger"`
	Minter      UpstreamConfig  `yaml:"minter"`
	Kafka       KafkaConfig     `yaml:"kafka"`
	RateLimit   RateLimitConfig `yaml:"rateLimit" split_words:"true"`
	Log         LogConfig       `yaml:"log"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string        `yaml:"addr"            split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" split_words:"true"`
}

// AuthConfig configures session credentials.
type AuthConfig struct {
	JWTSigningKey string        `yaml:"jwtSigningKey" envconfig:"JWT_SIGNING_KEY"`
	Issuer        string        `yaml:"issuer"`
	Audience      string        `yaml:"audience"`
	SessionTTL    time.Duration `yaml:"sessionTTL"    envconfig:"SESSION_TTL"`
}

// DatabaseConfig configures PostgreSQL. An empty URL selects in-memory stores.
type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"maxOpenConns"    split_words:"true"`
	MaxIdleConns    int           `yaml:"maxIdleConns"    split_words:"true"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime" split_words:"true"`
}

// RedisConfig configures the credential revocation list backend.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"poolSize"     split_words:"true"`
	MinIdleConns int           `yaml:"minIdleConns" split_words:"true"`
	DialTimeout  time.Duration `yaml:"dialTimeout"  split_words:"true"`
	ReadTimeout  time.Duration `yaml:"readTimeout"  split_words:"true"`
	WriteTimeout time.Duration `yaml:"writeTimeout" split_words:"true"`
}

// StorageConfig configures the S3-compatible document store. An empty bucket
// selects the in-memory store.
type StorageConfig struct {
	Bucket          string        `yaml:"bucket"`
	Region          string        `yaml:"region"`
	Endpoint        string        `yaml:"endpoint"`
	AccessKeyID     string        `yaml:"accessKeyID"     envconfig:"ACCESS_KEY_ID"`
	SecretAccessKey string        `yaml:"secretAccessKey" envconfig:"SECRET_ACCESS_KEY"`
	PublicBaseURL   string        `yaml:"publicBaseURL"   envconfig:"PUBLIC_BASE_URL"`
	PresignTTL      time.Duration `yaml:"presignTTL"      envconfig:"PRESIGN_TTL"`
	MaxDocumentSize int64         `yaml:"maxDocumentSize" split_words:"true"`
	VerifyBaseURL   string        `yaml:"verifyBaseURL"   envconfig:"VERIFY_BASE_URL"`
}

// UpstreamConfig configures one external collaborator. An empty BaseURL
// selects the deterministic local implementation.
type UpstreamConfig struct {
	BaseURL    string        `yaml:"baseURL"    envconfig:"BASE_URL"`
	APIKey     string        `yaml:"apiKey"     envconfig:"API_KEY"`
	GatewayURL string        `yaml:"gatewayURL" envconfig:"GATEWAY_URL"`
	Timeout    time.Duration `yaml:"timeout"`
}

// KafkaConfig configures the verification event stream. No brokers disables it.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// RateLimitConfig sets per-minute budgets. Counts live in Redis when it is
// configured, otherwise in process.
type RateLimitConfig struct {
	Disabled       bool `yaml:"disabled"`
	AuthPerMinute  int  `yaml:"authPerMinute"  split_words:"true"`
	ReadPerMinute  int  `yaml:"readPerMinute"  split_words:"true"`
	WritePerMinute int  `yaml:"writePerMinute" split_words:"true"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration suitable for local development.
func Default() *Config {
	return &Config{
		Environment: "dev",
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			Issuer:     "certifly",
			Audience:   "certifly-api",
			SessionTTL: 7 * 24 * time.Hour,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Storage: StorageConfig{
			Region:          "auto",
			PresignTTL:      15 * time.Minute,
			MaxDocumentSize: 10 << 20,
			VerifyBaseURL:   "https://certifly.in/verify",
		},
		Oracle: UpstreamConfig{Timeout: 30 * time.Second},
		Ledger: UpstreamConfig{Timeout: 60 * time.Second, GatewayURL: "https://arweave.net"},
		Minter: UpstreamConfig{Timeout: 60 * time.Second},
		Kafka:  KafkaConfig{Topic: "certifly.verification-log"},
		RateLimit: RateLimitConfig{
			AuthPerMinute:  10,
			ReadPerMinute:  120,
			WritePerMinute: 30,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration. path may be empty to skip the YAML file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if cfg.IsDev() && cfg.Auth.JWTSigningKey == "" {
		cfg.Auth.JWTSigningKey = devJWTSigningKey
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDev reports whether the service runs in development mode.
func (c *Config) IsDev() bool {
	return c.Environment == "" || c.Environment == "dev"
}

// Validate rejects configurations that cannot serve traffic.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSigningKey == "" {
		errs = append(errs, errors.New("auth.jwtSigningKey is required"))
	}
	if !c.IsDev() && c.Auth.JWTSigningKey == devJWTSigningKey {
		errs = append(errs, errors.New("auth.jwtSigningKey must be overridden outside dev"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("auth.sessionTTL must be positive"))
	}
	if c.Storage.MaxDocumentSize <= 0 {
		errs = append(errs, errors.New("storage.maxDocumentSize must be positive"))
	}
	if !c.RateLimit.Disabled && (c.RateLimit.AuthPerMinute <= 0 || c.RateLimit.ReadPerMinute <= 0 || c.RateLimit.WritePerMinute <= 0) {
		errs = append(errs, errors.New("rateLimit budgets must be positive unless rate limiting is disabled"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when brokers are set"))
	}
	return errors.Join(errs...)
}
