// Package config loads application configuration from defaults, an optional
// YAML file and HOTEL_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "HOTEL_"

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Key-value backends used by the memory driver.
const (
	KVMemory = "memory"
	KVFile   = "file"
	KVRedis  = "redis"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Storage   StorageConfig   `koanf:"storage"`
	Log       LogConfig       `koanf:"log"`
	JWT       JWTConfig       `koanf:"jwt"`
	CORS      CORSConfig      `koanf:"cors"`
	Booking   BookingConfig   `koanf:"booking"`
	Admin     AdminConfig     `koanf:"admin"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
}

// ServerConfig configures the HTTP servers.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              string        `koanf:"port" validate:"required"`
	MetricsPort       string        `koanf:"metrics_port" validate:"required"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	RequestTimeout    time.Duration `koanf:"request_timeout" validate:"gt=0"`
}

// DatabaseConfig configures the PostgreSQL pool.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnectAttempts int           `koanf:"connect_attempts" validate:"gte=1"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout" validate:"gt=0"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// StorageConfig selects where users, rooms and bookings live.
type StorageConfig struct {
	Driver      string `koanf:"driver" validate:"oneof=postgres memory"`
	KV          string `koanf:"kv" validate:"oneof=memory file redis"`
	FilePath    string `koanf:"file_path"`
	RedisURL    string `koanf:"redis_url"`
	RedisPrefix string `koanf:"redis_prefix"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json text"`
}

// JWTConfig configures access token signing.
type JWTConfig struct {
	Secret   string        `koanf:"secret" validate:"required,min=32"`
	TokenTTL time.Duration `koanf:"token_ttl" validate:"gt=0"`
	Issuer   string        `koanf:"issuer"`
}

// CORSConfig configures allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// BookingConfig configures the booking lifecycle.
type BookingConfig struct {
	OperationTimeout time.Duration `koanf:"operation_timeout" validate:"gt=0"`
	MaxCodeAttempts  int           `koanf:"max_code_attempts" validate:"gte=1,lte=100"`
}

// AdminConfig bootstraps an administrator account at startup when Email is set.
type AdminConfig struct {
	Email    string `koanf:"email" validate:"omitempty,email"`
	Password string `koanf:"password" validate:"required_with=Email,omitempty,min=8"`
}

// RateLimitConfig limits login attempts per client IP. RPS of zero disables it.
type RateLimitConfig struct {
	RPS     float64       `koanf:"rps" validate:"gte=0"`
	Burst   int           `koanf:"burst" validate:"gte=1"`
	IdleTTL time.Duration `koanf:"idle_ttl" validate:"gte=0"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              "8080",
			MetricsPort:       "9090",
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			RequestTimeout:    60 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			ConnectAttempts: 5,
			ConnectTimeout:  30 * time.Second,
			AutoMigrate:     true,
		},
		Storage: StorageConfig{
			Driver:      DriverPostgres,
			KV:          KVFile,
			FilePath:    "data/bookings.json",
			RedisPrefix: "hotel",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		JWT: JWTConfig{
			TokenTTL: 24 * time.Hour,
			Issuer:   "hotel-booking",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Booking: BookingConfig{
			OperationTimeout: 5 * time.Second,
			MaxCodeAttempts:  5,
		},
		RateLimit: RateLimitConfig{
			RPS:     1,
			Burst:   5,
			IdleTTL: 10 * time.Minute,
		},
	}
}

// Load reads configuration. path may be empty, in which case only defaults
// and the environment are used.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps HOTEL_SERVER_METRICS_PORT to server.metrics_port: the first
// underscore separates the section from the field.
func envKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, field, ok := strings.Cut(key, "_")
	if !ok {
		return "", nil
	}
	key = section + "." + field

	if key == "cors.allowed_origins" {
		origins := make([]string, 0)
		for _, origin := range strings.Split(value, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		return key, origins
	}
	return key, value
}

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var errs []error
	if c.Storage.Driver == DriverPostgres && c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required for the postgres driver"))
	}
	if c.Storage.Driver == DriverMemory {
		switch c.Storage.KV {
		case KVFile:
			if c.Storage.FilePath == "" {
				errs = append(errs, errors.New("storage.file_path is required for the file backend"))
			}
		case KVRedis:
			if c.Storage.RedisURL == "" {
				errs = append(errs, errors.New("storage.redis_url is required for the redis backend"))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
