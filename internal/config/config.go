// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types, and validates that required
// values are present so the app fails fast on bad or missing config.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values, most importantly ATLAS_URI.
//   - Provide defaults for optional config blocks.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Key mapping rules:
	- ATLAS_URI is read as-is and becomes database.uri.
	- Every other variable must carry the SHELTER_ prefix. The prefix is removed,
	  the rest is lowercased and "__" marks nesting:
	  SHELTER_SERVER__READ_TIMEOUT -> server.read_timeout -> Config.Server.ReadTimeout
	- Anything else in the environment is ignored.
*/

const (
	// AtlasURIEnv is the single variable that holds the MongoDB connection string.
	AtlasURIEnv = "ATLAS_URI"

	envPrefix = "SHELTER_"
	nestSep   = "__"
)

// ErrMissingAtlasURI is returned when ATLAS_URI is unset or empty.
var ErrMissingAtlasURI = errors.New(AtlasURIEnv + " environment variable is required")

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// RateLimit is the number of requests per second allowed per client IP.
	// Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"min=0"`
}

// DatabaseConfig contains the MongoDB connection settings.
//
// URI is secret material and never has a default.
type DatabaseConfig struct {
	URI            string        `koanf:"uri" validate:"required"`
	Name           string        `koanf:"name" validate:"required"`
	Collection     string        `koanf:"collection" validate:"required"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"min=1s"`
}

// DefaultDatabaseConfig returns the database block without a URI.
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Name:           "AAC",
		Collection:     "animals",
		ConnectTimeout: 5 * time.Second,
	}
}

// DefaultServerConfig returns the server block used when nothing is set.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:               "8080",
		ReadTimeout:        30,
		WriteTimeout:       30,
		IdleTimeout:        60,
		CORSAllowedOrigins: []string{"*"},
	}
}

// LoadConfig loads configuration from environment variables, applies
// defaults, validates the result and returns it.
//
// Unlike a fatal log, every failure is returned so the caller decides how
// to exit. A missing ATLAS_URI yields an error wrapping ErrMissingAtlasURI.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider("", ".", mapEnvKey), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{
		Primary:       Primary{Env: "development"},
		Server:        DefaultServerConfig(),
		Database:      DefaultDatabaseConfig(),
		Observability: DefaultObservabilityConfig(),
	}

	// Unmarshal over the defaults so only the keys that were set override them.
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if strings.TrimSpace(mainConfig.Database.URI) == "" {
		return nil, ErrMissingAtlasURI
	}

	// Service name is fixed; environment always follows primary.env.
	mainConfig.Observability.ServiceName = "shelter"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// mapEnvKey turns an environment variable name into a koanf key path.
// An empty return value tells the provider to skip the variable.
func mapEnvKey(s string) string {
	if s == AtlasURIEnv {
		return "database.uri"
	}

	if !strings.HasPrefix(s, envPrefix) {
		return ""
	}

	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(key, nestSep, ".")
}
