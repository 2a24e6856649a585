package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"cpop-ledger/internal/config/configs"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config aggregates all configuration sections for the application. Fields
// are populated from environment variables using the caarlos0/env library. The
// nested structs are tagged with envPrefix so their fields are parsed with
// the given prefix. See the individual types in the configs package for
// default values and options. Use Load to construct a Config.
type Config struct {
	// Env specifies the deployment environment (e.g. prod, dev). It is
	// attached to traces as the deployment environment.
	Env string `env:"ENV" envDefault:"prod"`

	// Storage selects the campaign store: "postgres" or "memory".
	Storage string `env:"STORAGE_DRIVER" envDefault:"postgres"`

	// HTTP holds configuration for the HTTP server. Environment variables
	// prefixed with HTTP_ will populate this struct.
	HTTP configs.HTTP `envPrefix:"HTTP_"`

	// Log configures the structured logger. Environment variables prefixed
	// with LOG_ will populate this struct.
	Log configs.Logger `envPrefix:"LOG_"`

	// Psql configures the PostgreSQL connection. Environment variables
	// prefixed with PSQL_ will populate this struct.
	Psql configs.Postgres `envPrefix:"PSQL_"`

	Program  configs.Program  `envPrefix:"PROGRAM_"`
	Transfer configs.Transfer `envPrefix:"TRANSFER_"`
	Cache    configs.Cache    `envPrefix:"CACHE_"`
	Otel     configs.Otel     `envPrefix:"OTEL_"`
	Demo     configs.Demo     `envPrefix:"DEMO_"`
}

// Load reads configuration from environment variables into a Config. If
// parsing fails, an error is returned. All fields are loaded with their
// specified defaults when no environment variable is provided.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	switch cfg.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return cfg, fmt.Errorf("unknown storage driver %q", cfg.Storage)
	}
	return cfg, nil
}
