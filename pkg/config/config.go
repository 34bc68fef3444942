// Package config loads host settings from FORMSTATE_* environment variables,
// reading a local .env file first when one exists.
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every variable name.
const Prefix = "FORMSTATE_"

var (
	// ErrParsingConfig wraps failures decoding environment variables.
	ErrParsingConfig = errors.New("config: parse environment")
	// ErrInvalidConfig wraps values that parse but cannot be used.
	ErrInvalidConfig = errors.New("config: invalid value")

	dotenvLoaded sync.Once
)

// Config holds the settings shared by the server and terminal hosts.
type Config struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	BasePath        string        `env:"BASE_PATH" envDefault:"/api"`
	SchemaPath      string        `env:"SCHEMA_PATH"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SessionCapacity int           `env:"SESSION_CAPACITY" envDefault:"1024"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads the process environment. A .env file in the working directory
// is loaded once per process; a missing file is not an error.
func Load() (Config, error) {
	dotenvLoaded.Do(func() {
		_ = godotenv.Load()
	})
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom reads settings from environment, ignoring the process environment.
// Keys carry the FORMSTATE_ prefix.
func LoadFrom(environment map[string]string) (Config, error) {
	if environment == nil {
		environment = map[string]string{}
	}
	return parse(env.Options{Prefix: Prefix, Environment: environment})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: %sADDR is empty", ErrInvalidConfig, Prefix)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: %sSESSION_TTL must be positive", ErrInvalidConfig, Prefix)
	}
	if c.SessionCapacity <= 0 {
		return fmt.Errorf("%w: %sSESSION_CAPACITY must be positive", ErrInvalidConfig, Prefix)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: %sSHUTDOWN_TIMEOUT is negative", ErrInvalidConfig, Prefix)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %sLOG_FORMAT %q (want text or json)", ErrInvalidConfig, Prefix, c.LogFormat)
	}
	return nil
}
