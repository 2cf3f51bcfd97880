// Package config loads the harness configuration from the environment,
// optionally seeded from a profile-specific dotenv file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config describes where to find the todo service and how to talk to it.
type Config struct {
	RestBaseURL           string `env:"TODO_TESTS_REST_URL" env-default:"http://localhost:8080"`
	WebSocketURL          string `env:"TODO_TESTS_WS_URL" env-default:"ws://localhost:8080/ws"`
	AuthHeader            string `env:"TODO_TESTS_AUTH_HEADER" env-default:"Bearer todo-tests"`
	RequestTimeoutSeconds int    `env:"TODO_TESTS_REQUEST_TIMEOUT" env-default:"10"`
}

// Load reads the configuration for the named environment profile. A non-empty
// profile requires a file ".env.<profile>" in the working directory, whose
// values are loaded into the environment first; already-set environment
// variables take precedence over the file.
func Load(profile string) (*Config, error) {
	if profile != "" {
		path := ".env." + profile
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("environment profile %q: %w", profile, err)
		}
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("cannot load environment profile %q: %w", profile, err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read configuration: %w", err)
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("request timeout must be positive, got %d", cfg.RequestTimeoutSeconds)
	}
	return &cfg, nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
