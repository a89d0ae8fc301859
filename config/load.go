package config

import (
	"github.com/Gobusters/ectoenv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Load reads configuration from the environment. A local .env file, when
// present, is loaded first so development overrides apply.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to bind environment config")
	}

	return &cfg, nil
}
