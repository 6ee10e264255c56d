package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var defaultEnvLoaded sync.Once

// Load populates the provided configuration struct from environment
// variables based on `env` field tags. A .env file in the working
// directory is loaded once per process before the first parse; its
// absence is not an error.
//
// Example:
//
//	type RedisConfig struct {
//		URL string `env:"REDIS_URL,required"`
//	}
//
//	var cfg RedisConfig
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
func Load[T any](v *T) error {
	defaultEnvLoaded.Do(func() {
		// The .env file is a development convenience only.
		_ = godotenv.Load()
	})

	if v == nil {
		return ErrNilPointer
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
// Required secrets are a startup concern: a process missing them must
// not come up at all.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
