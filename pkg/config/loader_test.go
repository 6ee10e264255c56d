package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remasterhq/remaster/pkg/config"
)

type testConfig struct {
	Host string `env:"CONFIG_TEST_HOST" envDefault:"localhost"`
	Port int    `env:"CONFIG_TEST_PORT" envDefault:"8080"`
}

type requiredConfig struct {
	Secret string `env:"CONFIG_TEST_REQUIRED_SECRET,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 8080, cfg.Port)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_HOST", "example.com")
		t.Setenv("CONFIG_TEST_PORT", "9090")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "example.com", cfg.Host)
		assert.Equal(t, 9090, cfg.Port)
	})

	t.Run("missing required variable", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		err := config.Load[testConfig](nil)
		require.ErrorIs(t, err, config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on missing required variable", func(t *testing.T) {
		var cfg requiredConfig
		assert.Panics(t, func() { config.MustLoad(&cfg) })
	})
}
