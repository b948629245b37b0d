package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Canvas.Token = "canvas-token"
	cfg.Gateway.Password = "hunter2"
	cfg.Models.Providers = []ProviderConfig{
		{Provider: "anthropic", APIKey: "sk-ant-test123"},
	}
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "https://canvas.instructure.com", cfg.Canvas.URL)
	assert.Equal(t, "gpt-4o", cfg.Models.Default)
	assert.Equal(t, 10, cfg.Agent.MaxSteps)
	assert.Equal(t, 4096, cfg.Agent.MaxTokens)
	assert.Equal(t, 8765, cfg.Gateway.Port)
	assert.Equal(t, "multi", cfg.Gateway.Mode)
	assert.Equal(t, 30, cfg.Gateway.SessionTTLMinutes)
	assert.Equal(t, "file_index", cfg.Download.Root)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		err := validConfig().Validate()
		assert.NoError(t, err)
	})

	t.Run("missing canvas token", func(t *testing.T) {
		cfg := validConfig()
		cfg.Canvas.Token = ""

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "canvas API token")
	})

	t.Run("missing providers", func(t *testing.T) {
		cfg := validConfig()
		cfg.Models.Providers = nil

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no model credentials")
	})

	t.Run("provider missing api key", func(t *testing.T) {
		cfg := validConfig()
		cfg.Models.Providers[0].APIKey = ""

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "api_key is required")
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := validConfig()
		cfg.Models.Providers[0].Provider = "gemini"

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid provider")
	})

	t.Run("missing default model", func(t *testing.T) {
		cfg := validConfig()
		cfg.Models.Default = ""

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "default model")
	})

	t.Run("invalid gateway port", func(t *testing.T) {
		cfg := validConfig()
		cfg.Gateway.Port = 0

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "gateway port")
	})

	t.Run("invalid gateway mode", func(t *testing.T) {
		cfg := validConfig()
		cfg.Gateway.Mode = "cluster"

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid gateway mode")
	})

	t.Run("half-configured TLS", func(t *testing.T) {
		cfg := validConfig()
		cfg.Gateway.TLSCertFile = "/tmp/cert.pem"

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "tls_key_file")
	})
}

func TestConfigString(t *testing.T) {
	str := validConfig().String()
	assert.NotEmpty(t, str)
	assert.Contains(t, str, "providers")
	assert.Contains(t, str, "gateway")
}
