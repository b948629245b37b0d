package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader("/path/to/config.json")
	assert.NotNil(t, loader)
	assert.Equal(t, "/path/to/config.json", loader.configPath)
}

func TestLoaderLoad(t *testing.T) {
	t.Run("load default config when file doesn't exist", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "nonexistent.json")

		loader := NewLoader(configPath)
		cfg, err := loader.Load()

		require.NoError(t, err)
		assert.NotNil(t, cfg)
		assert.Equal(t, "multi", cfg.Gateway.Mode)
		assert.Equal(t, 10, cfg.Agent.MaxSteps)
	})

	t.Run("load config from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.json")

		testConfig := `{
			"canvas": {
				"url": "https://canvas.example.edu",
				"token": "canvas-token"
			},
			"models": {
				"default": "claude-sonnet-4-5",
				"providers": [
					{"provider": "anthropic", "api_key": "sk-ant-test123"}
				]
			},
			"gateway": {
				"password": "hunter2",
				"mode": "single"
			}
		}`
		err := os.WriteFile(configPath, []byte(testConfig), 0644)
		require.NoError(t, err)

		loader := NewLoader(configPath)
		cfg, err := loader.Load()

		require.NoError(t, err)
		assert.Equal(t, "https://canvas.example.edu", cfg.Canvas.URL)
		assert.Equal(t, "canvas-token", cfg.Canvas.Token)
		assert.Equal(t, "claude-sonnet-4-5", cfg.Models.Default)
		require.Len(t, cfg.Models.Providers, 1)
		assert.Equal(t, "anthropic", cfg.Models.Providers[0].Provider)
		assert.Equal(t, "hunter2", cfg.Gateway.Password)
		assert.Equal(t, "single", cfg.Gateway.Mode)
	})

	t.Run("canvas credentials from environment", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "nonexistent.json")

		t.Setenv("CANVAS_API_URL", "https://env.example.edu")
		t.Setenv("CANVAS_API_TOKEN", "env-token")
		t.Setenv("WS_PASSWORD", "env-password")

		loader := NewLoader(configPath)
		cfg, err := loader.Load()

		require.NoError(t, err)
		assert.Equal(t, "https://env.example.edu", cfg.Canvas.URL)
		assert.Equal(t, "env-token", cfg.Canvas.Token)
		assert.Equal(t, "env-password", cfg.Gateway.Password)
	})

	t.Run("providers from environment when file lists none", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "nonexistent.json")

		t.Setenv("OPENAI_API_KEY", "sk-env-key")

		loader := NewLoader(configPath)
		cfg, err := loader.Load()

		require.NoError(t, err)
		require.Len(t, cfg.Models.Providers, 1)
		assert.Equal(t, "openai", cfg.Models.Providers[0].Provider)
		assert.Equal(t, "sk-env-key", cfg.Models.Providers[0].APIKey)
	})

	t.Run("set default paths", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "nonexistent.json")

		loader := NewLoader(configPath)
		cfg, err := loader.Load()

		require.NoError(t, err)
		assert.NotEmpty(t, cfg.DataDir)
		assert.NotEmpty(t, cfg.Logging.File)
		assert.Equal(t, "file_index", cfg.Download.Root)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "invalid.json")

		err := os.WriteFile(configPath, []byte("invalid json"), 0644)
		require.NoError(t, err)

		loader := NewLoader(configPath)
		_, err = loader.Load()

		assert.Error(t, err)
	})
}

func TestLoaderSave(t *testing.T) {
	t.Run("save config to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.json")

		cfg := DefaultConfig()
		cfg.Canvas.Token = "canvas-token"
		cfg.Gateway.Password = "hunter2"

		loader := NewLoader(configPath)
		err := loader.Save(cfg)

		require.NoError(t, err)

		_, err = os.Stat(configPath)
		assert.NoError(t, err)

		loadedCfg, err := NewLoader(configPath).Load()
		require.NoError(t, err)
		assert.Equal(t, "canvas-token", loadedCfg.Canvas.Token)
		assert.Equal(t, "hunter2", loadedCfg.Gateway.Password)
	})

	t.Run("create directory if not exists", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "subdir", "config.json")

		loader := NewLoader(configPath)
		err := loader.Save(DefaultConfig())

		require.NoError(t, err)

		_, err = os.Stat(filepath.Dir(configPath))
		assert.NoError(t, err)
	})
}

func TestLoaderGetConfigPath(t *testing.T) {
	t.Run("custom path", func(t *testing.T) {
		loader := NewLoader("/custom/path/config.json")
		path := loader.GetConfigPath()
		assert.Equal(t, "/custom/path/config.json", path)
	})

	t.Run("default path", func(t *testing.T) {
		loader := NewLoader("")
		path := loader.GetConfigPath()
		assert.NotEmpty(t, path)
		assert.Contains(t, path, ".canvasagent")
	})
}
