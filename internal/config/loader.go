package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading
type Loader struct {
	configPath string
}

// NewLoader creates a new config loader
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
	}
}

// Load loads the configuration from file and environment
func (l *Loader) Load() (*Config, error) {
	configPath := l.configPath
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".canvasagent", "config.json")
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	v.SetEnvPrefix("CANVASAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Honor the conventional variable names alongside the prefixed form.
	v.BindEnv("canvas.url", "CANVASAGENT_CANVAS_URL", "CANVAS_API_URL")
	v.BindEnv("canvas.token", "CANVASAGENT_CANVAS_TOKEN", "CANVAS_API_TOKEN")
	v.BindEnv("gateway.password", "CANVASAGENT_GATEWAY_PASSWORD", "WS_PASSWORD")
	v.BindEnv("gateway.totp_secret", "CANVASAGENT_GATEWAY_TOTP_SECRET", "WS_TOTP_SECRET")

	// Config file is optional when the environment carries everything.
	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Providers from raw environment variables when the file lists none.
	if len(cfg.Models.Providers) == 0 {
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			cfg.Models.Providers = append(cfg.Models.Providers, ProviderConfig{Provider: "anthropic", APIKey: key})
		}
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg.Models.Providers = append(cfg.Models.Providers, ProviderConfig{Provider: "openai", APIKey: key})
		}
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".canvasagent")
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = filepath.Join(cfg.DataDir, "canvasagent.log")
	}
	if cfg.Download.Root == "" {
		cfg.Download.Root = "file_index"
	}

	return cfg, nil
}

// Save saves the configuration to file
func (l *Loader) Save(cfg *Config) error {
	configPath := l.configPath
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".canvasagent", "config.json")
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	v.Set("canvas", cfg.Canvas)
	v.Set("models", cfg.Models)
	v.Set("agent", cfg.Agent)
	v.Set("gateway", cfg.Gateway)
	v.Set("download", cfg.Download)
	v.Set("logging", cfg.Logging)
	v.Set("data_dir", cfg.DataDir)

	if err := v.WriteConfig(); err != nil {
		if os.IsNotExist(err) {
			if err := v.SafeWriteConfig(); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}
		} else {
			return fmt.Errorf("failed to write config file: %w", err)
		}
	}

	return nil
}

// GetConfigPath returns the config file path
func (l *Loader) GetConfigPath() string {
	if l.configPath != "" {
		return l.configPath
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".canvasagent", "config.json")
}

// Load is a convenience function that creates a loader and loads the config
func Load(configPath string) (*Config, error) {
	loader := NewLoader(configPath)
	return loader.Load()
}
