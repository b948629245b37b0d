package config

import (
	"encoding/json"
	"fmt"
)

// Config represents the main canvasagent configuration
type Config struct {
	// Canvas API access
	Canvas CanvasConfig `json:"canvas" mapstructure:"canvas"`

	// Model providers
	Models ModelsConfig `json:"models" mapstructure:"models"`

	// Agent behavior
	Agent AgentConfig `json:"agent" mapstructure:"agent"`

	// Gateway server
	Gateway GatewayConfig `json:"gateway" mapstructure:"gateway"`

	// Course material download
	Download DownloadConfig `json:"download" mapstructure:"download"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// CanvasConfig holds Canvas LMS API access settings
type CanvasConfig struct {
	URL   string `json:"url" mapstructure:"url"`
	Token string `json:"token" mapstructure:"token"`
}

// ModelsConfig holds model provider configuration
type ModelsConfig struct {
	Default   string           `json:"default" mapstructure:"default"`
	Providers []ProviderConfig `json:"providers" mapstructure:"providers"`
}

// ProviderConfig represents one model provider profile
type ProviderConfig struct {
	Provider string `json:"provider" mapstructure:"provider"` // anthropic, openai
	APIKey   string `json:"api_key" mapstructure:"api_key"`
	BaseURL  string `json:"base_url" mapstructure:"base_url"`
	Org      string `json:"org" mapstructure:"org"`
	Project  string `json:"project" mapstructure:"project"`
}

// AgentConfig holds agent loop settings
type AgentConfig struct {
	MaxSteps     int     `json:"max_steps" mapstructure:"max_steps"`
	MaxTokens    int     `json:"max_tokens" mapstructure:"max_tokens"`
	Temperature  float64 `json:"temperature" mapstructure:"temperature"`
	SystemPrompt string  `json:"system_prompt" mapstructure:"system_prompt"`
}

// GatewayConfig holds WebSocket gateway settings
type GatewayConfig struct {
	Host              string `json:"host" mapstructure:"host"`
	Port              int    `json:"port" mapstructure:"port"`
	Mode              string `json:"mode" mapstructure:"mode"` // multi, single
	Password          string `json:"password" mapstructure:"password"`
	TOTPSecret        string `json:"totp_secret" mapstructure:"totp_secret"`
	TOTPDisabled      bool   `json:"totp_disabled" mapstructure:"totp_disabled"`
	SessionTTLMinutes int    `json:"session_ttl_minutes" mapstructure:"session_ttl_minutes"`
	MaxConnMinutes    int    `json:"max_conn_minutes" mapstructure:"max_conn_minutes"`
	TLSCertFile       string `json:"tls_cert_file" mapstructure:"tls_cert_file"`
	TLSKeyFile        string `json:"tls_key_file" mapstructure:"tls_key_file"`
}

// DownloadConfig holds course material download settings
type DownloadConfig struct {
	Root                string `json:"root" mapstructure:"root"`
	UploadToVectorStore bool   `json:"upload_to_vector_store" mapstructure:"upload_to_vector_store"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	File   string `json:"file" mapstructure:"file"`
	Pretty bool   `json:"pretty" mapstructure:"pretty"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Canvas: CanvasConfig{
			URL: "https://canvas.instructure.com",
		},
		Models: ModelsConfig{
			Default:   "gpt-4o",
			Providers: []ProviderConfig{},
		},
		Agent: AgentConfig{
			MaxSteps:    10,
			MaxTokens:   4096,
			Temperature: 0.2,
		},
		Gateway: GatewayConfig{
			Host:              "0.0.0.0",
			Port:              8765,
			Mode:              "multi",
			SessionTTLMinutes: 30,
			MaxConnMinutes:    60,
		},
		Download: DownloadConfig{
			Root: "file_index",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: false,
		},
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Canvas.URL == "" {
		return fmt.Errorf("canvas URL is required")
	}
	if c.Canvas.Token == "" {
		return fmt.Errorf("canvas API token is required")
	}

	if len(c.Models.Providers) == 0 {
		return fmt.Errorf("no model credentials configured: at least one provider is required")
	}
	for i, provider := range c.Models.Providers {
		if provider.Provider == "" {
			return fmt.Errorf("model provider %d: provider name is required", i)
		}
		if provider.APIKey == "" {
			return fmt.Errorf("model provider %s: api_key is required", provider.Provider)
		}
		if provider.Provider != "anthropic" && provider.Provider != "openai" {
			return fmt.Errorf("model provider %s: invalid provider (must be: anthropic, openai)", provider.Provider)
		}
	}

	if c.Models.Default == "" {
		return fmt.Errorf("default model is required")
	}
	if c.Agent.MaxSteps < 0 {
		return fmt.Errorf("agent max_steps must be >= 0")
	}

	if c.Gateway.Port <= 0 || c.Gateway.Port > 65535 {
		return fmt.Errorf("invalid gateway port: %d", c.Gateway.Port)
	}
	if c.Gateway.Mode != "" && c.Gateway.Mode != "multi" && c.Gateway.Mode != "single" {
		return fmt.Errorf("invalid gateway mode: %s (must be: multi, single)", c.Gateway.Mode)
	}
	if (c.Gateway.TLSCertFile == "") != (c.Gateway.TLSKeyFile == "") {
		return fmt.Errorf("gateway TLS requires both tls_cert_file and tls_key_file")
	}

	return nil
}
