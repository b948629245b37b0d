package config

import (
	"fmt"
	"regexp"
	"strings"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAPIKey validates an API key format
func (v *Validator) ValidateAPIKey(key string, provider string) error {
	if key == "" {
		return fmt.Errorf("%s API key cannot be empty", provider)
	}

	switch provider {
	case "anthropic":
		if !strings.HasPrefix(key, "sk-ant-") {
			return fmt.Errorf("invalid Anthropic API key format (should start with sk-ant-)")
		}
	case "openai":
		if !strings.HasPrefix(key, "sk-") {
			return fmt.Errorf("invalid OpenAI API key format (should start with sk-)")
		}
	}

	return nil
}

// ValidateCanvasURL validates a Canvas instance URL
func (v *Validator) ValidateCanvasURL(url string) error {
	if url == "" {
		return fmt.Errorf("canvas URL cannot be empty")
	}
	if strings.HasPrefix(url, "http://") {
		return fmt.Errorf("canvas URL must use https")
	}
	return nil
}

// ValidateTOTPSecret validates a base32 TOTP secret
func (v *Validator) ValidateTOTPSecret(secret string) error {
	if secret == "" {
		return nil // TOTP may be disabled
	}

	pattern := regexp.MustCompile(`^[A-Z2-7]+=*$`)
	if !pattern.MatchString(strings.ToUpper(secret)) {
		return fmt.Errorf("invalid TOTP secret: not base32")
	}
	return nil
}

// ValidateTemperature validates temperature value
func (v *Validator) ValidateTemperature(temp float64) error {
	if temp < 0 || temp > 1 {
		return fmt.Errorf("temperature must be between 0 and 1, got %f", temp)
	}
	return nil
}

// ValidateMaxTokens validates max tokens value
func (v *Validator) ValidateMaxTokens(tokens int) error {
	if tokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", tokens)
	}
	if tokens > 200000 {
		return fmt.Errorf("max tokens too large (max 200000), got %d", tokens)
	}
	return nil
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateGatewayMode validates the gateway access policy
func (v *Validator) ValidateGatewayMode(mode string) error {
	if mode == "" {
		return nil // Use default
	}

	validModes := []string{"multi", "single"}
	for _, valid := range validModes {
		if mode == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid gateway mode: %s (must be one of: %s)", mode, strings.Join(validModes, ", "))
}

// ValidateConfig performs comprehensive validation
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	if err := v.ValidateCanvasURL(cfg.Canvas.URL); err != nil {
		errors = append(errors, err)
	}

	for i, provider := range cfg.Models.Providers {
		if provider.Provider != "" {
			if err := v.ValidateAPIKey(provider.APIKey, provider.Provider); err != nil {
				errors = append(errors, fmt.Errorf("model provider %d (%s): %w", i, provider.Provider, err))
			}
		}
	}

	if cfg.Agent.Temperature != 0 {
		if err := v.ValidateTemperature(cfg.Agent.Temperature); err != nil {
			errors = append(errors, err)
		}
	}
	if cfg.Agent.MaxTokens != 0 {
		if err := v.ValidateMaxTokens(cfg.Agent.MaxTokens); err != nil {
			errors = append(errors, err)
		}
	}

	if err := v.ValidateGatewayMode(cfg.Gateway.Mode); err != nil {
		errors = append(errors, err)
	}
	if !cfg.Gateway.TOTPDisabled {
		if err := v.ValidateTOTPSecret(cfg.Gateway.TOTPSecret); err != nil {
			errors = append(errors, err)
		}
	}
	if cfg.Gateway.SessionTTLMinutes < 0 {
		errors = append(errors, fmt.Errorf("gateway session_ttl_minutes must be >= 0"))
	}
	if cfg.Gateway.MaxConnMinutes < 0 {
		errors = append(errors, fmt.Errorf("gateway max_conn_minutes must be >= 0"))
	}

	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errors = append(errors, err)
	}

	return errors
}
