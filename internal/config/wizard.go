package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Wizard provides an interactive configuration wizard
type Wizard struct {
	reader *bufio.Reader
}

// NewWizard creates a new configuration wizard
func NewWizard() *Wizard {
	return &Wizard{
		reader: bufio.NewReader(os.Stdin),
	}
}

// Run runs the interactive configuration wizard
func (w *Wizard) Run() (*Config, error) {
	fmt.Println("=== Canvas Agent Configuration Wizard ===")
	fmt.Println()

	cfg := DefaultConfig()
	validator := NewValidator()

	// Canvas access
	fmt.Println("Canvas LMS access:")
	fmt.Println()

	for {
		fmt.Printf("Canvas URL [%s]: ", cfg.Canvas.URL)
		url, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if url == "" {
			break
		}
		if err := validator.ValidateCanvasURL(url); err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		cfg.Canvas.URL = url
		break
	}

	for {
		fmt.Print("Canvas API token: ")
		token, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if token == "" {
			fmt.Println("Error: Canvas API token is required")
			continue
		}
		cfg.Canvas.Token = token
		break
	}

	fmt.Println()

	// API Keys
	fmt.Println("Model API keys (at least one is required):")
	fmt.Println()

	for {
		fmt.Print("Anthropic API Key (press Enter to skip): ")
		key, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if key == "" {
			break
		}
		if err := validator.ValidateAPIKey(key, "anthropic"); err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		cfg.Models.Providers = append(cfg.Models.Providers, ProviderConfig{Provider: "anthropic", APIKey: key})
		break
	}

	for {
		fmt.Print("OpenAI API Key (press Enter to skip): ")
		key, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if key == "" {
			break
		}
		if err := validator.ValidateAPIKey(key, "openai"); err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		cfg.Models.Providers = append(cfg.Models.Providers, ProviderConfig{Provider: "openai", APIKey: key})
		break
	}

	if len(cfg.Models.Providers) == 0 {
		return nil, fmt.Errorf("at least one API key is required")
	}

	fmt.Println()

	// Gateway
	fmt.Println("Gateway server:")
	fmt.Println()

	for {
		fmt.Print("Gateway password: ")
		password, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if password == "" {
			fmt.Println("Error: Gateway password is required")
			continue
		}
		cfg.Gateway.Password = password
		break
	}

	fmt.Print("TOTP secret (press Enter to disable TOTP): ")
	secret, err := w.readLine()
	if err != nil {
		return nil, err
	}
	if secret == "" {
		cfg.Gateway.TOTPDisabled = true
	} else {
		if err := validator.ValidateTOTPSecret(secret); err != nil {
			fmt.Printf("Warning: %v, disabling TOTP\n", err)
			cfg.Gateway.TOTPDisabled = true
		} else {
			cfg.Gateway.TOTPSecret = secret
		}
	}

	fmt.Println()
	fmt.Println("Session policy options:")
	fmt.Println("  multi  - keyed sessions with an idle TTL (default)")
	fmt.Println("  single - one connection at a time")
	fmt.Print("Session policy [multi]: ")
	mode, err := w.readLine()
	if err != nil {
		return nil, err
	}
	if mode == "" {
		mode = "multi"
	}
	if err := validator.ValidateGatewayMode(mode); err != nil {
		fmt.Printf("Warning: %v, using default (multi)\n", err)
		mode = "multi"
	}
	cfg.Gateway.Mode = mode

	fmt.Println()

	// Default Model
	fmt.Println("Default Model:")
	fmt.Printf("Model name [%s]: ", cfg.Models.Default)
	model, err := w.readLine()
	if err != nil {
		return nil, err
	}
	if model != "" {
		cfg.Models.Default = model
	}

	fmt.Println()

	// Log Level
	fmt.Println("Logging:")
	fmt.Print("Log level (debug/info/warn/error) [info]: ")
	level, err := w.readLine()
	if err != nil {
		return nil, err
	}
	if level != "" {
		if err := validator.ValidateLogLevel(level); err != nil {
			fmt.Printf("Warning: %v, using default (info)\n", err)
		} else {
			cfg.Logging.Level = level
		}
	}

	fmt.Println()
	fmt.Println("Configuration complete!")

	return cfg, nil
}

func (w *Wizard) readLine() (string, error) {
	line, err := w.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
