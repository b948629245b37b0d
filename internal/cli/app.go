package cli

import (
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"

	"github.com/avasquez/canvasagent/internal/config"
	"github.com/avasquez/canvasagent/internal/logger"
	"github.com/avasquez/canvasagent/pkg/agent"
	"github.com/avasquez/canvasagent/pkg/canvas"
	"github.com/avasquez/canvasagent/pkg/model"
	"github.com/avasquez/canvasagent/pkg/tool"
	"github.com/avasquez/canvasagent/pkg/vectorstore"
)

// app holds the wired components a command needs. Each command builds
// only the slice it uses.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	canvas *canvas.Client
}

func loadApp(console bool) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   console,
		Pretty:    cfg.Logging.Pretty,
		Redaction: true,
	})
	if err != nil {
		return nil, err
	}

	client, err := canvas.NewClient(cfg.Canvas.URL, cfg.Canvas.Token)
	if err != nil {
		log.Close()
		return nil, err
	}

	return &app{cfg: cfg, log: log, canvas: client}, nil
}

func (a *app) close() {
	if a.log != nil {
		a.log.Close()
	}
}

// providerConfig returns the configured profile for a provider name.
func (a *app) providerConfig(name string) (config.ProviderConfig, bool) {
	for _, p := range a.cfg.Models.Providers {
		if p.Provider == name {
			return p, true
		}
	}
	return config.ProviderConfig{}, false
}

// openaiClient builds an OpenAI SDK client from the configured profile.
func (a *app) openaiClient() (openai.Client, bool) {
	p, ok := a.providerConfig("openai")
	if !ok {
		return openai.Client{}, false
	}
	opts := []option.RequestOption{option.WithAPIKey(p.APIKey)}
	if p.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(p.BaseURL))
	}
	if p.Org != "" {
		opts = append(opts, option.WithOrganization(p.Org))
	}
	if p.Project != "" {
		opts = append(opts, option.WithProject(p.Project))
	}
	return openai.NewClient(opts...), true
}

// buildModelManager registers a model client per configured provider and
// an alias for the default model.
func buildModelManager(cfg *config.Config) (*model.Manager, error) {
	manager := model.NewManager()

	for _, p := range cfg.Models.Providers {
		var client model.Client
		var err error
		switch p.Provider {
		case "anthropic":
			client, err = model.NewAnthropicClient(p.APIKey)
		case "openai":
			client, err = model.NewOpenAIClient(model.OpenAIOptions{
				APIKey:       p.APIKey,
				BaseURL:      p.BaseURL,
				Organization: p.Org,
				Project:      p.Project,
			})
		default:
			err = fmt.Errorf("unknown provider %s", p.Provider)
		}
		if err != nil {
			return nil, err
		}
		if err := manager.RegisterClient(client); err != nil {
			return nil, err
		}
	}

	id := cfg.Models.Default
	if err := manager.RegisterAlias(id, model.Alias{
		Provider: inferProvider(id),
		Model:    id,
	}); err != nil {
		return nil, err
	}
	return manager, nil
}

// inferProvider guesses the provider from a model name prefix.
func inferProvider(modelID string) string {
	if strings.HasPrefix(modelID, "claude") {
		return "anthropic"
	}
	return "openai"
}

// buildAgent wires the complete tool-calling agent: Canvas tools, the
// vector store tools when OpenAI credentials exist, and the default
// model client.
func (a *app) buildAgent(log zerolog.Logger) (*agent.Agent, error) {
	tools := canvas.Tools(a.canvas)
	if oc, ok := a.openaiClient(); ok {
		tools = append(tools, vectorstore.Tools(oc)...)
	}

	registry, err := tool.NewRegistry(tools...)
	if err != nil {
		return nil, err
	}

	manager, err := buildModelManager(a.cfg)
	if err != nil {
		return nil, err
	}
	client, modelID, err := manager.Resolve(a.cfg.Models.Default)
	if err != nil {
		return nil, err
	}

	return agent.New(agent.Config{
		Model:        client,
		ModelID:      modelID,
		Tools:        registry,
		MaxSteps:     a.cfg.Agent.MaxSteps,
		SystemPrompt: a.cfg.Agent.SystemPrompt,
		MaxTokens:    a.cfg.Agent.MaxTokens,
		Temperature:  a.cfg.Agent.Temperature,
		Logger:       log,
	})
}
