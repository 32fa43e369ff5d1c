package llm

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"jarvis/internal/domain"
)

// Provider names accepted by New
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Model generates a single answer for a prompt
type Model interface {
	Complete(ctx context.Context, prompt domain.Prompt) (string, error)
	Close() error
}

// Config selects and configures a provider
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
}

// modelCreator builds a provider implementation
type modelCreator func(ctx context.Context, cfg Config) (Model, error)

// registry stores supported providers
var registry = map[string]modelCreator{
	ProviderOpenAI: newOpenAIModel,
	ProviderGemini: newGeminiModel,
}

// New creates the model for cfg.Provider. A missing API key yields a model
// that fails every call, so the bot keeps serving other features.
func New(ctx context.Context, cfg Config) (Model, error) {
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}

	creator, ok := registry[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q (expected one of %s)", cfg.Provider, strings.Join(Providers(), ", "))
	}

	if cfg.APIKey == "" {
		return disabledModel{provider: cfg.Provider}, nil
	}

	return creator(ctx, cfg)
}

// Providers lists registered provider names
func Providers() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// disabledModel is used when no credentials are configured
type disabledModel struct {
	provider string
}

func (m disabledModel) Complete(context.Context, domain.Prompt) (string, error) {
	return "", fmt.Errorf("%s api key is not set: %w", m.provider, domain.ErrAdapterUnavailable)
}

func (disabledModel) Close() error { return nil }

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// cleanAnswer drops reasoning blocks some models prepend and trims the rest
func cleanAnswer(s string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(s, ""))
}
