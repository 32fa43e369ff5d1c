package llm

import (
	"context"
	"fmt"
	"time"

	"jarvis/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Defaults target the Hugging Face router, which speaks the OpenAI API
const (
	DefaultOpenAIBaseURL = "https://router.huggingface.co/v1"
	DefaultOpenAIModel   = "deepseek-ai/DeepSeek-R1:together"
)

// openAIModel talks to any OpenAI-compatible chat completions endpoint
type openAIModel struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

func newOpenAIModel(_ context.Context, cfg Config) (Model, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	)

	return &openAIModel{client: client, model: model, timeout: cfg.Timeout}, nil
}

// Complete sends the prompt as a system and a user message
func (m *openAIModel) Complete(ctx context.Context, prompt domain.Prompt) (string, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	messages := []openai.ChatCompletionMessageParamUnion{}
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	messages = append(messages, openai.UserMessage(prompt.User))

	resp, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    openai.ChatModel(m.model),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %v: %w", err, domain.ErrAdapterUnavailable)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices: %w", domain.ErrAdapterUnavailable)
	}

	answer := cleanAnswer(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("chat completion returned empty answer: %w", domain.ErrAdapterUnavailable)
	}
	return answer, nil
}

func (m *openAIModel) Close() error { return nil }
