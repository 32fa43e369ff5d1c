package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jarvis/internal/domain"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when LLM_MODEL is empty
const DefaultGeminiModel = "gemini-1.5-flash"

// geminiModel talks to the Google Gemini API
type geminiModel struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func newGeminiModel(ctx context.Context, cfg Config) (Model, error) {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	return &geminiModel{client: client, model: model, timeout: cfg.Timeout}, nil
}

// Complete sends the user text with the system prompt as instruction
func (m *geminiModel) Complete(ctx context.Context, prompt domain.Prompt) (string, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	model := m.client.GenerativeModel(m.model)
	if prompt.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt.System)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt.User))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %v: %w", err, domain.ErrAdapterUnavailable)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates: %w", domain.ErrAdapterUnavailable)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	answer := cleanAnswer(sb.String())
	if answer == "" {
		return "", fmt.Errorf("gemini returned empty answer: %w", domain.ErrAdapterUnavailable)
	}
	return answer, nil
}

func (m *geminiModel) Close() error {
	return m.client.Close()
}
