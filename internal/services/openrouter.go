package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultOpenRouterReferer = "http://localhost:8000"
	DefaultOpenRouterTitle   = "Text RPG Adventure"

	DefaultOpenRouterTemperature = 0.8
	DefaultOpenRouterMaxTokens   = 1024
)

// DefaultOpenRouterModels is the preference order used when none is configured.
var DefaultOpenRouterModels = []string{
	"google/gemini-2.0-flash-exp:free",
	"deepseek/deepseek-chat-v3-0324:free",
	"deepseek/deepseek-r1:free",
	"meta-llama/llama-4-maverick:free",
	"qwen/qwen3-235b-a22b:free",
	"deepseek/deepseek-chat:free",
	"deepseek/deepseek-prover-v2:free",
}

// OpenRouterConfig holds the settings shared by all OpenRouter candidates.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Referer string
	Title   string
}

// OpenRouterService implements Completer for one OpenRouter model.
type OpenRouterService struct {
	client    *openai.Client
	modelName string
}

var _ Completer = (*OpenRouterService)(nil)

// attributionTransport adds the headers OpenRouter uses to attribute traffic.
type attributionTransport struct {
	referer string
	title   string
	base    http.RoundTripper
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.referer != "" {
		req.Header.Set("HTTP-Referer", t.referer)
	}
	if t.title != "" {
		req.Header.Set("X-Title", t.title)
	}
	return t.base.RoundTrip(req)
}

// NewOpenRouterService creates a candidate for modelName.
// The per-attempt deadline comes from the caller's context.
func NewOpenRouterService(cfg OpenRouterConfig, modelName string) *OpenRouterService {
	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL
	if config.BaseURL == "" {
		config.BaseURL = DefaultOpenRouterBaseURL
	}
	config.HTTPClient = &http.Client{
		Timeout: 120 * time.Second,
		Transport: &attributionTransport{
			referer: cfg.Referer,
			title:   cfg.Title,
			base:    http.DefaultTransport,
		},
	}

	return &OpenRouterService{
		client:    openai.NewClientWithConfig(config),
		modelName: modelName,
	}
}

// NewOpenRouterCandidates creates one candidate per model, preserving order.
func NewOpenRouterCandidates(cfg OpenRouterConfig, models []string) []Completer {
	out := make([]Completer, 0, len(models))
	for _, m := range models {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		out = append(out, NewOpenRouterService(cfg, m))
	}
	return out
}

func (o *OpenRouterService) Name() string {
	return o.modelName
}

func (o *OpenRouterService) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.modelName,
		MaxTokens:   DefaultOpenRouterMaxTokens,
		Temperature: DefaultOpenRouterTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openrouter chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
