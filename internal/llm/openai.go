package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// OpenAIConfig configures an OpenAI-compatible chat completion endpoint.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond limits call starts; zero means unlimited.
	RequestsPerSecond float64
	Burst             int
}

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider classifies with the chat completions API.
type OpenAIProvider struct {
	client  *openai.Client
	apiKey  string
	model   string
	timeout time.Duration
	limiter *rate.Limiter
}

func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	key := strings.TrimSpace(cfg.APIKey)
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(clientCfg),
		apiKey:  key,
		model:   model,
		timeout: timeout,
		limiter: limiter,
	}
}

func (p *OpenAIProvider) Name() string { return "openai:" + p.model }

func (p *OpenAIProvider) Available() bool { return p.apiKey != "" }

// ClassifyApp makes exactly one chat completion call bounded by the
// provider timeout. Waiting for the rate limiter counts against it.
func (p *OpenAIProvider) ClassifyApp(ctx context.Context, req ClassifyRequest) (string, error) {
	if !p.Available() {
		return "", ErrNoAPIKey
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("openai: rate limit: %w", err)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.Instruction},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt()},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
