package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const openAIDefaultTimeout = 15 * time.Second

// OpenAIOptions configures the OpenAI-backed rewriter.
type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Fallback   Optimizer
	OnFallback func(reason string, err error)
}

// OpenAIOptimizer rewrites prompts through the chat completions API. Any
// request or decode failure falls back to the configured fallback rewriter
// so prompt optimization never blocks a generation.
type OpenAIOptimizer struct {
	apiKey     string
	model      string
	baseURL    string
	client     *http.Client
	fallback   Optimizer
	onFallback func(reason string, err error)
}

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAIOptimizer creates an OpenAI rewriter.
func NewOpenAIOptimizer(opts OpenAIOptions) (*OpenAIOptimizer, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = NewStaticOptimizer()
	}
	return &OpenAIOptimizer{
		apiKey:     strings.TrimSpace(opts.APIKey),
		model:      model,
		baseURL:    baseURL,
		client:     client,
		fallback:   fallback,
		onFallback: opts.OnFallback,
	}, nil
}

func (o *OpenAIOptimizer) Optimize(ctx context.Context, userPrompt, style string) (string, error) {
	rewritten, err := o.rewrite(ctx, userPrompt, style)
	if err != nil {
		if o.onFallback != nil {
			o.onFallback("openai_error", err)
		}
		return o.fallback.Optimize(ctx, userPrompt, style)
	}
	return rewritten, nil
}

func (o *OpenAIOptimizer) rewrite(ctx context.Context, userPrompt, style string) (string, error) {
	payload := openAIChatRequest{
		Model: o.model,
		Messages: []openAIMessage{
			{Role: "system", Content: "You are a Prompt Engineering expert who rewrites prompts for AI video generation."},
			{Role: "user", Content: fmt.Sprintf("Prompt: %s\nStyle: %s\n\nPlease optimize this prompt for best video generation results.", userPrompt, style)},
		},
		Temperature: 0.7,
		MaxTokens:   100,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("chat request: unexpected status %d", resp.StatusCode)
	}

	var decoded openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("chat response has no choices")
	}
	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("chat response is empty")
	}
	return content, nil
}

var _ Optimizer = (*OpenAIOptimizer)(nil)
