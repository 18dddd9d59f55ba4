package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/bastiangx/wordhunt/pkg/filters"
	"github.com/bastiangx/wordhunt/pkg/model"
)

// Advisor returns a free-form strategy note for a search prompt.
type Advisor interface {
	Advise(ctx context.Context, prompt string) (string, error)
}

// UpstreamError reports a failed advisor call. It is logged and never surfaced.
type UpstreamError struct {
	Provider string
	Status   int
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

const systemPrompt = "You are an expert in English word analysis and discovery. " +
	"Analyze the given filters and provide strategic recommendations for word discovery."

// Prompt renders the user prompt sent to an Advisor.
func Prompt(mode model.Mode, f filters.Spec, maxResults int) string {
	body, _ := json.MarshalIndent(f, "", "  ")
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze these word discovery filters and provide recommendations:\n")
	fmt.Fprintf(&b, "Mode: %s\nFilters: %s\nMax Results: %d\n\n", mode, body, maxResults)
	b.WriteString("Provide:\n1. Complexity assessment (simple/moderate/complex)\n2. Estimated result count\n")
	b.WriteString("3. Processing time estimate (fast/medium/slow)\n4. Strategic recommendations\n5. Optimization suggestions")
	return b.String()
}

// OpenAIOptions configures an OpenAI-compatible chat completions client.
type OpenAIOptions struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// OpenAIAdvisor calls any endpoint speaking the OpenAI chat completions protocol.
type OpenAIAdvisor struct {
	opts   OpenAIOptions
	client *openai.Client
}

func NewOpenAIAdvisor(opts OpenAIOptions) *OpenAIAdvisor {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Model == "" {
		opts.Model = openai.GPT4oMini
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 500
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.7
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = opts.BaseURL
	cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	return &OpenAIAdvisor{opts: opts, client: openai.NewClientWithConfig(cfg)}
}

func (o *OpenAIAdvisor) Advise(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(o.opts.Temperature),
		MaxTokens:   o.opts.MaxTokens,
	})
	if err != nil {
		return "", &UpstreamError{Provider: "openai", Status: statusOf(err), Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// statusOf extracts the HTTP status from a client error, 0 when there was no response.
func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
