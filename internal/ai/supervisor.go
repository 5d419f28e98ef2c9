package ai

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Model defaults. REPOSAGE_MODEL overrides the default for whichever provider is active.
const (
	// ModelSonnet is the default Anthropic model for narrative generation.
	ModelSonnet = "claude-sonnet-4-5-20250929"

	// ModelHaiku is the cheaper Anthropic model.
	ModelHaiku = "claude-3-5-haiku-20241022"

	// ModelGeminiFlash is the default Gemini model.
	ModelGeminiFlash = "gemini-2.5-flash"
)

// DefaultMaxTokens bounds a single reply when the caller does not say.
const DefaultMaxTokens = 4096

// Caller is the one operation the narrator needs from a model provider.
type Caller interface {
	// CallAI sends prompt and returns the reply text. Empty model and
	// maxTokens fall back to the client's defaults.
	CallAI(ctx context.Context, prompt, operation, model string, maxTokens int) (string, error)
}

// Config holds supervisor configuration.
type Config struct {
	APIKey string      // Anthropic API key (if empty, reads ANTHROPIC_API_KEY)
	Model  string      // Model to use (default: ModelSonnet or REPOSAGE_MODEL)
	Retry  RetryConfig // Uses DefaultRetryConfig when zero
}

// Supervisor calls Anthropic models with retries, a circuit breaker and
// concurrency and rate limits.
type Supervisor struct {
	client *anthropic.Client
	model  string
	policy *callPolicy
}

var _ Caller = (*Supervisor)(nil)

// DefaultModel returns REPOSAGE_MODEL when set, otherwise fallback.
func DefaultModel(fallback string) string {
	if model := os.Getenv("REPOSAGE_MODEL"); model != "" {
		return model
	}
	return fallback
}

// NewSupervisor creates an Anthropic-backed supervisor.
func NewSupervisor(cfg *Config) (*Supervisor, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel(ModelSonnet)
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Supervisor{
		client: &client,
		model:  model,
		policy: newCallPolicy(cfg.Retry),
	}, nil
}

// Model returns the default model.
func (s *Supervisor) Model() string {
	return s.model
}

// HealthCheck fails fast while the circuit breaker is open.
func (s *Supervisor) HealthCheck(ctx context.Context) error {
	if cb := s.policy.circuitBreaker; cb != nil && cb.State() == CircuitOpen {
		return fmt.Errorf("AI supervisor unavailable: %w", ErrCircuitOpen)
	}
	return ctx.Err()
}

// CallAI sends a single user message and concatenates the text blocks of the reply.
func (s *Supervisor) CallAI(ctx context.Context, prompt, operation, model string, maxTokens int) (string, error) {
	start := time.Now()
	if model == "" {
		model = s.model
	}
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	var response *anthropic.Message
	err := s.policy.do(ctx, operation, func(attemptCtx context.Context) error {
		resp, apiErr := s.client.Messages.New(attemptCtx, anthropic.MessageNewParams{
			Model:     anthropic.Model(model),
			MaxTokens: int64(maxTokens),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	slog.Debug("model call complete",
		"provider", "anthropic",
		"operation", operation,
		"model", model,
		"input_tokens", response.Usage.InputTokens,
		"output_tokens", response.Usage.OutputTokens,
		"duration", time.Since(start))

	return text.String(), nil
}
