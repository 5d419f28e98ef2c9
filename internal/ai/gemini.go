package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the provider replies with no text.
var ErrEmptyResponse = errors.New("model returned no content")

// GeminiConfig holds Gemini client configuration.
type GeminiConfig struct {
	APIKey string      // if empty, reads GEMINI_API_KEY then GOOGLE_API_KEY
	Model  string      // default: ModelGeminiFlash or REPOSAGE_MODEL
	Retry  RetryConfig // Uses DefaultRetryConfig when zero
}

// GeminiClient calls Gemini models through the genai SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
	policy *callPolicy
}

var _ Caller = (*GeminiClient)(nil)

// NewGeminiClient creates a Gemini-backed caller.
func NewGeminiClient(ctx context.Context, cfg *GeminiConfig) (*GeminiClient, error) {
	if cfg == nil {
		cfg = &GeminiConfig{}
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel(ModelGeminiFlash)
	}

	return &GeminiClient{
		client: client,
		model:  model,
		policy: newCallPolicy(cfg.Retry),
	}, nil
}

// Model returns the default model.
func (g *GeminiClient) Model() string {
	return g.model
}

// CallAI sends prompt as a single user turn and joins the text parts of the
// first candidate.
func (g *GeminiClient) CallAI(ctx context.Context, prompt, operation, model string, maxTokens int) (string, error) {
	start := time.Now()
	if model == "" {
		model = g.model
	}
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	var reply string
	err := g.policy.do(ctx, operation, func(attemptCtx context.Context) error {
		resp, apiErr := g.client.Models.GenerateContent(attemptCtx, model,
			[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}},
			&genai.GenerateContentConfig{MaxOutputTokens: int32(maxTokens)},
		)
		if apiErr != nil {
			return apiErr
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return ErrEmptyResponse
		}

		var text strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil {
				text.WriteString(part.Text)
			}
		}
		if text.Len() == 0 {
			return ErrEmptyResponse
		}
		reply = text.String()
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	slog.Debug("model call complete",
		"provider", "gemini",
		"operation", operation,
		"model", model,
		"duration", time.Since(start))

	return reply, nil
}
