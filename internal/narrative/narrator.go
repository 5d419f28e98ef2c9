// Package narrative produces the architecture summary and remediation roadmap
// that accompany the deterministic scores.
//
// Narrators are collaborators: their output is descriptive, never scored
// beyond the architecture type and pattern count. Whatever a narrator returns
// enters as a Payload and is resolved here into the canonical types, so the
// scorer and renderer only ever see types.ArchitectureResult and
// types.Roadmap.
package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/steveyegge/reposage/internal/ai"
	"github.com/steveyegge/reposage/internal/types"
)

// Narrator describes a repository and plans its remediation.
type Narrator interface {
	// Name identifies the narrator in logs and run history.
	Name() string

	// Architecture summarizes the shape of the scanned repository.
	Architecture(ctx context.Context, scan types.ScanResult) (types.ArchitectureResult, error)

	// Roadmap turns findings into phased remediation items.
	Roadmap(ctx context.Context, scan types.ScanResult, security, performance []types.Finding) (types.Roadmap, error)
}

// Provider names accepted by New.
const (
	ProviderStatic    = "static"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Options configures New.
type Options struct {
	Provider  string
	Model     string
	MaxTokens int
	Retry     ai.RetryConfig
}

// New builds the narrator for a provider. Model-backed narrators fall back
// to the static one when a call fails.
func New(ctx context.Context, opts Options) (Narrator, error) {
	static := NewStaticNarrator()

	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", ProviderStatic:
		return static, nil
	case ProviderAnthropic:
		sup, err := ai.NewSupervisor(&ai.Config{Model: opts.Model, Retry: opts.Retry})
		if err != nil {
			return nil, fmt.Errorf("creating anthropic narrator: %w", err)
		}
		return NewAINarrator(ProviderAnthropic, sup, opts.Model, opts.MaxTokens, static), nil
	case ProviderGemini:
		client, err := ai.NewGeminiClient(ctx, &ai.GeminiConfig{Model: opts.Model, Retry: opts.Retry})
		if err != nil {
			return nil, fmt.Errorf("creating gemini narrator: %w", err)
		}
		return NewAINarrator(ProviderGemini, client, opts.Model, opts.MaxTokens, static), nil
	default:
		return nil, fmt.Errorf("unknown narrator provider %q (want %s, %s or %s)",
			opts.Provider, ProviderStatic, ProviderAnthropic, ProviderGemini)
	}
}
