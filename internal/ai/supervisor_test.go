package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSupervisor_MissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := NewSupervisor(nil)
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY not set")
}

func TestNewSupervisor_ModelSelection(t *testing.T) {
	t.Setenv("REPOSAGE_MODEL", "")

	s, err := NewSupervisor(&Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, ModelSonnet, s.Model())

	t.Setenv("REPOSAGE_MODEL", "claude-custom")
	s, err = NewSupervisor(&Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, "claude-custom", s.Model())

	s, err = NewSupervisor(&Config{APIKey: "test-key", Model: ModelHaiku})
	require.NoError(t, err)
	assert.Equal(t, ModelHaiku, s.Model())
}

func TestSupervisor_HealthCheck(t *testing.T) {
	s, err := NewSupervisor(&Config{APIKey: "test-key"})
	require.NoError(t, err)
	require.NoError(t, s.HealthCheck(context.Background()))

	for i := 0; i < DefaultRetryConfig().FailureThreshold; i++ {
		s.policy.circuitBreaker.RecordFailure()
	}
	assert.ErrorIs(t, s.HealthCheck(context.Background()), ErrCircuitOpen)
}

func TestNewGeminiClient_MissingKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	_, err := NewGeminiClient(context.Background(), nil)
	assert.ErrorContains(t, err, "GEMINI_API_KEY not set")
}
