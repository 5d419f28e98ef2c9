package narrative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/reposage/internal/types"
)

func TestFromAny(t *testing.T) {
	type archStruct struct {
		ArchitectureType string `json:"architecture_type"`
	}

	tests := []struct {
		name  string
		input any
		want  PayloadKind
	}{
		{"nil", nil, KindAbsent},
		{"map", map[string]any{"architecture_type": "monolith"}, KindStructured},
		{"nil map", map[string]any(nil), KindAbsent},
		{"string", `{"architecture_type": "monolith"}`, KindRawText},
		{"blank string", "  ", KindAbsent},
		{"bytes", []byte("{}"), KindRawText},
		{"struct", archStruct{ArchitectureType: "monolith"}, KindStructured},
		{"pointer to struct", &archStruct{}, KindStructured},
		{"number", 42, KindAbsent},
		{"list", []any{"a", "b"}, KindAbsent},
		{"payload passthrough", RawText("x"), KindRawText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromAny(tt.input).Kind())
		})
	}
}

func TestResolveArchitecture_Structured(t *testing.T) {
	arch := ResolveArchitecture(Structured(map[string]any{
		"architecture_type":        "Modular Monolith",
		"key_modules":              []any{"api", "worker"},
		"detected_design_patterns": []any{"Repository"},
		"service_interactions":     []any{},
		"frameworks":               []string{"Flask"},
		"runtime_flow_summary":     "Requests enter through api.",
	}))

	assert.Equal(t, types.ArchModularMonolith, arch.ArchitectureType)
	assert.Equal(t, []string{"api", "worker"}, arch.KeyModules)
	assert.Equal(t, []string{"Repository"}, arch.DesignPatterns)
	assert.Empty(t, arch.ServiceInteractions)
	assert.Equal(t, []string{"Flask"}, arch.Frameworks)
	assert.Equal(t, "Requests enter through api.", arch.RuntimeFlowSummary)
}

func TestResolveArchitecture_RawText(t *testing.T) {
	reply := "Here you go:\n```json\n{\"architecture_type\": \"microservices\", \"design_patterns\": [\"Gateway\"]}\n```"

	arch := ResolveArchitecture(RawText(reply))

	assert.Equal(t, types.ArchMicroservices, arch.ArchitectureType)
	assert.Equal(t, []string{"Gateway"}, arch.DesignPatterns)
}

func TestResolveArchitecture_Degrades(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
	}{
		{"absent", Absent()},
		{"unparseable text", RawText("the model refused")},
		{"json array instead of object", RawText(`["monolith"]`)},
		{"wrong field types", Structured(map[string]any{
			"architecture_type":        42,
			"key_modules":              "api",
			"detected_design_patterns": map[string]any{"x": 1},
			"frameworks":               []any{map[string]any{}, nil, 7},
			"runtime_flow_summary":     []any{"a"},
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var arch types.ArchitectureResult
			assert.NotPanics(t, func() { arch = ResolveArchitecture(tt.payload) })
			assert.Equal(t, types.ArchUnspecified, arch.ArchitectureType)
			assert.Empty(t, arch.DesignPatterns)
			assert.Empty(t, arch.RuntimeFlowSummary)
			assert.NotNil(t, arch.KeyModules)
		})
	}
}

func TestResolveArchitecture_ScalarCoercion(t *testing.T) {
	arch := ResolveArchitecture(Structured(map[string]any{
		"key_modules": "api",
		"frameworks":  []any{map[string]any{}, nil, 7.0},
	}))

	assert.Equal(t, []string{"api"}, arch.KeyModules)
	assert.Equal(t, []string{"7"}, arch.Frameworks)
}

func TestResolveRoadmap(t *testing.T) {
	roadmap := ResolveRoadmap(RawText(`{
		"immediate_fixes": [
			{"priority": "p0", "task": "Rotate keys", "effort": "Low"},
			"not an object",
			42
		],
		"short_term": {"priority": "P1"},
		"medium_term": [{"task": "Add caching", "impact": 3}]
	}`))

	assert.Len(t, roadmap.ImmediateFixes, 1)
	assert.Equal(t, types.PriorityP0, roadmap.ImmediateFixes[0].Priority)
	assert.Equal(t, "Rotate keys", roadmap.ImmediateFixes[0].Task)
	assert.Empty(t, roadmap.ShortTerm)
	assert.NotNil(t, roadmap.ShortTerm)
	assert.Len(t, roadmap.MediumTerm, 1)
	assert.Equal(t, "3", roadmap.MediumTerm[0].Impact)
	assert.Equal(t, types.Priority(""), roadmap.MediumTerm[0].Priority)
}

func TestResolveRoadmap_NormalizesPriority(t *testing.T) {
	roadmap := ResolveRoadmap(RawText(`{
		"immediate_fixes": [{"priority": " P0 ", "task": "Rotate keys"}],
		"short_term": [{"priority": "p1\n", "task": "Add pagination"}]
	}`))

	require.Len(t, roadmap.ImmediateFixes, 1)
	require.Len(t, roadmap.ShortTerm, 1)
	assert.Equal(t, types.PriorityP0, roadmap.ImmediateFixes[0].Priority)
	assert.Equal(t, types.PriorityP1, roadmap.ShortTerm[0].Priority)
}

func TestResolveRoadmap_Absent(t *testing.T) {
	roadmap := ResolveRoadmap(Absent())

	assert.Empty(t, roadmap.Near())
	assert.Empty(t, roadmap.MediumTerm)
}
