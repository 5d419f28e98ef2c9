package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObject_Direct(t *testing.T) {
	obj, err := ParseObject(`{"architecture_type": "monolith", "key_modules": ["api"]}`)

	require.NoError(t, err)
	assert.Equal(t, "monolith", obj["architecture_type"])
	assert.Equal(t, []any{"api"}, obj["key_modules"])
}

func TestParseObject_Recovers(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"json fence", "```json\n{\"architecture_type\": \"monolith\"}\n```"},
		{"bare fence", "```\n{\"architecture_type\": \"monolith\"}\n```"},
		{"fence with preamble", "Here is the analysis:\n```json\n{\"architecture_type\": \"monolith\"}\n```\nLet me know."},
		{"trailing comma", `{"architecture_type": "monolith", "key_modules": ["api",],}`},
		{"bare keys", `{architecture_type: "monolith"}`},
		{"line comment", "{\n// the shape\n\"architecture_type\": \"monolith\"\n}"},
		{"prose around object", `The repository looks like {"architecture_type": "monolith"} to me.`},
		{"prose with trailing brace", `Result {"architecture_type": "monolith"} and then a stray } here.`},
		{"braces inside strings", `Note: {"note": "use {braces} and \"quotes\"", "architecture_type": "monolith"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := ParseObject(tt.input)
			require.NoError(t, err)
			assert.Equal(t, "monolith", obj["architecture_type"])
		})
	}
}

func TestParseObject_NoObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", "   \n"},
		{"prose", "no json here at all"},
		{"array", `["monolith"]`},
		{"null", "null"},
		{"unbalanced", `{"architecture_type": "monolith"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := ParseObject(tt.input)
			assert.ErrorIs(t, err, ErrNoObject)
			assert.Nil(t, obj)
		})
	}
}

func TestParseObject_SizeLimit(t *testing.T) {
	big := `{"architecture_type": "` + strings.Repeat("x", MaxReplyBytes) + `"}`

	_, err := ParseObject(big)
	assert.ErrorContains(t, err, "exceeds")
	assert.NotErrorIs(t, err, ErrNoObject)
}
