// Package ai provides the model clients used for narrative generation and a
// tolerant parser for the JSON objects they return.
package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MaxReplyBytes caps the reply size ParseObject will look at.
const MaxReplyBytes = 1 << 20

// ErrNoObject is returned when a reply holds no decodable JSON object.
var ErrNoObject = errors.New("no JSON object in model reply")

var (
	fenceRegex         = regexp.MustCompile("(?s)```[a-zA-Z]*[ \t]*\n?(.*?)```")
	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)
	bareKeyRegex       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	lineCommentRegex   = regexp.MustCompile(`(?m)^\s*//.*$`)
)

// ParseObject decodes the first JSON object in a model reply. Replies are
// often wrapped in prose or markdown fences, or carry trailing commas, bare
// keys and line comments; each candidate is tried as-is and then repaired.
func ParseObject(reply string) (map[string]any, error) {
	if len(reply) > MaxReplyBytes {
		return nil, fmt.Errorf("reply of %d bytes exceeds %d byte limit", len(reply), MaxReplyBytes)
	}
	text := strings.TrimSpace(reply)
	if text == "" {
		return nil, ErrNoObject
	}

	for _, candidate := range candidates(text) {
		if obj, ok := decodeObject(candidate); ok {
			return obj, nil
		}
		if obj, ok := decodeObject(repair(candidate)); ok {
			return obj, nil
		}
	}
	return nil, ErrNoObject
}

// candidates lists the reply, the body of its first code fence and the
// outermost balanced object, in that order.
func candidates(text string) []string {
	out := []string{text}
	if m := fenceRegex.FindStringSubmatch(text); m != nil {
		out = append(out, strings.TrimSpace(m[1]))
	}
	if obj := balancedObject(text); obj != "" {
		out = append(out, obj)
	}
	return out
}

func decodeObject(text string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// repair fixes the syntax slips models make most. Single quotes are left
// alone since apostrophes in valid strings would break.
func repair(text string) string {
	text = lineCommentRegex.ReplaceAllString(text, "")
	text = trailingCommaRegex.ReplaceAllString(text, "$1")
	text = bareKeyRegex.ReplaceAllString(text, `$1"$2":`)
	return strings.TrimSpace(text)
}

// balancedObject returns the text from the first '{' to its matching '}',
// skipping braces inside string literals, or "" when unbalanced.
func balancedObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
