package narrative

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/steveyegge/reposage/internal/ai"
	"github.com/steveyegge/reposage/internal/types"
)

// PayloadKind says which variant a Payload holds.
type PayloadKind int

const (
	KindAbsent PayloadKind = iota
	KindStructured
	KindRawText
)

func (k PayloadKind) String() string {
	switch k {
	case KindStructured:
		return "structured"
	case KindRawText:
		return "raw_text"
	default:
		return "absent"
	}
}

// Payload is narrator output as it arrives from outside: an already decoded
// mapping, raw model text, or nothing. It is resolved once into the
// canonical types and never passed further in.
type Payload struct {
	kind       PayloadKind
	structured map[string]any
	raw        string
}

// Structured wraps a decoded mapping. A nil map is Absent.
func Structured(fields map[string]any) Payload {
	if fields == nil {
		return Absent()
	}
	return Payload{kind: KindStructured, structured: fields}
}

// RawText wraps unparsed text. Blank text is Absent.
func RawText(text string) Payload {
	if strings.TrimSpace(text) == "" {
		return Absent()
	}
	return Payload{kind: KindRawText, raw: text}
}

// Absent is the empty payload.
func Absent() Payload {
	return Payload{kind: KindAbsent}
}

// FromAny classifies an arbitrary decoded value. Structs and pointers to
// structs go through a JSON round trip; anything that is not an object
// becomes Absent.
func FromAny(v any) Payload {
	switch val := v.(type) {
	case nil:
		return Absent()
	case Payload:
		return val
	case map[string]any:
		return Structured(val)
	case string:
		return RawText(val)
	case []byte:
		return RawText(string(val))
	}

	data, err := json.Marshal(v)
	if err != nil {
		slog.Debug("narrator payload not serializable", "type", fmt.Sprintf("%T", v), "error", err)
		return Absent()
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return Absent()
	}
	return Structured(fields)
}

// Kind returns the variant.
func (p Payload) Kind() PayloadKind {
	return p.kind
}

// fields returns the payload as a mapping. Raw text is run through the
// tolerant parser; text that is not a JSON object yields nil.
func (p Payload) fields(context string) map[string]any {
	switch p.kind {
	case KindStructured:
		return p.structured
	case KindRawText:
		fields, err := ai.ParseObject(p.raw)
		if err != nil {
			slog.Debug("model reply not usable, treating as absent", "payload", context, "error", err)
			return nil
		}
		return fields
	default:
		return nil
	}
}

// ResolveArchitecture converts a payload into an ArchitectureResult. Missing
// or wrongly typed fields become empty values.
func ResolveArchitecture(p Payload) types.ArchitectureResult {
	fields := p.fields("architecture")
	result := types.ArchitectureResult{
		ArchitectureType:    types.ParseArchitectureType(stringField(fields, "architecture_type")),
		KeyModules:          stringList(fields, "key_modules"),
		DesignPatterns:      stringList(fields, "detected_design_patterns", "design_patterns"),
		ServiceInteractions: stringList(fields, "service_interactions"),
		Frameworks:          stringList(fields, "frameworks"),
		RuntimeFlowSummary:  stringField(fields, "runtime_flow_summary", "summary"),
	}
	if fields == nil && p.kind != KindAbsent {
		slog.Warn("architecture payload could not be read, using empty result", "kind", p.kind.String())
	}
	return result
}

// ResolveRoadmap converts a payload into a Roadmap. Entries that are not
// objects are dropped.
func ResolveRoadmap(p Payload) types.Roadmap {
	fields := p.fields("roadmap")
	if fields == nil && p.kind != KindAbsent {
		slog.Warn("roadmap payload could not be read, using empty roadmap", "kind", p.kind.String())
	}
	return types.Roadmap{
		ImmediateFixes: roadmapItems(fields, "immediate_fixes"),
		ShortTerm:      roadmapItems(fields, "short_term"),
		MediumTerm:     roadmapItems(fields, "medium_term"),
	}
}

func roadmapItems(fields map[string]any, key string) []types.RoadmapItem {
	items := []types.RoadmapItem{}
	raw, ok := fields[key].([]any)
	if !ok {
		return items
	}
	for _, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, types.RoadmapItem{
			Priority:      types.Priority(strings.ToUpper(strings.TrimSpace(stringField(obj, "priority")))),
			Task:          stringField(obj, "task"),
			Impact:        stringField(obj, "impact"),
			Effort:        stringField(obj, "effort"),
			Risk:          stringField(obj, "risk"),
			Justification: stringField(obj, "justification"),
		})
	}
	return items
}

// stringField returns the first key holding a scalar, formatted as text.
func stringField(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := scalarString(fields[key]); ok {
			return s
		}
	}
	return ""
}

// stringList accepts a list of scalars or a single string. Non-scalar
// elements are skipped.
func stringList(fields map[string]any, keys ...string) []string {
	out := []string{}
	for _, key := range keys {
		switch val := fields[key].(type) {
		case []any:
			for _, elem := range val {
				if s, ok := scalarString(elem); ok && s != "" {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return append(out, val...)
		case string:
			if val != "" {
				return append(out, val)
			}
			return out
		}
	}
	return out
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case bool:
		return strconv.FormatBool(val), true
	}
	return "", false
}
