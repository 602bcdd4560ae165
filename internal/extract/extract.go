// Package extract flattens LLM UI-component payloads into readable markdown-like text.
package extract

import (
	"encoding/json"
	"html"
	"regexp"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// Mode records which strategy produced an extraction.
type Mode string

const (
	ModeEmpty    Mode = "empty"
	ModeJSON     Mode = "json"
	ModePrefix   Mode = "prefix"
	ModeLenient  Mode = "lenient"
	ModeVerbatim Mode = "verbatim"
)

// Result is the outcome of Extractor.ExtractDetailed.
type Result struct {
	Text string
	Mode Mode
}

var contentEnvelope = regexp.MustCompile(`(?s)<content[^>]*>(.*?)</content>`)

// wrapperKeys are tried in order on mappings without a component discriminant.
var wrapperKeys = []string{"component", "content", "children", "sections", "items", "rows"}

// presentationalKeys would otherwise duplicate numbers and labels already
// emitted from structured fields.
var presentationalKeys = map[string]bool{
	"iconName":     true,
	"iconCategory": true,
	"variant":      true,
	"type":         true,
	"isFoldable":   true,
	"value":        true,
}

// Extractor reduces raw LLM responses to readable text. The zero value is
// ready to use and performs strict JSON handling only.
type Extractor struct {
	// Lenient enables json-repair and hjson passes for JSON-looking input
	// that neither parses strictly nor has a balanced object prefix.
	Lenient bool
}

// New creates an Extractor.
func New(lenient bool) *Extractor {
	return &Extractor{Lenient: lenient}
}

// Extract reduces raw with a strict Extractor.
func Extract(raw string) string {
	return (&Extractor{}).Extract(raw)
}

// Extract returns the readable text for raw. It never fails: input that is
// not JSON comes back HTML-unescaped and otherwise unchanged.
func (e *Extractor) Extract(raw string) string {
	return e.ExtractDetailed(raw).Text
}

// ExtractDetailed is Extract, also reporting which strategy was used.
func (e *Extractor) ExtractDetailed(raw string) Result {
	if raw == "" {
		return Result{Mode: ModeEmpty}
	}

	decoded := html.UnescapeString(raw)
	working := decoded
	if m := contentEnvelope.FindStringSubmatch(decoded); m != nil {
		working = m[1]
	}
	working = strings.TrimSpace(working)
	if inner, ok := stripFence(working); ok {
		working = inner
	}

	if v, err := Decode(working); err == nil {
		return Result{Text: reduce(v), Mode: ModeJSON}
	}

	if strings.HasPrefix(working, "{") {
		if end := balancedObjectEnd(working); end > 0 {
			if v, err := Decode(working[:end]); err == nil {
				return Result{Text: reduce(v), Mode: ModePrefix}
			}
		}
	}

	if e.Lenient && (strings.HasPrefix(working, "{") || strings.HasPrefix(working, "[")) {
		if v, ok := lenientDecode(working); ok {
			return Result{Text: reduce(v), Mode: ModeLenient}
		}
	}

	return Result{Text: decoded, Mode: ModeVerbatim}
}

// balancedObjectEnd returns the length of the first balanced top-level
// object in s, or 0 when braces never balance. Braces inside string literals
// are ignored.
func balancedObjectEnd(s string) int {
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return 0
}

// lenientDecode tries json-repair first and hjson second. hjson decodes into
// Go maps, so key order is lost on that path.
func lenientDecode(s string) (Value, bool) {
	if repaired, err := jsonrepair.RepairJSON(s); err == nil {
		if v, err := Decode(repaired); err == nil {
			return v, true
		}
	}

	var loose any
	if err := hjson.Unmarshal([]byte(s), &loose); err != nil {
		return nil, false
	}
	data, err := json.Marshal(loose)
	if err != nil {
		return nil, false
	}
	v, err := Decode(string(data))
	return v, err == nil
}

// Reduce flattens an already decoded value.
func Reduce(v Value) string {
	return reduce(v)
}

func reduce(v Value) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []Value:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := reduce(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n\n")
	case *Object:
		if d, ok := t.Lookup("component"); ok {
			if nested := object(d); nested != nil {
				return reduce(nested)
			}
			name, _ := d.(string)
			props := object(t.Get("props"))
			if props == nil {
				props = newObject()
			}
			return component{kind: ParseKind(name), props: props}.reduce()
		}
		return reduceObject(t)
	}
	s, _ := scalarText(v)
	return s
}

func reduceObject(o *Object) string {
	for _, key := range wrapperKeys {
		if v, ok := o.Lookup(key); ok {
			if s := reduce(v); s != "" {
				return s
			}
			break
		}
	}

	var parts []string
	for _, key := range o.Keys {
		if presentationalKeys[key] {
			continue
		}
		if s := reduce(o.Get(key)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}
