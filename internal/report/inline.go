package report

import (
	"regexp"
	"strings"
)

// Style is the emphasis applied to a Span.
type Style string

const (
	Plain  Style = "plain"
	Bold   Style = "bold"
	Italic Style = "italic"
	Code   Style = "code"
)

// Span is a run of text with one style.
type Span struct {
	Style Style  `json:"style"`
	Text  string `json:"text"`
}

// Stray markers that open no span are kept as plain text.
var inlinePattern = regexp.MustCompile("\\*\\*(.+?)\\*\\*|\\*(.+?)\\*|`(.+?)`|([^*`]+)|([*`])")

// ParseInline splits s into styled spans. Markers are consumed, text is kept.
func ParseInline(s string) []Span {
	var spans []Span
	for _, m := range inlinePattern.FindAllStringSubmatch(s, -1) {
		switch {
		case m[1] != "":
			spans = append(spans, Span{Style: Bold, Text: m[1]})
		case m[2] != "":
			spans = append(spans, Span{Style: Italic, Text: m[2]})
		case m[3] != "":
			spans = append(spans, Span{Style: Code, Text: m[3]})
		default:
			text := m[4] + m[5]
			if n := len(spans); n > 0 && spans[n-1].Style == Plain {
				spans[n-1].Text += text
				continue
			}
			spans = append(spans, Span{Style: Plain, Text: text})
		}
	}
	return spans
}

// PlainText joins spans without markup.
func PlainText(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

func spansMarkdown(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		switch s.Style {
		case Bold:
			b.WriteString("**" + s.Text + "**")
		case Italic:
			b.WriteString("*" + s.Text + "*")
		case Code:
			b.WriteString("`" + s.Text + "`")
		default:
			b.WriteString(s.Text)
		}
	}
	return b.String()
}
