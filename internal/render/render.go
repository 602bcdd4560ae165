// Package render writes built reports as HTML, JSON or Markdown.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/TobiSchelling/ChatReport/internal/chart"
	"github.com/TobiSchelling/ChatReport/internal/export"
	"github.com/TobiSchelling/ChatReport/internal/mine"
	"github.com/TobiSchelling/ChatReport/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

var reportTemplate = template.Must(
	template.New("report.html").Funcs(template.FuncMap{
		"spans": spansHTML,
	}).ParseFS(templateFS, "templates/report.html"),
)

const timestampLayout = "January 02, 2006 at 15:04"

// Format is an output format for a report.
type Format string

const (
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts "html", "json", "markdown" or "md".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "html", "":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown format %q (use html, json or markdown)", s)
}

// ContentType returns the HTTP content type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	}
	return "text/html; charset=utf-8"
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Filename is the download name for a report in this format.
func (f Format) Filename() string {
	return "analysis_report." + f.Extension()
}

// Write renders r to w in format f.
func Write(w io.Writer, f Format, r *export.Report) error {
	switch f {
	case FormatJSON:
		return JSON(w, r)
	case FormatMarkdown:
		return Markdown(w, r)
	case FormatHTML:
		return HTML(w, r)
	}
	return fmt.Errorf("unknown format %q", f)
}

// JSON writes the report as indented JSON.
func JSON(w io.Writer, r *export.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// Markdown writes the report as a markdown document. Charts become tables.
func Markdown(w io.Writer, r *export.Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	fmt.Fprintf(&b, "_Generated on %s_\n\n", r.GeneratedAt.Format(timestampLayout))
	if r.Conversation != "" {
		fmt.Fprintf(&b, "**Conversation:** %s\n\n", r.Conversation)
	}
	if r.Source != "" {
		fmt.Fprintf(&b, "**Source:** %s\n\n", r.Source)
	}

	b.WriteString("## Analysis\n\n")
	b.WriteString(nested(r.Document).Markdown())

	if len(r.Charts) > 0 {
		b.WriteString("\n\n## Visualizations\n")
		for _, c := range r.Charts {
			fmt.Fprintf(&b, "\n### %s\n\n| %s | Value |\n|---|---|\n", c.Title, categoryHeader(c.Category))
			for i, label := range c.Labels {
				fmt.Fprintf(&b, "| %s | %s |\n", label, formatValue(c, i))
			}
		}
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// HTML writes the report as a standalone HTML page.
func HTML(w io.Writer, r *export.Report) error {
	if err := reportTemplate.Execute(w, newReportView(r)); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

// Preview renders markdown-like text to HTML.
func Preview(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// nested demotes headings one level so they sit under the Analysis section.
func nested(d report.Document) report.Document {
	out := report.Document{Nodes: make([]report.Node, len(d.Nodes))}
	for i, n := range d.Nodes {
		if h, ok := n.(*report.Heading); ok && h.Level < 6 {
			n = &report.Heading{Level: h.Level + 1, Text: h.Text}
		}
		out.Nodes[i] = n
	}
	return out
}

func categoryHeader(category string) string {
	if category == "" {
		return "Label"
	}
	return strings.ToUpper(category[:1]) + category[1:]
}

func formatValue(c chart.Spec, i int) string {
	s := strconv.FormatFloat(c.Values[i], 'f', -1, 64)
	if i < len(c.Units) && c.Units[i] == mine.Percent.String() {
		s += "%"
	}
	return s
}

func spansHTML(spans []report.Span) template.HTML {
	var b strings.Builder
	for _, sp := range spans {
		text := template.HTMLEscapeString(sp.Text)
		switch sp.Style {
		case report.Bold:
			b.WriteString("<strong>" + text + "</strong>")
		case report.Italic:
			b.WriteString("<em>" + text + "</em>")
		case report.Code:
			b.WriteString("<code>" + text + "</code>")
		default:
			b.WriteString(text)
		}
	}
	return template.HTML(b.String()) //nolint: gosec
}
