// Package report reconstructs a document model from flattened markdown-like text.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NodeKind tags a Node variant.
type NodeKind string

const (
	KindHeading   NodeKind = "heading"
	KindParagraph NodeKind = "paragraph"
	KindList      NodeKind = "list"
	KindTable     NodeKind = "table"
	KindRule      NodeKind = "rule"
)

// Node is one block of a Document: *Heading, *Paragraph, *List, *Table or *Rule.
type Node interface {
	Kind() NodeKind
}

// Heading is a "#", "##" or "###" line.
type Heading struct {
	Level int
	Text  string
}

// Paragraph is one line of prose with inline emphasis.
type Paragraph struct {
	Text  string
	Spans []Span
}

// Item is one list entry, prefix stripped.
type Item struct {
	Text  string
	Spans []Span
}

// List groups consecutive bullet and numbered items.
type List struct {
	Ordered bool
	Items   []Item
}

// Table holds pipe-delimited rows as found; rows are not padded to a common width.
type Table struct {
	Rows [][]string
}

// Rule is a thematic break such as the "---" between transcript turns.
type Rule struct{}

func (*Heading) Kind() NodeKind   { return KindHeading }
func (*Paragraph) Kind() NodeKind { return KindParagraph }
func (*List) Kind() NodeKind      { return KindList }
func (*Table) Kind() NodeKind     { return KindTable }
func (*Rule) Kind() NodeKind      { return KindRule }

// Columns returns the widest row length.
func (t *Table) Columns() int {
	n := 0
	for _, r := range t.Rows {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}

// Document is the ordered block sequence built for one export.
type Document struct {
	Nodes []Node
}

// Len returns the number of nodes.
func (d Document) Len() int {
	return len(d.Nodes)
}

type nodeJSON struct {
	Kind    NodeKind   `json:"kind"`
	Level   int        `json:"level,omitempty"`
	Text    string     `json:"text,omitempty"`
	Spans   []Span     `json:"spans,omitempty"`
	Ordered bool       `json:"ordered,omitempty"`
	Items   []Item     `json:"items,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
}

// MarshalJSON encodes the document as an array of kind-tagged objects.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make([]nodeJSON, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		nj := nodeJSON{Kind: n.Kind()}
		switch v := n.(type) {
		case *Heading:
			nj.Level, nj.Text = v.Level, v.Text
		case *Paragraph:
			nj.Text, nj.Spans = v.Text, v.Spans
		case *List:
			nj.Ordered, nj.Items = v.Ordered, v.Items
		case *Table:
			nj.Rows = v.Rows
		}
		out = append(out, nj)
	}
	return json.Marshal(out)
}

// Markdown serialises the document back to the text form Parse accepts.
func (d Document) Markdown() string {
	blocks := make([]string, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		switch v := n.(type) {
		case *Heading:
			blocks = append(blocks, strings.Repeat("#", v.Level)+" "+v.Text)
		case *Paragraph:
			blocks = append(blocks, spansMarkdown(v.Spans))
		case *List:
			lines := make([]string, len(v.Items))
			for i, item := range v.Items {
				prefix := "- "
				if v.Ordered {
					prefix = fmt.Sprintf("%d. ", i+1)
				}
				lines[i] = prefix + spansMarkdown(item.Spans)
			}
			blocks = append(blocks, strings.Join(lines, "\n"))
		case *Table:
			lines := make([]string, 0, len(v.Rows)+1)
			for i, row := range v.Rows {
				lines = append(lines, "| "+strings.Join(row, " | ")+" |")
				if i == 0 {
					dashes := make([]string, len(row))
					for j := range dashes {
						dashes[j] = "---"
					}
					lines = append(lines, "| "+strings.Join(dashes, " | ")+" |")
				}
			}
			blocks = append(blocks, strings.Join(lines, "\n"))
		case *Rule:
			blocks = append(blocks, "---")
		}
	}
	return strings.Join(blocks, "\n\n")
}
