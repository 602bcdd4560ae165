package report

import (
	"regexp"
	"strings"
)

var (
	separatorRow = regexp.MustCompile(`^\s*\|[\s\-:|]+\|\s*$`)
	numberedItem = regexp.MustCompile(`^\d+\.\s(.+)$`)
)

var headingPrefixes = []struct {
	prefix string
	level  int
}{
	{"### ", 3},
	{"## ", 2},
	{"# ", 1},
}

var bulletPrefixes = []string{"- ", "* ", "• "}

type state int

const (
	idle state = iota
	inList
	inTable
)

type parser struct {
	doc     Document
	state   state
	items   []Item
	ordered bool
	rows    [][]string
}

// Parse rebuilds the block structure of text line by line. It accepts any
// input; unrecognised lines become paragraphs.
func Parse(text string) Document {
	p := &parser{}
	if text != "" {
		for _, line := range strings.Split(text, "\n") {
			p.line(strings.TrimRight(line, "\r"))
		}
	}
	p.flushTable()
	p.flushList()
	return p.doc
}

func (p *parser) line(line string) {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "|") {
		if p.state != inTable {
			p.flushList()
			p.state = inTable
		}
		if separatorRow.MatchString(trimmed) {
			return
		}
		if cells := splitRow(trimmed); len(cells) > 0 {
			p.rows = append(p.rows, cells)
		}
		return
	}
	if p.state == inTable {
		p.flushTable()
	}

	for _, h := range headingPrefixes {
		if strings.HasPrefix(line, h.prefix) {
			p.flushList()
			p.emit(&Heading{Level: h.level, Text: strings.TrimSpace(line[len(h.prefix):])})
			return
		}
	}

	if isRule(trimmed) {
		p.flushList()
		p.emit(&Rule{})
		return
	}

	if item, numbered, ok := listItem(trimmed); ok {
		p.state = inList
		p.items = append(p.items, Item{Text: item, Spans: ParseInline(item)})
		if numbered {
			p.ordered = true
		}
		return
	}

	p.flushList()
	if trimmed == "" {
		return
	}
	p.emit(&Paragraph{Text: trimmed, Spans: ParseInline(trimmed)})
}

func (p *parser) emit(n Node) {
	p.doc.Nodes = append(p.doc.Nodes, n)
}

func (p *parser) flushList() {
	if len(p.items) > 0 {
		p.emit(&List{Ordered: p.ordered, Items: p.items})
	}
	p.items, p.ordered = nil, false
	if p.state == inList {
		p.state = idle
	}
}

func (p *parser) flushTable() {
	if len(p.rows) > 0 {
		p.emit(&Table{Rows: p.rows})
	}
	p.rows = nil
	if p.state == inTable {
		p.state = idle
	}
}

// splitRow drops the outer pipes and trims every cell.
func splitRow(line string) []string {
	inner := strings.TrimPrefix(line, "|")
	inner = strings.TrimSuffix(inner, "|")
	if strings.TrimSpace(inner) == "" {
		return nil
	}
	cells := strings.Split(inner, "|")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

func listItem(trimmed string) (text string, numbered, ok bool) {
	for _, prefix := range bulletPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return strings.TrimSpace(trimmed[len(prefix):]), false, true
		}
	}
	if m := numberedItem.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1]), true, true
	}
	return "", false, false
}

func isRule(trimmed string) bool {
	switch trimmed {
	case "---", "***", "___":
		return true
	}
	return false
}
