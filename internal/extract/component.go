package extract

import (
	"strings"
)

// Kind identifies the UI component a node describes.
type Kind int

const (
	KindUnknown Kind = iota
	KindHeader
	KindText
	KindDataTile
	KindCard
	KindList
	KindTable
	KindChart
	KindSectionBlock
	KindLayout
	KindMiniCardBlock
)

var kindNames = map[string]Kind{
	"header":        KindHeader,
	"inlineheader":  KindHeader,
	"textcontent":   KindText,
	"text":          KindText,
	"paragraph":     KindText,
	"datatile":      KindDataTile,
	"minicard":      KindDataTile,
	"card":          KindCard,
	"list":          KindList,
	"table":         KindTable,
	"barchart":      KindChart,
	"barchartv2":    KindChart,
	"piechart":      KindChart,
	"piechartv2":    KindChart,
	"linechart":     KindChart,
	"linechartv2":   KindChart,
	"sectionblock":  KindSectionBlock,
	"layout":        KindLayout,
	"minicardblock": KindMiniCardBlock,
}

// ParseKind maps a component discriminant to its Kind, ignoring case.
func ParseKind(name string) Kind {
	return kindNames[strings.ToLower(name)]
}

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindText:
		return "text"
	case KindDataTile:
		return "datatile"
	case KindCard:
		return "card"
	case KindList:
		return "list"
	case KindTable:
		return "table"
	case KindChart:
		return "chart"
	case KindSectionBlock:
		return "sectionblock"
	case KindLayout:
		return "layout"
	case KindMiniCardBlock:
		return "minicardblock"
	}
	return "unknown"
}

// layoutSlots are visited in this order for every layout row.
var layoutSlots = []string{"headerLeft", "headerRight", "mediumLeft", "mediumRight"}

// component is a node carrying a "component" discriminant. Unknown kinds keep
// their props so the generic children/content pass can still run.
type component struct {
	kind  Kind
	props *Object
}

func (c component) reduce() string {
	parts := c.fragments()
	for _, key := range []string{"children", "content"} {
		for _, child := range array(c.props.Get(key)) {
			obj := object(child)
			if obj == nil {
				continue
			}
			if s := reduce(obj); s != "" && !contains(parts, s) {
				parts = append(parts, s)
			}
		}
	}
	return joinNonEmpty(parts, "\n")
}

func (c component) fragments() []string {
	p := c.props
	switch c.kind {
	case KindHeader:
		return headerFragments(p)
	case KindText:
		if s := firstText(p, "textMarkdown", "text", "content"); s != "" {
			return []string{s}
		}
	case KindDataTile:
		return dataTileFragments(p)
	case KindCard:
		return cardFragments(p)
	case KindList:
		return listFragments(p)
	case KindTable:
		return tableFragments(p)
	case KindChart:
		return chartFragments(p)
	case KindSectionBlock:
		return sectionFragments(p)
	case KindLayout:
		return layoutFragments(p)
	case KindMiniCardBlock:
		var parts []string
		for _, child := range array(p.Get("children")) {
			if obj := object(child); obj != nil {
				parts = append(parts, reduce(obj))
			}
		}
		return parts
	}
	return nil
}

func headerFragments(p *Object) []string {
	var parts []string
	if title := firstText(p, "title", "heading"); title != "" {
		parts = append(parts, "## "+title)
	}
	if sub := firstText(p, "subtitle", "description"); sub != "" {
		parts = append(parts, sub)
	}
	return parts
}

func dataTileFragments(p *Object) []string {
	var parts []string
	amount, description := text(p, "amount"), text(p, "description")
	if amount != "" && description != "" {
		parts = append(parts, "**"+description+"**: "+amount)
	}
	if lhs := object(p.Get("lhs")); lhs != nil {
		parts = append(parts, reduce(lhs))
	}
	return parts
}

func cardFragments(p *Object) []string {
	title := text(p, "title")
	if title == "" {
		return nil
	}
	if value := text(p, "value"); value != "" {
		return []string{"**" + title + "**: " + value}
	}
	return []string{"**" + title + "**"}
}

func listFragments(p *Object) []string {
	var parts []string
	if heading := text(p, "heading"); heading != "" {
		parts = append(parts, "### "+heading)
	}
	if desc := text(p, "description"); desc != "" {
		parts = append(parts, desc)
	}
	for _, item := range array(p.Get("items")) {
		if obj := object(item); obj != nil {
			title := text(obj, "title")
			if title == "" {
				continue
			}
			switch value, sub := text(obj, "value"), text(obj, "subtitle"); {
			case value != "":
				parts = append(parts, "- "+title+": "+value)
			case sub != "":
				parts = append(parts, "- **"+title+"**: "+sub)
			default:
				parts = append(parts, "- "+title)
			}
			continue
		}
		if s, ok := scalarText(item); ok && s != "" {
			parts = append(parts, "- "+s)
		}
	}
	return parts
}

func tableFragments(p *Object) []string {
	var parts []string
	header := array(object(p.Get("tableHeader")).Get("rows"))
	if len(header) > 0 {
		cells := make([]string, len(header))
		dashes := make([]string, len(header))
		for i, cell := range header {
			cells[i] = cellText(cell)
			dashes[i] = "---"
		}
		parts = append(parts, pipeRow(cells), pipeRow(dashes))
	}

	for _, row := range array(object(p.Get("tableBody")).Get("rows")) {
		var raw []Value
		if obj := object(row); obj != nil {
			var ok bool
			if raw, ok = obj.Get("children").([]Value); !ok {
				continue
			}
		} else if raw = array(row); raw == nil {
			continue
		}
		cells := make([]string, len(raw))
		for i, cell := range raw {
			cells[i] = cellText(cell)
		}
		parts = append(parts, pipeRow(cells))
	}
	return parts
}

// cellText flattens a table cell onto one line. Cells are either plain
// values or {"children": value} wrappers.
func cellText(v Value) string {
	if obj := object(v); obj != nil {
		v = obj.Get("children")
	}
	s, ok := scalarText(v)
	if !ok {
		s = reduce(v)
	}
	return strings.Join(strings.Fields(s), " ")
}

func pipeRow(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}

func chartFragments(p *Object) []string {
	var parts []string
	if title := firstText(p, "title", "heading"); title != "" {
		parts = append(parts, "### "+title)
	}

	switch data := object(p.Get("chartData")).Get("data").(type) {
	case *Object:
		labels := array(data.Get("labels"))
		var values []Value
		if series := array(data.Get("series")); len(series) > 0 {
			for _, s := range series {
				if obj := object(s); obj != nil {
					values = array(obj.Get("values"))
					break
				}
			}
		} else if values = array(data.Get("values")); len(values) == 0 {
			values = array(data.Get("data"))
		}
		for i := 0; i < len(labels) && i < len(values); i++ {
			label, _ := scalarText(labels[i])
			value, _ := scalarText(values[i])
			parts = append(parts, "- "+label+": "+value)
		}
	case []Value:
		for _, item := range data {
			obj := object(item)
			if obj == nil {
				continue
			}
			category := text(obj, "category")
			value, ok := obj.Lookup("value")
			if category == "" || !ok || value == nil {
				continue
			}
			s, _ := scalarText(value)
			parts = append(parts, "- "+category+": "+s)
		}
	}
	return parts
}

func sectionFragments(p *Object) []string {
	var parts []string
	for _, section := range array(p.Get("sections")) {
		obj := object(section)
		if obj == nil {
			continue
		}
		if trigger := text(obj, "trigger"); trigger != "" {
			parts = append(parts, "### "+trigger)
		}
		for _, c := range array(obj.Get("content")) {
			if child := object(c); child != nil {
				parts = append(parts, reduce(child))
			}
		}
	}
	return parts
}

func layoutFragments(p *Object) []string {
	var parts []string
	for _, row := range array(object(p.Get("children")).Get("rows")) {
		r := object(row)
		if r == nil {
			continue
		}
		for _, slot := range layoutSlots {
			switch v := r.Get(slot).(type) {
			case *Object:
				parts = append(parts, reduce(v))
			case []Value:
				for _, item := range v {
					if obj := object(item); obj != nil {
						parts = append(parts, reduce(obj))
					}
				}
			}
		}
	}
	return parts
}

func contains(parts []string, s string) bool {
	for _, p := range parts {
		if p == s {
			return true
		}
	}
	return false
}

func joinNonEmpty(parts []string, sep string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
