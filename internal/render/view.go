package render

import (
	"fmt"
	"math"

	"github.com/TobiSchelling/ChatReport/internal/chart"
	"github.com/TobiSchelling/ChatReport/internal/export"
	"github.com/TobiSchelling/ChatReport/internal/report"
)

type reportView struct {
	Title        string
	Conversation string
	Source       string
	Generated    string
	Nodes        []nodeView
	Charts       []chartView
}

// nodeView flattens the Node variants for the template.
type nodeView struct {
	Kind    report.NodeKind
	Level   int
	Spans   []report.Span
	Ordered bool
	Items   [][]report.Span
	Header  []string
	Rows    [][]string
}

type chartView struct {
	Title string
	Kind  chart.Kind
	Bars  []barView
}

type barView struct {
	Label string
	Value string
	Width int
	Share string
}

func newReportView(r *export.Report) reportView {
	v := reportView{
		Title:        r.Title,
		Conversation: r.Conversation,
		Source:       r.Source,
		Generated:    r.GeneratedAt.Format(timestampLayout),
	}
	for _, n := range r.Document.Nodes {
		v.Nodes = append(v.Nodes, newNodeView(n))
	}
	for _, c := range r.Charts {
		v.Charts = append(v.Charts, newChartView(c))
	}
	return v
}

func newNodeView(n report.Node) nodeView {
	nv := nodeView{Kind: n.Kind()}
	switch n := n.(type) {
	case *report.Heading:
		nv.Level = n.Level
		nv.Spans = report.ParseInline(n.Text)
	case *report.Paragraph:
		nv.Spans = n.Spans
	case *report.List:
		nv.Ordered = n.Ordered
		for _, it := range n.Items {
			nv.Items = append(nv.Items, it.Spans)
		}
	case *report.Table:
		if len(n.Rows) > 0 {
			nv.Header = n.Rows[0]
			nv.Rows = n.Rows[1:]
		}
	}
	return nv
}

func newChartView(c chart.Spec) chartView {
	cv := chartView{Title: c.Title, Kind: c.Kind}
	peak := c.Max()
	var total float64
	for _, v := range c.Values {
		total += v
	}
	for i, label := range c.Labels {
		b := barView{Label: label, Value: formatValue(c, i)}
		if peak > 0 {
			b.Width = int(math.Round(c.Values[i] / peak * 100))
		}
		if total > 0 {
			b.Share = fmt.Sprintf("%.1f%%", c.Values[i]/total*100)
		}
		cv.Bars = append(cv.Bars, b)
	}
	return cv
}
