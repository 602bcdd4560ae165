// Package chart turns mined keyword data into renderer-agnostic chart descriptions.
package chart

import (
	"github.com/TobiSchelling/ChatReport/internal/mine"
)

// Kind is the chart shape a renderer should draw.
type Kind string

const (
	Pie           Kind = "pie"
	VerticalBar   Kind = "verticalBar"
	HorizontalBar Kind = "horizontalBar"
)

// Spec describes one chart. Labels and Values are index-aligned.
type Spec struct {
	Kind     Kind      `json:"kind"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Labels   []string  `json:"labels"`
	Values   []float64 `json:"values"`
	Units    []string  `json:"units"`
}

// Max returns the largest value, or 0 for an empty spec.
func (s Spec) Max() float64 {
	var m float64
	for _, v := range s.Values {
		if v > m {
			m = v
		}
	}
	return m
}

type definition struct {
	category string
	kind     Kind
	title    string
	miner    *mine.Miner
}

// Builder mines the fixed categories and emits a Spec for each one with data.
// It holds only compiled patterns and is safe for concurrent use.
type Builder struct {
	defs []definition
}

// NewBuilder compiles the type, status and priority miners.
func NewBuilder() *Builder {
	meta := map[string]struct {
		kind  Kind
		title string
	}{
		mine.CategoryType:     {VerticalBar, "Issues by Type"},
		mine.CategoryStatus:   {Pie, "Issues by Status"},
		mine.CategoryPriority: {HorizontalBar, "Issues by Priority"},
	}

	b := &Builder{}
	for _, cat := range mine.Categories() {
		m := meta[cat.Name]
		b.defs = append(b.defs, definition{
			category: cat.Name,
			kind:     m.kind,
			title:    m.title,
			miner:    mine.NewMiner(cat.Keywords),
		})
	}
	return b
}

// Build returns one Spec per category that matched at least one keyword,
// in type, status, priority order.
func (b *Builder) Build(text string) []Spec {
	var specs []Spec
	for _, d := range b.defs {
		result := d.miner.Mine(text)
		if len(result) == 0 {
			continue
		}
		units := make([]string, len(result))
		for i, v := range result {
			units[i] = v.Unit.String()
		}
		specs = append(specs, Spec{
			Kind:     d.kind,
			Title:    d.title,
			Category: d.category,
			Labels:   result.Labels(),
			Values:   result.Numbers(),
			Units:    units,
		})
	}
	return specs
}

// Build is a one-shot NewBuilder().Build(text).
func Build(text string) []Spec {
	return NewBuilder().Build(text)
}
