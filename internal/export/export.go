// Package export turns flattened analysis text into a report: a document
// model plus chart specs, ready for a rendering backend.
package export

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TobiSchelling/ChatReport/internal/chart"
	"github.com/TobiSchelling/ChatReport/internal/compose"
	"github.com/TobiSchelling/ChatReport/internal/extract"
	"github.com/TobiSchelling/ChatReport/internal/report"
)

const (
	DefaultTitle   = "Analysis Report"
	emptyParagraph = "No content available."
)

// StepResult holds the result of a single build step.
type StepResult struct {
	Name    string
	Summary string
}

// Report is a built report, independent of output format.
type Report struct {
	Title        string          `json:"title"`
	Conversation string          `json:"conversation,omitempty"`
	Source       string          `json:"source,omitempty"`
	GeneratedAt  time.Time       `json:"generated_at"`
	Text         string          `json:"text"`
	Document     report.Document `json:"document"`
	Charts       []chart.Spec    `json:"charts"`
	Steps        []StepResult    `json:"-"`
}

// Options controls report framing.
type Options struct {
	Title         string
	IncludeCharts bool
}

// Exporter builds reports. It is safe for concurrent use.
type Exporter struct {
	ex     *extract.Extractor
	charts *chart.Builder
	opts   Options
	now    func() time.Time
}

// New creates an Exporter. A nil extractor means strict extraction.
func New(ex *extract.Extractor, opts Options) *Exporter {
	if ex == nil {
		ex = extract.New(false)
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	return &Exporter{
		ex:     ex,
		charts: chart.NewBuilder(),
		opts:   opts,
		now:    time.Now,
	}
}

// Extractor returns the extractor used for raw responses.
func (e *Exporter) Extractor() *extract.Extractor {
	return e.ex
}

// Build parses already-flattened text into a document and, when enabled,
// mines it for charts. Parsing and mining run concurrently.
func (e *Exporter) Build(ctx context.Context, text string) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := &Report{
		Title:       e.opts.Title,
		GeneratedAt: e.now(),
		Text:        text,
	}

	if strings.TrimSpace(text) == "" {
		r.Document = report.Document{Nodes: []report.Node{&report.Paragraph{
			Text:  emptyParagraph,
			Spans: report.ParseInline(emptyParagraph),
		}}}
		r.Steps = append(r.Steps, StepResult{Name: "Parse", Summary: "No content; placeholder paragraph"})
		return r, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		r.Document = report.Parse(text)
		return nil
	})
	if e.opts.IncludeCharts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.Charts = e.charts.Build(text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building report: %w", err)
	}

	r.Steps = append(r.Steps, StepResult{
		Name:    "Parse",
		Summary: fmt.Sprintf("%d document nodes", r.Document.Len()),
	})
	if e.opts.IncludeCharts {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Charts",
			Summary: fmt.Sprintf("%d charts", len(r.Charts)),
		})
	}
	return r, nil
}

// BuildResponse extracts a single raw LLM response and builds a report from it.
func (e *Exporter) BuildResponse(ctx context.Context, raw string) (*Report, error) {
	res := e.ex.ExtractDetailed(raw)
	switch res.Mode {
	case extract.ModePrefix, extract.ModeLenient:
		log.Printf("Recovered malformed response via %s decoding", res.Mode)
	}

	r, err := e.Build(ctx, res.Text)
	if err != nil {
		return nil, err
	}
	r.Steps = append([]StepResult{{
		Name:    "Extract",
		Summary: fmt.Sprintf("%d characters (%s)", len(res.Text), res.Mode),
	}}, r.Steps...)
	return r, nil
}

// BuildConversation joins turns into a transcript and builds a report from it.
// With no turns the last response alone is used.
func (e *Exporter) BuildConversation(ctx context.Context, turns []compose.Turn, lastResponse string) (*Report, error) {
	text := compose.Transcript(turns, lastResponse, e.ex)
	r, err := e.Build(ctx, text)
	if err != nil {
		return nil, err
	}
	r.Steps = append([]StepResult{{
		Name:    "Compose",
		Summary: fmt.Sprintf("%d turns joined", len(turns)),
	}}, r.Steps...)
	return r, nil
}

// BuildComposition builds a report from a stored conversation's transcript.
func (e *Exporter) BuildComposition(ctx context.Context, c *compose.Composition) (*Report, error) {
	r, err := e.Build(ctx, c.Text)
	if err != nil {
		return nil, err
	}
	r.Conversation = c.Title
	r.Source = c.Source
	r.Steps = append([]StepResult{{
		Name:    "Compose",
		Summary: fmt.Sprintf("%d turns joined from %s", c.TurnCount, c.ConversationID),
	}}, r.Steps...)
	log.Printf("Report built for conversation %s: %d nodes, %d charts", c.ConversationID, r.Document.Len(), len(r.Charts))
	return r, nil
}
