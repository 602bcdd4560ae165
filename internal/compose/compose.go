// Package compose joins a stored conversation into one transcript ready for reporting.
package compose

import (
	"fmt"
	"log"
	"strings"

	"github.com/TobiSchelling/ChatReport/internal/database"
	"github.com/TobiSchelling/ChatReport/internal/extract"
)

const (
	questionHeader  = "## Question"
	analysisHeader  = "## Analysis"
	turnSeparator   = "\n---\n\n"
	noAnalysisLabel = "No analysis available."
)

// Turn is one message of a conversation.
type Turn struct {
	Role    string
	Content string
}

// Transcript formats turns as alternating Question and Analysis sections.
// User turns are kept verbatim and assistant turns are run through the extractor.
// With no turns, the extracted last response is returned instead.
func Transcript(turns []Turn, lastResponse string, ex *extract.Extractor) string {
	if ex == nil {
		ex = extract.New(false)
	}
	if len(turns) == 0 {
		if lastResponse == "" {
			return ""
		}
		return ex.Extract(lastResponse)
	}

	parts := make([]string, 0, len(turns))
	for _, t := range turns {
		if t.Role == database.RoleUser {
			parts = append(parts, fmt.Sprintf("%s\n%s\n", questionHeader, t.Content))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s\n%s\n", analysisHeader, ex.Extract(t.Content)))
	}
	return strings.Join(parts, turnSeparator)
}

// Composition is a conversation flattened into report input.
type Composition struct {
	ConversationID string
	Title          string
	Source         string
	Text           string
	TurnCount      int
}

// Composer builds transcripts from the conversation store.
type Composer struct {
	db *database.DB
	ex *extract.Extractor
}

// NewComposer creates a new transcript composer.
func NewComposer(db *database.DB, ex *extract.Extractor) *Composer {
	if ex == nil {
		ex = extract.New(false)
	}
	return &Composer{db: db, ex: ex}
}

// ComposeConversation loads a conversation and its turns and joins them into one transcript.
// Empty conversations yield a placeholder sentence rather than empty text.
func (c *Composer) ComposeConversation(conversationID string) (*Composition, error) {
	conv, err := c.db.GetConversation(conversationID)
	if err != nil {
		return nil, fmt.Errorf("loading conversation: %w", err)
	}
	if conv == nil {
		return nil, fmt.Errorf("%w: %s", database.ErrNotFound, conversationID)
	}

	stored, err := c.db.GetTurns(conversationID)
	if err != nil {
		return nil, fmt.Errorf("loading turns: %w", err)
	}
	turns := make([]Turn, len(stored))
	for i, t := range stored {
		turns[i] = Turn{Role: t.Role, Content: t.Content}
	}

	var last string
	if conv.LastResponse != nil {
		last = *conv.LastResponse
	}

	text := Transcript(turns, last, c.ex)
	if strings.TrimSpace(text) == "" {
		log.Printf("Conversation %s has no content to export", conversationID)
		text = noAnalysisLabel
	}

	comp := &Composition{
		ConversationID: conv.ID,
		Title:          conv.Title,
		Text:           text,
		TurnCount:      len(turns),
	}
	if conv.SourceFilename != nil {
		comp.Source = *conv.SourceFilename
	}
	return comp, nil
}
