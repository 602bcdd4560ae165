package compose

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TobiSchelling/ChatReport/internal/database"
	"github.com/TobiSchelling/ChatReport/internal/extract"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(s string) *string { return &s }

func TestTranscript(t *testing.T) {
	turns := []Turn{
		{Role: database.RoleUser, Content: "How many bugs are open?"},
		{Role: database.RoleAssistant, Content: `{"component":"header","props":{"title":"Summary"}}`},
	}
	got := Transcript(turns, "", extract.New(false))
	want := "## Question\nHow many bugs are open?\n\n---\n\n## Analysis\n## Summary\n"
	if got != want {
		t.Errorf("Transcript mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestTranscriptLeavesQuestionsAlone(t *testing.T) {
	turns := []Turn{{Role: database.RoleUser, Content: "a &amp; b"}}
	got := Transcript(turns, "", nil)
	if !strings.Contains(got, "a &amp; b") {
		t.Errorf("expected user content verbatim, got %q", got)
	}
}

func TestTranscriptFallsBackToLastResponse(t *testing.T) {
	got := Transcript(nil, "Bug: 3 &amp; Task: 2", nil)
	if got != "Bug: 3 & Task: 2" {
		t.Errorf("expected extracted last response, got %q", got)
	}
	if Transcript(nil, "", nil) != "" {
		t.Error("expected empty transcript with no turns and no last response")
	}
}

func TestComposeConversation(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreateConversation("Sprint 12", ptr("issues.xlsx"))
	db.AppendTurn(id, database.RoleUser, "Break down by type")
	db.AppendTurn(id, database.RoleAssistant, "Bug: 12\nTask: 5")

	comp, err := NewComposer(db, nil).ComposeConversation(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if comp.Title != "Sprint 12" || comp.Source != "issues.xlsx" {
		t.Errorf("unexpected metadata %+v", comp)
	}
	if comp.TurnCount != 2 {
		t.Errorf("expected 2 turns, got %d", comp.TurnCount)
	}
	if !strings.HasPrefix(comp.Text, "## Question\nBreak down by type\n") {
		t.Errorf("unexpected transcript start %q", comp.Text)
	}
	if !strings.Contains(comp.Text, "## Analysis\nBug: 12\nTask: 5\n") {
		t.Errorf("expected analysis section, got %q", comp.Text)
	}
}

func TestComposeEmptyConversation(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreateConversation("Empty", nil)

	comp, err := NewComposer(db, nil).ComposeConversation(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if comp.Text != "No analysis available." {
		t.Errorf("expected placeholder, got %q", comp.Text)
	}
}

func TestComposeMissingConversation(t *testing.T) {
	db := openTestDB(t)
	_, err := NewComposer(db, nil).ComposeConversation("missing")
	if !errors.Is(err, database.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
