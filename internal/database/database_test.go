package database

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(s string) *string { return &s }

func TestCreateConversation(t *testing.T) {
	db := openTestDB(t)
	id, err := db.CreateConversation("Sprint review", ptr("export.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("expected uuid id, got %q", id)
	}

	c, err := db.GetConversation(id)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if c == nil {
		t.Fatal("expected conversation, got nil")
	}
	if c.Title != "Sprint review" {
		t.Errorf("expected title 'Sprint review', got %q", c.Title)
	}
	if c.SourceFilename == nil || *c.SourceFilename != "export.json" {
		t.Errorf("unexpected source filename %v", c.SourceFilename)
	}
	if c.TurnCount != 0 {
		t.Errorf("expected 0 turns, got %d", c.TurnCount)
	}
	if c.LastResponse != nil {
		t.Errorf("expected nil last response, got %q", *c.LastResponse)
	}
}

func TestCreateConversationDefaultTitle(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreateConversation("", nil)
	c, _ := db.GetConversation(id)
	if c.Title != "Untitled conversation" {
		t.Errorf("expected default title, got %q", c.Title)
	}
}

func TestGetConversationMissing(t *testing.T) {
	db := openTestDB(t)
	c, err := db.GetConversation("nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != nil {
		t.Errorf("expected nil for missing conversation, got %+v", c)
	}
}

func TestAppendTurnPositions(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreateConversation("Chat", nil)

	for i, turn := range []struct{ role, content string }{
		{RoleUser, "How many bugs?"},
		{RoleAssistant, "Bug: 4"},
		{RoleUser, "And stories?"},
	} {
		pos, err := db.AppendTurn(id, turn.role, turn.content)
		if err != nil {
			t.Fatalf("AppendTurn %d: %v", i, err)
		}
		if pos != i {
			t.Errorf("expected position %d, got %d", i, pos)
		}
	}

	turns, err := db.GetTurns(id)
	if err != nil {
		t.Fatalf("GetTurns: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[1].Role != RoleAssistant || turns[1].Content != "Bug: 4" {
		t.Errorf("unexpected second turn %+v", turns[1])
	}

	c, _ := db.GetConversation(id)
	if c.TurnCount != 3 {
		t.Errorf("expected turn count 3, got %d", c.TurnCount)
	}
	if c.LastResponse == nil || *c.LastResponse != "Bug: 4" {
		t.Errorf("expected last response 'Bug: 4', got %v", c.LastResponse)
	}
}

func TestAppendTurnInvalidRole(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreateConversation("Chat", nil)
	if _, err := db.AppendTurn(id, "system", "hi"); err == nil {
		t.Error("expected error for invalid role")
	}
}

func TestAppendTurnMissingConversation(t *testing.T) {
	db := openTestDB(t)
	_, err := db.AppendTurn("missing", RoleUser, "hi")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListConversations(t *testing.T) {
	db := openTestDB(t)
	first, _ := db.CreateConversation("First", nil)
	second, _ := db.CreateConversation("Second", nil)

	list, err := db.ListConversations()
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(list))
	}
	if list[0].ID != second || list[1].ID != first {
		t.Errorf("expected newest first, got %s, %s", list[0].Title, list[1].Title)
	}
}

func TestRenameConversation(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreateConversation("Old", nil)
	if err := db.RenameConversation(id, "New"); err != nil {
		t.Fatalf("RenameConversation: %v", err)
	}
	c, _ := db.GetConversation(id)
	if c.Title != "New" {
		t.Errorf("expected 'New', got %q", c.Title)
	}
	if err := db.RenameConversation("missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteConversationCascades(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreateConversation("Chat", nil)
	db.AppendTurn(id, RoleUser, "q")
	db.AppendTurn(id, RoleAssistant, "a")

	if err := db.DeleteConversation(id); err != nil {
		t.Fatalf("DeleteConversation: %v", err)
	}
	c, _ := db.GetConversation(id)
	if c != nil {
		t.Error("expected conversation to be gone")
	}
	turns, err := db.GetTurns(id)
	if err != nil {
		t.Fatalf("GetTurns: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("expected turns to be deleted, got %d", len(turns))
	}
	if err := db.DeleteConversation(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
