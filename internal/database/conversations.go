package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const conversationColumns = `c.id, c.title, c.source_filename, c.last_response,
	(SELECT COUNT(*) FROM turns t WHERE t.conversation_id = c.id), c.created_at, c.updated_at`

// CreateConversation inserts a new conversation and returns its generated ID.
func (db *DB) CreateConversation(title string, sourceFilename *string) (string, error) {
	id := uuid.NewString()
	if title == "" {
		title = "Untitled conversation"
	}
	_, err := db.conn.Exec(
		`INSERT INTO conversations (id, title, source_filename) VALUES (?, ?, ?)`,
		id, title, sourceFilename,
	)
	if err != nil {
		return "", fmt.Errorf("inserting conversation: %w", err)
	}
	return id, nil
}

// GetConversation returns a conversation by ID, or nil if it does not exist.
func (db *DB) GetConversation(id string) (*Conversation, error) {
	row := db.conn.QueryRow(
		`SELECT `+conversationColumns+` FROM conversations c WHERE c.id = ?`, id,
	)
	c, err := scanConversation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListConversations returns all conversations, most recently updated first.
func (db *DB) ListConversations() ([]Conversation, error) {
	rows, err := db.conn.Query(
		`SELECT ` + conversationColumns + ` FROM conversations c
		ORDER BY c.updated_at DESC, c.created_at DESC, c.rowid DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// RenameConversation updates a conversation's title.
func (db *DB) RenameConversation(id, title string) error {
	res, err := db.conn.Exec(
		`UPDATE conversations SET title = ?, updated_at = datetime('now') WHERE id = ?`,
		title, id,
	)
	if err != nil {
		return err
	}
	return expectRow(res, id)
}

// DeleteConversation removes a conversation and its turns.
func (db *DB) DeleteConversation(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM turns WHERE conversation_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := expectRow(res, id); err != nil {
		return err
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConversation(s scanner) (*Conversation, error) {
	var c Conversation
	if err := s.Scan(&c.ID, &c.Title, &c.SourceFilename, &c.LastResponse,
		&c.TurnCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// ErrNotFound is returned when a write targets a conversation that does not exist.
var ErrNotFound = errors.New("conversation not found")

func expectRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
