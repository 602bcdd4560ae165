package database

import (
	"fmt"
)

// AppendTurn adds a message to the end of a conversation and returns its position.
// Assistant turns also become the conversation's last response.
func (db *DB) AppendTurn(conversationID, role, content string) (int, error) {
	if role != RoleUser && role != RoleAssistant {
		return 0, fmt.Errorf("invalid role %q", role)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM conversations WHERE id = ?`, conversationID).Scan(&exists); err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, conversationID)
	}

	var position int
	if err := tx.QueryRow(
		`SELECT COALESCE(MAX(position), -1) + 1 FROM turns WHERE conversation_id = ?`, conversationID,
	).Scan(&position); err != nil {
		return 0, err
	}

	if _, err := tx.Exec(
		`INSERT INTO turns (conversation_id, position, role, content) VALUES (?, ?, ?, ?)`,
		conversationID, position, role, content,
	); err != nil {
		return 0, fmt.Errorf("inserting turn: %w", err)
	}

	update := `UPDATE conversations SET updated_at = datetime('now') WHERE id = ?`
	args := []any{conversationID}
	if role == RoleAssistant {
		update = `UPDATE conversations SET updated_at = datetime('now'), last_response = ? WHERE id = ?`
		args = []any{content, conversationID}
	}
	if _, err := tx.Exec(update, args...); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return position, nil
}

// GetTurns returns a conversation's turns in order.
func (db *DB) GetTurns(conversationID string) ([]Turn, error) {
	rows, err := db.conn.Query(
		`SELECT id, conversation_id, position, role, content, created_at
		FROM turns WHERE conversation_id = ? ORDER BY position`, conversationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.ConversationID, &t.Position, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
