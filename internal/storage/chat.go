package storage

import (
	"context"
	"fmt"
	"time"
)

// ChatMessage is one turn of the AI advisor conversation.
type ChatMessage struct {
	ID        int64
	UserID    int64
	Role      string // "user" or "assistant"
	Content   string
	CreatedAt time.Time
}

func (r *SQLiteRepository) SaveChatMessage(ctx context.Context, m ChatMessage) (ChatMessage, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ai_chat_messages (user_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		m.UserID, m.Role, m.Content, now)
	if err != nil {
		return ChatMessage{}, fmt.Errorf("save chat message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ChatMessage{}, fmt.Errorf("chat message id: %w", err)
	}
	m.ID = id
	m.CreatedAt = now
	return m, nil
}

// ListChatMessages returns the most recent messages, oldest first, so
// they can be replayed as conversation history.
func (r *SQLiteRepository) ListChatMessages(ctx context.Context, userID int64, limit int) ([]ChatMessage, error) {
	query := `SELECT id, user_id, role, content, created_at
		 FROM ai_chat_messages WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	var messages []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
