package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/fibrelink/backend/internal/models"
)

const messageColumns = `id, conversation_id, sender, text, payload, created_at`

func scanMessage(row pgx.Row) (models.Message, error) {
	var (
		m       models.Message
		payload []byte
	)
	err := row.Scan(&m.ID, &m.ConversationID, &m.Sender, &m.Text, &payload, &m.CreatedAt)
	if err != nil {
		return models.Message{}, err
	}
	if len(payload) > 0 {
		m.Payload = json.RawMessage(payload)
	}
	return m, nil
}

// LatestConversation returns the user's most recently active conversation.
func (s *Store) LatestConversation(ctx context.Context, userID string) (models.Conversation, bool, error) {
	var (
		c    models.Conversation
		meta []byte
	)
	err := s.Pool.QueryRow(ctx, `
		SELECT id, user_id, started_at, last_message_at, meta FROM conversations
		WHERE user_id = $1
		ORDER BY last_message_at DESC
		LIMIT 1
	`, userID).Scan(&c.ID, &c.UserID, &c.StartedAt, &c.LastMessageAt, &meta)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Conversation{}, false, nil
		}
		return models.Conversation{}, false, err
	}
	c.Meta = json.RawMessage(meta)
	return c, true, nil
}

func (s *Store) InsertConversation(ctx context.Context, c models.Conversation) error {
	meta := c.Meta
	if len(meta) == 0 {
		meta = json.RawMessage(`{}`)
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO conversations (id, user_id, started_at, last_message_at, meta)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.UserID, c.StartedAt, c.LastMessageAt, []byte(meta))
	return err
}

// InsertMessage appends a message and advances the conversation's
// last_message_at. These are two single-row statements, not a transaction:
// per-document atomicity only, matching the rest of the store.
func (s *Store) InsertMessage(ctx context.Context, m models.Message) error {
	var payload any
	if len(m.Payload) > 0 {
		payload = []byte(m.Payload)
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, sender, text, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, m.ConversationID, m.Sender, m.Text, payload, m.CreatedAt)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		UPDATE conversations SET last_message_at = $1 WHERE id = $2
	`, m.CreatedAt, m.ConversationID)
	return err
}

// ListMessagesBefore fetches up to limit messages with id strictly less than
// cursor (all messages when cursor is empty), newest first.
func (s *Store) ListMessagesBefore(ctx context.Context, conversationID, cursor string, limit int) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages`
	args := []any{conversationID}
	wheres := []string{"conversation_id = $1"}
	if cursor != "" {
		args = append(args, cursor)
		wheres = append(wheres, fmt.Sprintf("id < $%d", len(args)))
	}
	args = append(args, limit)
	query += " WHERE " + strings.Join(wheres, " AND ") + fmt.Sprintf(" ORDER BY id DESC LIMIT $%d", len(args))

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
