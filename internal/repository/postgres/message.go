package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/wallboard/wallboard-server/internal/model"
)

var _ model.MessageStore = (*MessageRepository)(nil)

type MessageRepository struct {
	db *Connection
}

func NewMessageRepository(db *Connection) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Insert(ctx context.Context, message model.Message) error {
	const query = `
        INSERT INTO messages (id, text, ip, user_agent, uid, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `

	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx, query,
		message.ID, message.Text, message.IP, message.UserAgent, message.UID, message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// ScanRecent returns at most limit messages, newest first.
func (r *MessageRepository) ScanRecent(ctx context.Context, limit int) ([]model.Message, error) {
	const query = `
        SELECT id, text, ip, user_agent, uid, created_at
        FROM messages ORDER BY created_at DESC LIMIT $1
    `

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.Text, &m.IP, &m.UserAgent, &m.UID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	return messages, nil
}
