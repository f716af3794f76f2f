package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Message is a single submitted wall entry.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"ua,omitempty"`
	UID       string    `json:"uid"`
	CreatedAt time.Time `json:"timeISO"`
}

// MessageStore defines persistence operations for messages.
type MessageStore interface {
	Insert(ctx context.Context, message Message) error
	// ScanRecent returns up to limit most recent messages, newest first.
	ScanRecent(ctx context.Context, limit int) ([]Message, error)
}
