package domain

import (
	"context"
	"time"
)

// Message is the store-canonical record of a chat message: the persisted row
// joined with the sender's display metadata. It is immutable once created and
// authoritative over any client-local copy. The JSON field set below is the
// wire format every websocket recipient receives.
type Message struct {
	ID             int64     `json:"id"`
	GroupID        int64     `json:"group_id"`
	UserID         int64     `json:"user_id"`
	Username       string    `json:"username"`
	ProfilePicture *string   `json:"profile_picture"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}

// MessageStore appends and retrieves chat messages.
type MessageStore interface {
	// Append durably stores one message and returns the canonical record
	// with the store-assigned id and UTC timestamp.
	Append(ctx context.Context, userID, groupID int64, content string) (*Message, error)
	// ListForGroup returns a group's history, oldest first.
	ListForGroup(ctx context.Context, groupID int64) ([]Message, error)
}
