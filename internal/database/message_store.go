package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gchat-cloud/gchat-server/internal/domain"
)

// MessageStore encapsulates database operations for chat messages.
type MessageStore struct {
	db *pgxpool.Pool
}

// NewMessageStore creates a new MessageStore.
func NewMessageStore(db *pgxpool.Pool) *MessageStore {
	return &MessageStore{db: db}
}

// Append durably stores one message and returns the store-canonical record:
// the inserted row joined with the sender's username and profile picture. The
// id and timestamp are assigned by the database.
func (s *MessageStore) Append(ctx context.Context, userID, groupID int64, content string) (*domain.Message, error) {
	row := s.db.QueryRow(ctx,
		`WITH inserted AS (
		     INSERT INTO messages (user_id, group_id, content)
		     VALUES ($1, $2, $3)
		     RETURNING id, group_id, user_id, content, timestamp
		 )
		 SELECT i.id, i.group_id, i.user_id, u.username, u.profile_picture, i.content, i.timestamp
		 FROM inserted i
		 JOIN users u ON i.user_id = u.id`,
		userID, groupID, content)

	var m domain.Message
	err := row.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Username, &m.ProfilePicture, &m.Content, &m.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	m.Timestamp = m.Timestamp.UTC()
	return &m, nil
}

// ListForGroup returns the group's message history, oldest first, with sender
// metadata joined in.
func (s *MessageStore) ListForGroup(ctx context.Context, groupID int64) ([]domain.Message, error) {
	rows, err := s.db.Query(ctx,
		`SELECT m.id, m.group_id, m.user_id, u.username, u.profile_picture, m.content, m.timestamp
		 FROM messages m
		 JOIN users u ON m.user_id = u.id
		 WHERE m.group_id = $1
		 ORDER BY m.id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Username, &m.ProfilePicture, &m.Content, &m.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Timestamp = m.Timestamp.UTC()
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
