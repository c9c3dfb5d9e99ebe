package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gchat-cloud/gchat-server/internal/domain"
)

// TempChatStore encapsulates database operations for temporary chat metadata.
// The backing group row lives in groups; deleting it cascades these records.
type TempChatStore struct {
	db *pgxpool.Pool
}

// NewTempChatStore creates a new TempChatStore.
func NewTempChatStore(db *pgxpool.Pool) *TempChatStore {
	return &TempChatStore{db: db}
}

// Create stores the metadata for an already-created temporary group.
func (s *TempChatStore) Create(ctx context.Context, chatKey string, groupID int64, endDate time.Time, passwordHash *string, ownerID int64) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO temp_groups_info (temp_chat_key, group_id, end_date, password, user_id)
		 VALUES ($1, $2, $3, $4, $5)`,
		chatKey, groupID, endDate, passwordHash, ownerID)
	if err != nil {
		return fmt.Errorf("failed to create temp chat: %w", err)
	}
	return nil
}

// FindByKey looks a temporary chat up by its shared key.
func (s *TempChatStore) FindByKey(ctx context.Context, chatKey string) (*domain.TempChat, error) {
	row := s.db.QueryRow(ctx,
		`SELECT tgi.temp_chat_key, tgi.group_id, g.name, tgi.end_date, tgi.password
		 FROM temp_groups_info tgi
		 JOIN groups g ON tgi.group_id = g.id
		 WHERE tgi.temp_chat_key = $1`, chatKey)

	var tc domain.TempChat
	err := row.Scan(&tc.ChatKey, &tc.GroupID, &tc.Name, &tc.EndDate, &tc.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return &tc, nil
}

// ForUser lists the temporary chats the user has created.
func (s *TempChatStore) ForUser(ctx context.Context, userID int64) ([]domain.TempChat, error) {
	rows, err := s.db.Query(ctx,
		`SELECT tgi.temp_chat_key, tgi.group_id, g.name, tgi.end_date, tgi.password
		 FROM temp_groups_info tgi
		 JOIN groups g ON tgi.group_id = g.id
		 WHERE tgi.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	defer rows.Close()

	var chats []domain.TempChat
	for rows.Next() {
		var tc domain.TempChat
		if err := rows.Scan(&tc.ChatKey, &tc.GroupID, &tc.Name, &tc.EndDate, &tc.PasswordHash); err != nil {
			return nil, fmt.Errorf("failed to scan temp chat: %w", err)
		}
		chats = append(chats, tc)
	}
	return chats, rows.Err()
}
