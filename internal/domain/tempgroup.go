package domain

import (
	"context"
	"time"
)

// TempChat is the extra bookkeeping attached to a temporary group: the random
// key it is shared under, its expiry deadline, and an optional bcrypt-hashed
// password. PasswordHash is never serialized.
type TempChat struct {
	ChatKey      string    `json:"temp_chat_key"`
	GroupID      int64     `json:"group_id"`
	Name         string    `json:"name"`
	EndDate      time.Time `json:"end_date"`
	PasswordHash *string   `json:"-"`
}

// TempChatStore persists temporary chat metadata. The backing group row is
// managed through the GroupStore; deleting the group cascades this record.
type TempChatStore interface {
	// Create stores the metadata for an already-created temporary group.
	Create(ctx context.Context, chatKey string, groupID int64, endDate time.Time, passwordHash *string, ownerID int64) error
	// FindByKey returns ErrNotFound when the key is unknown.
	FindByKey(ctx context.Context, chatKey string) (*TempChat, error)
	ForUser(ctx context.Context, userID int64) ([]TempChat, error)
}
