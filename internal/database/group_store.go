package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gchat-cloud/gchat-server/internal/domain"
)

// GroupStore encapsulates database operations for groups and their members.
// Its IsMember method is the membership oracle the websocket upgrade gate
// consults before admitting a connection.
type GroupStore struct {
	db *pgxpool.Pool
}

// NewGroupStore creates a new GroupStore.
func NewGroupStore(db *pgxpool.Pool) *GroupStore {
	return &GroupStore{db: db}
}

// Create inserts the group and its initial members in a single transaction so
// a partial membership list never becomes visible.
func (s *GroupStore) Create(ctx context.Context, name string, typ domain.GroupType, memberIDs []int64) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var groupID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO groups (name, group_type) VALUES ($1, $2) RETURNING id`,
		name, int(typ)).Scan(&groupID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert group: %w", err)
	}

	for _, memberID := range memberIDs {
		_, err = tx.Exec(ctx,
			`INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			groupID, memberID)
		if err != nil {
			return 0, fmt.Errorf("failed to insert member %d: %w", memberID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit group creation: %w", err)
	}
	return groupID, nil
}

// Delete removes a group. Memberships, messages and temp chat info are
// removed by the ON DELETE CASCADE constraints.
func (s *GroupStore) Delete(ctx context.Context, groupID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM groups WHERE id = $1`, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group %d: %w", groupID, err)
	}
	return nil
}

// ForUser lists the groups the user is a member of.
func (s *GroupStore) ForUser(ctx context.Context, userID int64) ([]domain.Group, error) {
	rows, err := s.db.Query(ctx,
		`SELECT g.id, g.name, g.profile_picture, g.group_type
		 FROM groups g
		 JOIN group_members gm ON g.id = gm.group_id
		 WHERE gm.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.ProfilePicture, &g.Type); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Members lists the users in a group.
func (s *GroupStore) Members(ctx context.Context, groupID int64) ([]domain.Member, error) {
	rows, err := s.db.Query(ctx,
		`SELECT u.id, u.username, u.profile_picture
		 FROM users u
		 JOIN group_members gm ON u.id = gm.user_id
		 WHERE gm.group_id = $1`, groupID)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ID, &m.Username, &m.ProfilePicture); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// AddMembers inserts additional members; existing memberships are left alone.
func (s *GroupStore) AddMembers(ctx context.Context, groupID int64, userIDs []int64) error {
	for _, userID := range userIDs {
		_, err := s.db.Exec(ctx,
			`INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			groupID, userID)
		if err != nil {
			return fmt.Errorf("failed to add member %d: %w", userID, err)
		}
	}
	return nil
}

// RemoveMember removes one user from a group.
func (s *GroupStore) RemoveMember(ctx context.Context, groupID, userID int64) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`,
		groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// UpdatePicture replaces the group's picture URL.
func (s *GroupStore) UpdatePicture(ctx context.Context, groupID int64, pictureURL string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE groups SET profile_picture = $1 WHERE id = $2`,
		pictureURL, groupID)
	if err != nil {
		return fmt.Errorf("failed to update picture: %w", err)
	}
	return nil
}

// IsMember reports whether the user currently belongs to the group.
func (s *GroupStore) IsMember(ctx context.Context, userID, groupID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2
		 )`, groupID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("membership query failed: %w", err)
	}
	return exists, nil
}
