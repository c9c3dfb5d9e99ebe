package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gchat-cloud/gchat-server/internal/domain"
)

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// UserStore encapsulates database operations for users.
type UserStore struct {
	db *pgxpool.Pool
}

// NewUserStore creates a new UserStore.
func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user row. A unique violation on username or email maps
// to domain.ErrUserAlreadyExists.
func (s *UserStore) Create(ctx context.Context, username, email, passwordHash string, profilePicture *string) (*domain.User, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, profile_picture)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, username, email, password_hash, profile_picture, created_at`,
		username, email, passwordHash, profilePicture)

	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.ProfilePicture, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

// FindByUsername queries for a single user by their username.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, username, email, password_hash, profile_picture, created_at
		 FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// FindByID queries for a single user by their id.
func (s *UserStore) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, username, email, password_hash, profile_picture, created_at
		 FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.ProfilePicture, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return &u, nil
}

// Stats computes the profile aggregates for one user. Users with no message
// history get zero values rather than an error.
func (s *UserStore) Stats(ctx context.Context, userID int64) (*domain.UserStats, error) {
	var stats domain.UserStats

	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE user_id = $1`, userID).
		Scan(&stats.MessagesSent)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	err = s.db.QueryRow(ctx,
		`SELECT g.name
		 FROM groups g
		 JOIN messages m ON g.id = m.group_id
		 WHERE m.user_id = $1 AND g.group_type = 1
		 GROUP BY g.name
		 ORDER BY COUNT(m.id) DESC
		 LIMIT 1`, userID).
		Scan(&stats.FavoriteGroup)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to find favorite group: %w", err)
	}

	err = s.db.QueryRow(ctx,
		`SELECT u.username
		 FROM group_members gm
		 JOIN users u ON gm.user_id = u.id
		 WHERE gm.group_id = (
		     SELECT g.id
		     FROM groups g
		     JOIN messages m ON g.id = m.group_id
		     WHERE g.group_type = 2 AND m.user_id = $1
		     GROUP BY g.id
		     ORDER BY COUNT(m.id) DESC
		     LIMIT 1
		 )
		 AND gm.user_id != $1`, userID).
		Scan(&stats.BestFriend)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to find best friend: %w", err)
	}

	err = s.db.QueryRow(ctx,
		`SELECT m.content
		 FROM messages m
		 JOIN groups g ON m.group_id = g.id
		 WHERE m.user_id = $1 AND g.group_type != 3
		 ORDER BY LENGTH(m.content) DESC
		 LIMIT 1`, userID).
		Scan(&stats.LongestMessage)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to find longest message: %w", err)
	}

	return &stats, nil
}
