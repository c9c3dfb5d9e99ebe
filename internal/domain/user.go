package domain

import (
	"context"
	"time"
)

// User represents the core user model in the application domain.
// PasswordHash never leaves the server; it is excluded from JSON output.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ProfilePicture *string   `json:"profile_picture"`
	PasswordHash   string    `json:"-"`
	CreatedAt      time.Time `json:"-"`
}

// UserStats is a set of vanity aggregates shown on the user's profile.
type UserStats struct {
	MessagesSent   int64  `json:"messages_sent"`
	FavoriteGroup  string `json:"favorite_group"`
	BestFriend     string `json:"best_friend"`
	LongestMessage string `json:"longest_message"`
}

// UserStore defines the contract for user data storage operations.
// It lives in the domain because it's a requirement OF the domain, not
// of the database implementation.
type UserStore interface {
	// Create inserts a new user. Returns ErrUserAlreadyExists when the
	// username or email is taken.
	Create(ctx context.Context, username, email, passwordHash string, profilePicture *string) (*User, error)
	// FindByUsername returns ErrNotFound when no such user exists.
	FindByUsername(ctx context.Context, username string) (*User, error)
	// FindByID returns ErrNotFound when no such user exists.
	FindByID(ctx context.Context, id int64) (*User, error)
	// Stats computes the aggregate figures for one user.
	Stats(ctx context.Context, userID int64) (*UserStats, error)
}
