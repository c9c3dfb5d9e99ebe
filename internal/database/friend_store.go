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

// FriendStore encapsulates database operations for friendships and friend
// requests. A friendship is stored as two directed rows, one per direction.
type FriendStore struct {
	db *pgxpool.Pool
}

// NewFriendStore creates a new FriendStore.
func NewFriendStore(db *pgxpool.Pool) *FriendStore {
	return &FriendStore{db: db}
}

// FriendsOf lists the user's friends with their display metadata.
func (s *FriendStore) FriendsOf(ctx context.Context, userID int64) ([]domain.Friend, error) {
	rows, err := s.db.Query(ctx,
		`SELECT f.friend_id AS id, u.username, u.profile_picture
		 FROM friendships f
		 JOIN users u ON f.friend_id = u.id
		 WHERE f.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	defer rows.Close()
	return scanFriends(rows)
}

// IncomingRequests lists pending requests sent to the user; Username is the
// sender's name.
func (s *FriendStore) IncomingRequests(ctx context.Context, userID int64) ([]domain.FriendRequest, error) {
	rows, err := s.db.Query(ctx,
		`SELECT fr.sender_id, fr.receiver_id, u.username
		 FROM friend_requests fr
		 JOIN users u ON fr.sender_id = u.id
		 WHERE fr.receiver_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

// OutgoingRequests lists pending requests the user has sent; Username is the
// receiver's name.
func (s *FriendStore) OutgoingRequests(ctx context.Context, userID int64) ([]domain.FriendRequest, error) {
	rows, err := s.db.Query(ctx,
		`SELECT fr.sender_id, fr.receiver_id, u.username
		 FROM friend_requests fr
		 JOIN users u ON fr.receiver_id = u.id
		 WHERE fr.sender_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

// CreateRequest inserts a pending request and returns it with the receiver's
// username joined in. A duplicate pair maps to domain.ErrRequestExists.
func (s *FriendStore) CreateRequest(ctx context.Context, senderID, receiverID int64) (*domain.FriendRequest, error) {
	row := s.db.QueryRow(ctx,
		`WITH inserted AS (
		     INSERT INTO friend_requests (sender_id, receiver_id)
		     VALUES ($1, $2)
		     RETURNING sender_id, receiver_id
		 )
		 SELECT i.sender_id, i.receiver_id, u.username
		 FROM inserted i
		 JOIN users u ON i.receiver_id = u.id`,
		senderID, receiverID)

	var req domain.FriendRequest
	err := row.Scan(&req.SenderID, &req.ReceiverID, &req.Username)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrRequestExists
		}
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}
	return &req, nil
}

// FindRequest returns the pending request for the exact sender/receiver pair.
func (s *FriendStore) FindRequest(ctx context.Context, senderID, receiverID int64) (*domain.FriendRequest, error) {
	row := s.db.QueryRow(ctx,
		`SELECT sender_id, receiver_id
		 FROM friend_requests
		 WHERE sender_id = $1 AND receiver_id = $2`,
		senderID, receiverID)

	var req domain.FriendRequest
	err := row.Scan(&req.SenderID, &req.ReceiverID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return &req, nil
}

// DeleteRequest removes a pending request. Absent rows are not an error.
func (s *FriendStore) DeleteRequest(ctx context.Context, senderID, receiverID int64) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM friend_requests WHERE sender_id = $1 AND receiver_id = $2`,
		senderID, receiverID)
	if err != nil {
		return fmt.Errorf("failed to delete friend request: %w", err)
	}
	return nil
}

// CreateFriendship inserts both directed rows in one transaction. An
// existing pair maps to domain.ErrAlreadyFriends.
func (s *FriendStore) CreateFriendship(ctx context.Context, userID, friendID int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, pair := range [][2]int64{{userID, friendID}, {friendID, userID}} {
		_, err = tx.Exec(ctx,
			`INSERT INTO friendships (user_id, friend_id) VALUES ($1, $2)`,
			pair[0], pair[1])
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return domain.ErrAlreadyFriends
			}
			return fmt.Errorf("failed to insert friendship: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// DeleteFriendship removes both directed rows.
func (s *FriendStore) DeleteFriendship(ctx context.Context, userID, friendID int64) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM friendships
		 WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)`,
		userID, friendID)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	return nil
}

func scanFriends(rows pgx.Rows) ([]domain.Friend, error) {
	var friends []domain.Friend
	for rows.Next() {
		var f domain.Friend
		if err := rows.Scan(&f.ID, &f.Username, &f.ProfilePicture); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

func scanRequests(rows pgx.Rows) ([]domain.FriendRequest, error) {
	var requests []domain.FriendRequest
	for rows.Next() {
		var r domain.FriendRequest
		if err := rows.Scan(&r.SenderID, &r.ReceiverID, &r.Username); err != nil {
			return nil, fmt.Errorf("failed to scan friend request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}
