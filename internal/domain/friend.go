package domain

import "context"

// Friend is another user as seen through a friendship.
type Friend struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profile_picture"`
}

// FriendRequest is a pending, directed invitation. Username is the display
// name of the "other" user: the receiver on outgoing requests, the sender on
// incoming ones.
type FriendRequest struct {
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
	Username   string `json:"username"`
}

// FriendStore defines friendship and friend-request persistence.
// Friendships are stored as two directed rows per pair.
type FriendStore interface {
	FriendsOf(ctx context.Context, userID int64) ([]Friend, error)
	IncomingRequests(ctx context.Context, userID int64) ([]FriendRequest, error)
	OutgoingRequests(ctx context.Context, userID int64) ([]FriendRequest, error)
	// CreateRequest returns ErrRequestExists when a request between the pair
	// is already pending.
	CreateRequest(ctx context.Context, senderID, receiverID int64) (*FriendRequest, error)
	// FindRequest returns ErrNotFound when no pending request matches.
	FindRequest(ctx context.Context, senderID, receiverID int64) (*FriendRequest, error)
	DeleteRequest(ctx context.Context, senderID, receiverID int64) error
	// CreateFriendship inserts both directed rows.
	CreateFriendship(ctx context.Context, userID, friendID int64) error
	// DeleteFriendship removes both directed rows.
	DeleteFriendship(ctx context.Context, userID, friendID int64) error
}
