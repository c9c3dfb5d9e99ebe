package domain

import "context"

// GroupType distinguishes the three kinds of chat groups.
type GroupType int

const (
	// GroupTypeNamed is a persistent, user-created group chat.
	GroupTypeNamed GroupType = 1
	// GroupTypeDirect is the implicit two-person chat between friends.
	GroupTypeDirect GroupType = 2
	// GroupTypeTemporary is a link-shared chat that expires at a deadline.
	GroupTypeTemporary GroupType = 3
)

// Group is a chat room with a membership set.
type Group struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	ProfilePicture *string   `json:"profile_picture"`
	Type           GroupType `json:"-"`
}

// Member is a user as seen through a group's membership list.
type Member struct {
	ID             int64   `json:"friend_id"`
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profile_picture"`
}

// GroupStore defines group and membership persistence. IsMember doubles as
// the membership oracle consumed by the websocket upgrade gate.
type GroupStore interface {
	// Create inserts the group and its initial members in one transaction.
	Create(ctx context.Context, name string, typ GroupType, memberIDs []int64) (int64, error)
	// Delete removes the group; messages, memberships and temp chat info
	// cascade at the database level.
	Delete(ctx context.Context, groupID int64) error
	ForUser(ctx context.Context, userID int64) ([]Group, error)
	Members(ctx context.Context, groupID int64) ([]Member, error)
	AddMembers(ctx context.Context, groupID int64, userIDs []int64) error
	RemoveMember(ctx context.Context, groupID, userID int64) error
	UpdatePicture(ctx context.Context, groupID int64, pictureURL string) error
	IsMember(ctx context.Context, userID, groupID int64) (bool, error)
}
