package handlers

import (
	"time"

	"github.com/gchat-cloud/gchat-server/internal/domain"
)

// ErrorResponse is the uniform error envelope returned by every handler.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TokenResponse carries a freshly minted JWT back to the client.
type TokenResponse struct {
	Token string `json:"token"`
}

// NewErrorResponse creates an ErrorResponse with the given message.
func NewErrorResponse(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

// UserInfoResponse is the public projection of a user record.
type UserInfoResponse struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	ProfilePicture *string `json:"profile_picture"`
}

// NewUserInfoResponse projects a domain.User onto the wire shape.
func NewUserInfoResponse(u *domain.User) UserInfoResponse {
	return UserInfoResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
	}
}

// CreatedGroupResponse confirms a new group and hands back its id.
type CreatedGroupResponse struct {
	Message string `json:"message"`
	GroupID int64  `json:"group_id"`
}

// FriendRequestsResponse splits pending requests by direction.
type FriendRequestsResponse struct {
	Incoming []domain.FriendRequest `json:"incoming"`
	Outgoing []domain.FriendRequest `json:"outgoing"`
}

// CreatedTempChatResponse confirms a new temporary chat. Clients share the
// chat key, not the group id.
type CreatedTempChatResponse struct {
	Message string `json:"message"`
	ChatKey string `json:"chat_key"`
	GroupID int64  `json:"group_id"`
}

// TempChatInfoResponse is the public projection of a temporary chat.
type TempChatInfoResponse struct {
	ChatKey string    `json:"temp_chat_key"`
	GroupID int64     `json:"group_id"`
	Name    string    `json:"name"`
	EndDate time.Time `json:"end_date"`
}

// NewTempChatInfoResponse projects a domain.TempChat onto the wire shape.
func NewTempChatInfoResponse(t *domain.TempChat) TempChatInfoResponse {
	return TempChatInfoResponse{
		ChatKey: t.ChatKey,
		GroupID: t.GroupID,
		Name:    t.Name,
		EndDate: t.EndDate,
	}
}
