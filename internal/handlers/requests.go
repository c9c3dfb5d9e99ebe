package handlers

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// RegisterRequest defines the DTO for POST /user/register.
type RegisterRequest struct {
	Username        string  `form:"username" json:"username" validate:"required,min=3,max=32"`
	Email           string  `form:"email" json:"email" validate:"required,email"`
	Password        string  `form:"password" json:"password" validate:"required,min=8"`
	ConfirmPassword string  `form:"confirm_password" json:"confirm_password" validate:"required"`
	ProfilePicture  *string `form:"profile_picture" json:"profile_picture" validate:"omitempty,url"`
}

// LoginRequest defines the DTO for POST /user/login.
type LoginRequest struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

// CreateGroupRequest defines the DTO for POST /group/create. Mutating group
// endpoints carry the token in the body, so their handlers resolve it directly.
type CreateGroupRequest struct {
	Token     string  `form:"token" json:"token" validate:"required"`
	GroupName string  `form:"group_name" json:"group_name" validate:"required,max=64"`
	MemberIDs []int64 `form:"member_ids" json:"member_ids"`
}

// AddUsersRequest defines the DTO for POST /group/add-users.
type AddUsersRequest struct {
	Token    string  `form:"token" json:"token" validate:"required"`
	GroupID  int64   `form:"group_id" json:"group_id" validate:"required"`
	NewUsers []int64 `form:"new_users" json:"new_users" validate:"required,min=1"`
}

// RemoveUserRequest defines the DTO for POST /group/remove-user.
type RemoveUserRequest struct {
	Token   string `form:"token" json:"token" validate:"required"`
	GroupID int64  `form:"group_id" json:"group_id" validate:"required"`
	UserID  int64  `form:"user_id" json:"user_id" validate:"required"`
}

// EditPictureRequest defines the DTO for POST /group/edit-picture.
type EditPictureRequest struct {
	Token   string `form:"token" json:"token" validate:"required"`
	GroupID int64  `form:"group_id" json:"group_id" validate:"required"`
	Picture string `form:"picture" json:"picture" validate:"required,url"`
}

// SendFriendRequestRequest defines the DTO for POST /friend/send-request.
type SendFriendRequestRequest struct {
	Token            string `form:"token" json:"token" validate:"required"`
	ReceiverUsername string `form:"receiver_username" json:"receiver_username" validate:"required"`
}

// FriendActionRequest covers the accept/cancel/deny/delete friend endpoints,
// which all identify the counterpart by user id.
type FriendActionRequest struct {
	Token  string `form:"token" json:"token" validate:"required"`
	UserID int64  `form:"user_id" json:"user_id" validate:"required"`
}

// CreateTempGroupRequest defines the DTO for POST /temp-group/create.
type CreateTempGroupRequest struct {
	Token     string  `form:"token" json:"token" validate:"required"`
	GroupName string  `form:"group_name" json:"group_name" validate:"required,max=64"`
	EndDate   string  `form:"end_date" json:"end_date" validate:"required"`
	Password  *string `form:"password" json:"password"`
}
