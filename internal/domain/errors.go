package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUserAlreadyExists  = errors.New("username or email already taken")
	ErrInvalidCredentials = errors.New("invalid credentials provided")
	ErrNotMember          = errors.New("user is not a member of this group")
	ErrAlreadyFriends     = errors.New("users are already friends")
	ErrRequestExists      = errors.New("friend request already exists")
	ErrChatExpired        = errors.New("temporary chat has expired")
	ErrWrongPassword      = errors.New("wrong chat password")
)
