package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gchat-cloud/gchat-server/internal/domain"
	"github.com/gchat-cloud/gchat-server/internal/middleware"
)

// FriendHandler handles the friendship and friend-request endpoints.
type FriendHandler struct {
	friends domain.FriendStore
	users   domain.UserStore
	tokens  middleware.TokenResolver
}

// NewFriendHandler creates a new FriendHandler.
func NewFriendHandler(friends domain.FriendStore, users domain.UserStore, tokens middleware.TokenResolver) *FriendHandler {
	return &FriendHandler{friends: friends, users: users, tokens: tokens}
}

// Get lists the caller's friends (GET /friend/get).
func (h *FriendHandler) Get(c echo.Context) error {
	friends, err := h.friends.FriendsOf(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		slog.Error("Failed to fetch friends", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to fetch friends"))
	}
	return c.JSON(http.StatusOK, friends)
}

// GetRequests lists pending requests in both directions (GET /friend/get-requests).
func (h *FriendHandler) GetRequests(c echo.Context) error {
	userID := middleware.UserID(c)
	ctx := c.Request().Context()

	incoming, err := h.friends.IncomingRequests(ctx, userID)
	if err != nil {
		slog.Error("Failed to fetch friend requests", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to fetch friend requests"))
	}
	outgoing, err := h.friends.OutgoingRequests(ctx, userID)
	if err != nil {
		slog.Error("Failed to fetch friend requests", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to fetch friend requests"))
	}
	return c.JSON(http.StatusOK, FriendRequestsResponse{Incoming: incoming, Outgoing: outgoing})
}

// SendRequest creates a pending request addressed by username
// (POST /friend/send-request).
func (h *FriendHandler) SendRequest(c echo.Context) error {
	var req SendFriendRequestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Invalid request"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error()))
	}
	userID, err := h.tokens.Resolve(req.Token)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("Invalid token"))
	}

	receiver, err := h.users.FindByUsername(c.Request().Context(), req.ReceiverUsername)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("User not found"))
		}
		slog.Error("Failed to look up receiver", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Internal server error"))
	}
	if receiver.ID == userID {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Cannot befriend yourself"))
	}

	created, err := h.friends.CreateRequest(c.Request().Context(), userID, receiver.ID)
	if err != nil {
		if errors.Is(err, domain.ErrRequestExists) {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("Request already pending"))
		}
		slog.Error("Failed to create friend request", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to send friend request"))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":        "Friend request sent",
		"friend_request": created,
	})
}

// AcceptRequest turns a pending incoming request into a friendship
// (POST /friend/accept-request). The request body names the sender.
func (h *FriendHandler) AcceptRequest(c echo.Context) error {
	req, userID, ok := h.bindAction(c)
	if !ok {
		return nil
	}
	ctx := c.Request().Context()

	if _, err := h.friends.FindRequest(ctx, req.UserID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("No such friend request"))
		}
		slog.Error("Failed to look up friend request", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Internal server error"))
	}
	if err := h.friends.CreateFriendship(ctx, userID, req.UserID); err != nil {
		if errors.Is(err, domain.ErrAlreadyFriends) {
			// Consume the stale request either way.
			if derr := h.friends.DeleteRequest(ctx, req.UserID, userID); derr != nil {
				slog.Error("Failed to delete friend request", "error", derr)
			}
			return c.JSON(http.StatusBadRequest, NewErrorResponse("Already friends"))
		}
		slog.Error("Failed to create friendship", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to accept friend request"))
	}
	if err := h.friends.DeleteRequest(ctx, req.UserID, userID); err != nil {
		slog.Error("Failed to delete friend request", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to accept friend request"))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Friend request accepted"})
}

// CancelRequest withdraws a request the caller sent (POST /friend/cancel-request).
func (h *FriendHandler) CancelRequest(c echo.Context) error {
	req, userID, ok := h.bindAction(c)
	if !ok {
		return nil
	}
	if err := h.friends.DeleteRequest(c.Request().Context(), userID, req.UserID); err != nil {
		slog.Error("Failed to cancel friend request", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to cancel friend request"))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Friend request cancelled"})
}

// DenyRequest discards a request addressed to the caller (POST /friend/deny-request).
func (h *FriendHandler) DenyRequest(c echo.Context) error {
	req, userID, ok := h.bindAction(c)
	if !ok {
		return nil
	}
	if err := h.friends.DeleteRequest(c.Request().Context(), req.UserID, userID); err != nil {
		slog.Error("Failed to deny friend request", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to deny friend request"))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Friend request denied"})
}

// Delete ends a friendship (POST /friend/delete).
func (h *FriendHandler) Delete(c echo.Context) error {
	req, userID, ok := h.bindAction(c)
	if !ok {
		return nil
	}
	if err := h.friends.DeleteFriendship(c.Request().Context(), userID, req.UserID); err != nil {
		slog.Error("Failed to delete friendship", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to delete friend"))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Friend removed"})
}

// bindAction binds and authenticates the shared accept/cancel/deny/delete
// request shape. When it returns false it has already written the response.
func (h *FriendHandler) bindAction(c echo.Context) (*FriendActionRequest, int64, bool) {
	var req FriendActionRequest
	if err := c.Bind(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, NewErrorResponse("Invalid request"))
		return nil, 0, false
	}
	if err := c.Validate(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error()))
		return nil, 0, false
	}
	userID, err := h.tokens.Resolve(req.Token)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, NewErrorResponse("Invalid token"))
		return nil, 0, false
	}
	return &req, userID, true
}
