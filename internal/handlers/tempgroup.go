package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gchat-cloud/gchat-server/internal/auth"
	"github.com/gchat-cloud/gchat-server/internal/domain"
	"github.com/gchat-cloud/gchat-server/internal/middleware"
)

// TempGroupHandler handles temporary, link-shared chats. Readers are
// authorized by chat key (plus password when one is set), not by membership,
// so most of its GET endpoints sit outside the auth middleware.
type TempGroupHandler struct {
	temps    domain.TempChatStore
	groups   domain.GroupStore
	messages domain.MessageStore
	tokens   middleware.TokenResolver
}

// NewTempGroupHandler creates a new TempGroupHandler.
func NewTempGroupHandler(temps domain.TempChatStore, groups domain.GroupStore, messages domain.MessageStore, tokens middleware.TokenResolver) *TempGroupHandler {
	return &TempGroupHandler{temps: temps, groups: groups, messages: messages, tokens: tokens}
}

// Create starts a temporary chat with a random share key
// (POST /temp-group/create).
func (h *TempGroupHandler) Create(c echo.Context) error {
	var req CreateTempGroupRequest
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

	endDate, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Invalid end date format"))
	}
	if !endDate.After(time.Now()) {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("End date must be in the future"))
	}

	var passwordHash *string
	if req.Password != nil && *req.Password != "" {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			slog.Error("Failed to hash temp chat password", "error", err)
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("Internal server error"))
		}
		passwordHash = &hash
	}

	ctx := c.Request().Context()
	groupID, err := h.groups.Create(ctx, req.GroupName, domain.GroupTypeTemporary, []int64{userID})
	if err != nil {
		slog.Error("Failed to create temp group", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to create chat"))
	}

	chatKey := uuid.NewString()
	if err := h.temps.Create(ctx, chatKey, groupID, endDate, passwordHash, userID); err != nil {
		slog.Error("Failed to store temp chat info", "error", err, "group_id", groupID)
		// Roll back the orphaned group so the key space stays consistent.
		if derr := h.groups.Delete(ctx, groupID); derr != nil {
			slog.Error("Failed to clean up orphaned group", "error", derr, "group_id", groupID)
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to create chat"))
	}

	return c.JSON(http.StatusOK, CreatedTempChatResponse{
		Message: "Group created",
		ChatKey: chatKey,
		GroupID: groupID,
	})
}

// Get lists the caller's temporary chats, dropping any that expired
// (GET /temp-group/get).
func (h *TempGroupHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	chats, err := h.temps.ForUser(ctx, middleware.UserID(c))
	if err != nil {
		slog.Error("Failed to fetch temp chats", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to fetch temp chats"))
	}

	live := make([]TempChatInfoResponse, 0, len(chats))
	for i := range chats {
		if err := h.expireIfDue(ctx, &chats[i]); err != nil {
			continue
		}
		live = append(live, NewTempChatInfoResponse(&chats[i]))
	}
	return c.JSON(http.StatusOK, live)
}

// HasPassword reports whether a chat key requires a password
// (GET /temp-group/has-password?temp=...).
func (h *TempGroupHandler) HasPassword(c echo.Context) error {
	chat, err := h.lookup(c)
	if err != nil {
		return nil
	}
	return c.JSON(http.StatusOK, echo.Map{"has_password": chat.PasswordHash != nil})
}

// GetGroupInfo returns a chat's metadata once the password, if any, checks
// out (GET /temp-group/get-group-info?temp=...&password=...).
func (h *TempGroupHandler) GetGroupInfo(c echo.Context) error {
	chat, err := h.lookup(c)
	if err != nil {
		return nil
	}
	if errors.Is(h.checkPassword(c, chat), domain.ErrWrongPassword) {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("Unauthorized"))
	}
	return c.JSON(http.StatusOK, NewTempChatInfoResponse(chat))
}

// GetMessages returns a temporary chat's history
// (GET /temp-group/get-messages?temp=...&password=...).
func (h *TempGroupHandler) GetMessages(c echo.Context) error {
	chat, err := h.lookup(c)
	if err != nil {
		return nil
	}
	if errors.Is(h.checkPassword(c, chat), domain.ErrWrongPassword) {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("Unauthorized"))
	}
	messages, err := h.messages.ListForGroup(c.Request().Context(), chat.GroupID)
	if err != nil {
		slog.Error("Failed to fetch temp chat messages", "error", err, "group_id", chat.GroupID)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to fetch messages"))
	}
	return c.JSON(http.StatusOK, messages)
}

// lookup resolves the temp query parameter to a live chat. On failure it
// writes the response and returns a non-nil error.
func (h *TempGroupHandler) lookup(c echo.Context) (*domain.TempChat, error) {
	key := c.QueryParam("temp")
	if key == "" {
		_ = c.JSON(http.StatusUnauthorized, NewErrorResponse("Missing chat key"))
		return nil, domain.ErrNotFound
	}
	chat, err := h.temps.FindByKey(c.Request().Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = c.JSON(http.StatusNotFound, NewErrorResponse("Unknown chat key"))
			return nil, err
		}
		slog.Error("Failed to fetch temp chat", "error", err)
		_ = c.JSON(http.StatusInternalServerError, NewErrorResponse("Internal server error"))
		return nil, err
	}
	if err := h.expireIfDue(c.Request().Context(), chat); err != nil {
		_ = c.JSON(http.StatusNotFound, NewErrorResponse("Chat has expired"))
		return nil, err
	}
	return chat, nil
}

// expireIfDue lazily deletes a chat whose deadline has passed. Deleting the
// backing group cascades the messages, memberships and chat metadata.
func (h *TempGroupHandler) expireIfDue(ctx context.Context, chat *domain.TempChat) error {
	if time.Now().Before(chat.EndDate) {
		return nil
	}
	if err := h.groups.Delete(ctx, chat.GroupID); err != nil {
		slog.Error("Failed to delete expired temp chat", "error", err, "group_id", chat.GroupID)
	}
	return domain.ErrChatExpired
}

// checkPassword compares the password query parameter against the chat's
// hash, if one was set.
func (h *TempGroupHandler) checkPassword(c echo.Context, chat *domain.TempChat) error {
	if chat.PasswordHash == nil {
		return nil
	}
	if !auth.CheckPassword(c.QueryParam("password"), *chat.PasswordHash) {
		return domain.ErrWrongPassword
	}
	return nil
}
