package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gchat-cloud/gchat-server/internal/domain"
	"github.com/gchat-cloud/gchat-server/internal/middleware"
)

// GroupHandler handles group management and history retrieval.
type GroupHandler struct {
	groups   domain.GroupStore
	messages domain.MessageStore
	tokens   middleware.TokenResolver
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groups domain.GroupStore, messages domain.MessageStore, tokens middleware.TokenResolver) *GroupHandler {
	return &GroupHandler{groups: groups, messages: messages, tokens: tokens}
}

// Create starts a new named group with the caller and the listed members
// (POST /group/create).
func (h *GroupHandler) Create(c echo.Context) error {
	var req CreateGroupRequest
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

	members := req.MemberIDs
	if !slices.Contains(members, userID) {
		members = append(members, userID)
	}
	groupID, err := h.groups.Create(c.Request().Context(), req.GroupName, domain.GroupTypeNamed, members)
	if err != nil {
		slog.Error("Failed to create group", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to create group"))
	}
	return c.JSON(http.StatusOK, CreatedGroupResponse{Message: "Group created", GroupID: groupID})
}

// Get lists the caller's groups (GET /group/get).
func (h *GroupHandler) Get(c echo.Context) error {
	groups, err := h.groups.ForUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		slog.Error("Failed to fetch groups", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to fetch groups"))
	}
	return c.JSON(http.StatusOK, groups)
}

// GetUsers lists a group's members (GET /group/get-users?group_id=...).
// The caller must be one of them.
func (h *GroupHandler) GetUsers(c echo.Context) error {
	groupID, err := strconv.ParseInt(c.QueryParam("group_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Invalid group id"))
	}
	if err := h.requireMember(c, middleware.UserID(c), groupID); err != nil {
		if errors.Is(err, domain.ErrNotMember) {
			return c.JSON(http.StatusUnauthorized, NewErrorResponse("Unauthorized"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Internal server error"))
	}
	members, err := h.groups.Members(c.Request().Context(), groupID)
	if err != nil {
		slog.Error("Failed to fetch members", "error", err, "group_id", groupID)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to fetch members"))
	}
	return c.JSON(http.StatusOK, members)
}

// GetMessages returns a group's history, oldest first
// (GET /group/get-messages?group_id=...).
func (h *GroupHandler) GetMessages(c echo.Context) error {
	groupID, err := strconv.ParseInt(c.QueryParam("group_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Invalid group id"))
	}
	if err := h.requireMember(c, middleware.UserID(c), groupID); err != nil {
		if errors.Is(err, domain.ErrNotMember) {
			return c.JSON(http.StatusUnauthorized, NewErrorResponse("Unauthorized"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Internal server error"))
	}
	messages, err := h.messages.ListForGroup(c.Request().Context(), groupID)
	if err != nil {
		slog.Error("Failed to fetch messages", "error", err, "group_id", groupID)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to fetch messages"))
	}
	return c.JSON(http.StatusOK, messages)
}

// AddUsers adds members to a group the caller belongs to (POST /group/add-users).
func (h *GroupHandler) AddUsers(c echo.Context) error {
	var req AddUsersRequest
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
	if err := h.requireMember(c, userID, req.GroupID); err != nil {
		if errors.Is(err, domain.ErrNotMember) {
			return c.JSON(http.StatusUnauthorized, NewErrorResponse("Unauthorized"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Internal server error"))
	}
	if err := h.groups.AddMembers(c.Request().Context(), req.GroupID, req.NewUsers); err != nil {
		slog.Error("Failed to add members", "error", err, "group_id", req.GroupID)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to add members"))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Users added"})
}

// RemoveUser removes one member from a group the caller belongs to
// (POST /group/remove-user).
func (h *GroupHandler) RemoveUser(c echo.Context) error {
	var req RemoveUserRequest
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
	if err := h.requireMember(c, userID, req.GroupID); err != nil {
		if errors.Is(err, domain.ErrNotMember) {
			return c.JSON(http.StatusUnauthorized, NewErrorResponse("Unauthorized"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Internal server error"))
	}
	if err := h.groups.RemoveMember(c.Request().Context(), req.GroupID, req.UserID); err != nil {
		slog.Error("Failed to remove member", "error", err, "group_id", req.GroupID)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to remove member"))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User removed"})
}

// EditPicture changes a group's picture (POST /group/edit-picture).
func (h *GroupHandler) EditPicture(c echo.Context) error {
	var req EditPictureRequest
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
	if err := h.requireMember(c, userID, req.GroupID); err != nil {
		if errors.Is(err, domain.ErrNotMember) {
			return c.JSON(http.StatusUnauthorized, NewErrorResponse("Unauthorized"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Internal server error"))
	}
	if err := h.groups.UpdatePicture(c.Request().Context(), req.GroupID, req.Picture); err != nil {
		slog.Error("Failed to update picture", "error", err, "group_id", req.GroupID)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Failed to update picture"))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Picture updated"})
}

// requireMember wraps the store check, treating an unknown group the same as
// not belonging to it. Both map to domain.ErrNotMember.
func (h *GroupHandler) requireMember(c echo.Context, userID, groupID int64) error {
	ok, err := h.groups.IsMember(c.Request().Context(), userID, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotMember
		}
		slog.Error("Failed membership check", "error", err, "group_id", groupID)
		return err
	}
	if !ok {
		return domain.ErrNotMember
	}
	return nil
}
