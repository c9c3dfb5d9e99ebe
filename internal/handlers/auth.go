package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gchat-cloud/gchat-server/internal/auth"
	"github.com/gchat-cloud/gchat-server/internal/domain"
	"github.com/gchat-cloud/gchat-server/internal/middleware"
)

// AuthHandler handles registration, login and account queries.
type AuthHandler struct {
	users  domain.UserStore
	tokens *auth.Tokens
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users domain.UserStore, tokens *auth.Tokens) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// Register creates an account and returns a fresh token (POST /user/register).
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Invalid request"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error()))
	}
	if req.Password != req.ConfirmPassword {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Passwords do not match"))
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Internal server error"))
	}

	user, err := h.users.Create(c.Request().Context(), req.Username, req.Email, hash, req.ProfilePicture)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("Username or email already taken"))
		}
		slog.Error("Failed to create user", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Internal server error"))
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		slog.Error("Failed to sign token", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Internal server error"))
	}
	return c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// Login verifies credentials and returns a token (POST /user/login).
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("Invalid request"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error()))
	}

	user, err := h.users.FindByUsername(c.Request().Context(), req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Deliberately indistinguishable from a wrong password.
			return c.JSON(http.StatusUnauthorized, NewErrorResponse("Invalid username or password"))
		}
		slog.Error("Failed to look up user", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Internal server error"))
	}
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("Invalid username or password"))
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		slog.Error("Failed to sign token", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Internal server error"))
	}
	return c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// CheckToken reports whether the presented token is still valid
// (GET /user/check-token?token=...). It always answers 200 so clients can
// poll it without tripping error interceptors.
func (h *AuthHandler) CheckToken(c echo.Context) error {
	_, err := h.tokens.Resolve(c.QueryParam("token"))
	return c.JSON(http.StatusOK, echo.Map{"valid": err == nil})
}

// GetUserInfo returns the caller's own profile (GET /user/get-user-info).
func (h *AuthHandler) GetUserInfo(c echo.Context) error {
	user, err := h.users.FindByID(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("User not found"))
		}
		slog.Error("Failed to fetch user", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Internal server error"))
	}
	return c.JSON(http.StatusOK, NewUserInfoResponse(user))
}

// GetUserStats returns the caller's aggregate figures (GET /user/get-user-stats).
func (h *AuthHandler) GetUserStats(c echo.Context) error {
	stats, err := h.users.Stats(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		slog.Error("Failed to compute user stats", "error", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Internal server error"))
	}
	return c.JSON(http.StatusOK, stats)
}
