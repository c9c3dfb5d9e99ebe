package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// UserIDContextKey is the echo context key under which Auth stores the
// authenticated user's id.
const UserIDContextKey = "user_id"

// TokenResolver turns a bearer token into a user id.
type TokenResolver interface {
	Resolve(token string) (int64, error)
}

// Auth creates a middleware that protects routes requiring authentication.
// The token is taken from the "token" query parameter, or from an
// "Authorization: Bearer" header as a fallback.
func Auth(tokens TokenResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.QueryParam("token")
			if token == "" {
				header := c.Request().Header.Get(echo.HeaderAuthorization)
				token = strings.TrimPrefix(header, "Bearer ")
			}
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing token"})
			}

			userID, err := tokens.Resolve(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
			}

			c.Set(UserIDContextKey, userID)
			return next(c)
		}
	}
}

// UserID retrieves the authenticated user id stored by Auth.
func UserID(c echo.Context) int64 {
	id, _ := c.Get(UserIDContextKey).(int64)
	return id
}
