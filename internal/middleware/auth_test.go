package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/gchat-cloud/gchat-server/internal/domain"
)

type stubTokens map[string]int64

func (s stubTokens) Resolve(token string) (int64, error) {
	id, ok := s[token]
	if !ok {
		return 0, domain.ErrInvalidCredentials
	}
	return id, nil
}

func setupAuthTest() *echo.Echo {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.String(http.StatusOK, strconv.FormatInt(UserID(c), 10))
	}, Auth(stubTokens{"good-token": 42}))
	return e
}

func TestAuthAcceptsQueryToken(t *testing.T) {
	e := setupAuthTest()

	req := httptest.NewRequest(http.MethodGet, "/protected?token=good-token", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Body.String(), "handler should see the resolved user id")
}

func TestAuthAcceptsBearerHeader(t *testing.T) {
	e := setupAuthTest()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	e := setupAuthTest()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing token")
}

func TestAuthRejectsUnknownToken(t *testing.T) {
	e := setupAuthTest()

	req := httptest.NewRequest(http.MethodGet, "/protected?token=bad-token", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token")
}
