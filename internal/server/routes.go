package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gchat-cloud/gchat-server/internal/middleware"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	authed := middleware.Auth(s.tokens)
	rateLimiter := middleware.RateLimiter(5)

	s.E.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	user := s.E.Group("/user")
	user.POST("/register", s.authHandler.Register, rateLimiter)
	user.POST("/login", s.authHandler.Login, rateLimiter)
	user.GET("/check-token", s.authHandler.CheckToken)
	user.GET("/get-user-info", s.authHandler.GetUserInfo, authed)
	user.GET("/get-user-stats", s.authHandler.GetUserStats, authed)

	group := s.E.Group("/group")
	group.POST("/create", s.groupHandler.Create)
	group.GET("/get", s.groupHandler.Get, authed)
	group.GET("/get-users", s.groupHandler.GetUsers, authed)
	group.GET("/get-messages", s.groupHandler.GetMessages, authed)
	group.POST("/add-users", s.groupHandler.AddUsers)
	group.POST("/remove-user", s.groupHandler.RemoveUser)
	group.PUT("/edit-picture", s.groupHandler.EditPicture)

	friend := s.E.Group("/friend")
	friend.GET("/get", s.friendHandler.Get, authed)
	friend.GET("/get-requests", s.friendHandler.GetRequests, authed)
	friend.POST("/send-request", s.friendHandler.SendRequest)
	friend.POST("/accept-request", s.friendHandler.AcceptRequest)
	friend.POST("/cancel-request", s.friendHandler.CancelRequest)
	friend.POST("/deny-request", s.friendHandler.DenyRequest)
	friend.POST("/delete", s.friendHandler.Delete)

	temp := s.E.Group("/temp-group")
	temp.POST("/create", s.tempGroupHandler.Create)
	temp.GET("/get", s.tempGroupHandler.Get, authed)
	temp.GET("/get-group-info", s.tempGroupHandler.GetGroupInfo)
	temp.GET("/has-password", s.tempGroupHandler.HasPassword)
	temp.GET("/get-messages", s.tempGroupHandler.GetMessages)

	// Live connections. Authentication and membership are checked by the
	// gate before the upgrade.
	s.E.GET("/ws/group/:group_id", s.gate.Handler)
}
