package server

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/gchat-cloud/gchat-server/internal/auth"
	"github.com/gchat-cloud/gchat-server/internal/config"
	"github.com/gchat-cloud/gchat-server/internal/database"
	"github.com/gchat-cloud/gchat-server/internal/handlers"
	"github.com/gchat-cloud/gchat-server/internal/hub"
	"github.com/gchat-cloud/gchat-server/internal/logging"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E   *echo.Echo
	DB  *pgxpool.Pool
	Cfg *config.Config

	tokens   *auth.Tokens
	registry *hub.Registry
	gate     *hub.Gate

	authHandler      *handlers.AuthHandler
	groupHandler     *handlers.GroupHandler
	friendHandler    *handlers.FriendHandler
	tempGroupHandler *handlers.TempGroupHandler
}

// New creates a new Server instance with all dependencies wired up.
func New() *Server {
	logging.New()
	cfg := config.New()

	db, err := database.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokens(cfg.JWTKey)

	userStore := database.NewUserStore(db)
	groupStore := database.NewGroupStore(db)
	messageStore := database.NewMessageStore(db)
	friendStore := database.NewFriendStore(db)
	tempChatStore := database.NewTempChatStore(db)

	registry := hub.NewRegistry()
	dispatcher := hub.NewDispatcher(messageStore, registry)
	gate := hub.NewGate(tokens, groupStore, registry, dispatcher)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	if len(cfg.AllowedOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: cfg.AllowedOrigins,
		}))
	} else {
		e.Use(echomw.CORS())
	}

	return &Server{
		E:                e,
		DB:               db,
		Cfg:              cfg,
		tokens:           tokens,
		registry:         registry,
		gate:             gate,
		authHandler:      handlers.NewAuthHandler(userStore, tokens),
		groupHandler:     handlers.NewGroupHandler(groupStore, messageStore, tokens),
		friendHandler:    handlers.NewFriendHandler(friendStore, userStore, tokens),
		tempGroupHandler: handlers.NewTempGroupHandler(tempChatStore, groupStore, messageStore, tokens),
	}
}
