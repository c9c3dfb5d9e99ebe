package hub

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TokenResolver turns an opaque bearer token into a user id.
type TokenResolver interface {
	Resolve(token string) (int64, error)
}

// MembershipOracle answers whether a user belongs to a group.
type MembershipOracle interface {
	IsMember(ctx context.Context, userID, groupID int64) (bool, error)
}

// Gate guards the websocket upgrade endpoint. It authenticates the bearer
// token, checks group membership, and only then upgrades the request and
// hands it off to a Session. The check happens once, at establishment: a
// user removed from a group mid-session keeps receiving broadcasts until
// their connection drops. That is a documented limitation of this design,
// not something the gate re-validates per message.
type Gate struct {
	tokens     TokenResolver
	members    MembershipOracle
	registry   *Registry
	dispatcher *Dispatcher
}

// NewGate creates a Gate over the given collaborators.
func NewGate(tokens TokenResolver, members MembershipOracle, registry *Registry, dispatcher *Dispatcher) *Gate {
	return &Gate{
		tokens:     tokens,
		members:    members,
		registry:   registry,
		dispatcher: dispatcher,
	}
}

// Handler serves GET /ws/group/:group_id?token=... and blocks for the whole
// lifetime of the accepted session.
func (g *Gate) Handler(c echo.Context) error {
	groupID, err := strconv.ParseInt(c.Param("group_id"), 10, 64)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid group id")
	}

	token := c.QueryParam("token")
	if token == "" {
		return c.String(http.StatusUnauthorized, "Missing authentication token")
	}

	userID, err := g.tokens.Resolve(token)
	if err != nil {
		return c.String(http.StatusUnauthorized, "Invalid token")
	}

	ok, err := g.members.IsMember(c.Request().Context(), userID, groupID)
	if err != nil {
		slog.Error("Membership check failed", "user_id", userID, "group_id", groupID, "error", err)
		return c.String(http.StatusInternalServerError, "Internal server error")
	}
	if !ok {
		return c.String(http.StatusUnauthorized, "Unauthorized")
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Origin checks are handled by the CORS layer.
	})
	if err != nil {
		slog.Error("Failed to upgrade connection to websocket", "error", err)
		return err
	}

	session := newSession(uuid.NewString(), userID, groupID, conn, g.registry, g.dispatcher)
	session.run()
	return nil
}
