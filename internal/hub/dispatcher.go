package hub

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gchat-cloud/gchat-server/internal/domain"
)

// MessageAppender is the slice of the message store the dispatcher needs.
type MessageAppender interface {
	Append(ctx context.Context, userID, groupID int64, content string) (*domain.Message, error)
}

// Dispatcher takes inbound text frames, persists them, and fans the stored
// record out to every live connection in the group.
type Dispatcher struct {
	store    MessageAppender
	registry *Registry
}

// NewDispatcher creates a Dispatcher over the given store and registry.
func NewDispatcher(store MessageAppender, registry *Registry) *Dispatcher {
	return &Dispatcher{store: store, registry: registry}
}

// HandleInbound persists one message and broadcasts the canonical stored
// record. If the append fails the frame is dropped: nothing is broadcast and
// the sender gets no in-band error. The sender receives its own broadcast
// like everyone else, so every client reconciles on the server-assigned id
// and timestamp instead of a local optimistic copy.
func (d *Dispatcher) HandleInbound(ctx context.Context, userID, groupID int64, body string) {
	msg, err := d.store.Append(ctx, userID, groupID, body)
	if err != nil {
		slog.Error("Failed to store message, dropping frame",
			"user_id", userID, "group_id", groupID, "error", err)
		return
	}

	frame, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to encode message frame",
			"message_id", msg.ID, "error", err)
		return
	}

	d.registry.Broadcast(groupID, frame)
}
