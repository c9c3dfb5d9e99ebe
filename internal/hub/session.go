package hub

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// sendBufferSize is the outbound queue capacity per connection. A client that
// stays this far behind a group's traffic starts losing frames rather than
// growing server memory without bound.
const sendBufferSize = 256

// writeTimeout bounds each individual socket write.
const writeTimeout = 10 * time.Second

// Session is the live, authorized binding of one websocket connection to one
// user and one group. It runs two loops: a read loop feeding inbound text
// frames to the dispatcher, and a write loop draining the outbound channel
// into the socket. Whichever loop stops first triggers draining: the session
// is deregistered, the outbound channel is closed, and the socket is closed
// to unblock the other loop. The session is finished once both loops have
// returned.
type Session struct {
	id      string
	userID  int64
	groupID int64

	conn       *websocket.Conn
	send       chan []byte
	registry   *Registry
	dispatcher *Dispatcher

	drainOnce sync.Once
}

func newSession(id string, userID, groupID int64, conn *websocket.Conn, registry *Registry, dispatcher *Dispatcher) *Session {
	return &Session{
		id:         id,
		userID:     userID,
		groupID:    groupID,
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		registry:   registry,
		dispatcher: dispatcher,
	}
}

// run registers the session and blocks until both loops have terminated.
func (s *Session) run() {
	s.registry.Register(s.groupID, s.id, s.send)
	slog.Info("Session registered",
		"connection_id", s.id, "user_id", s.userID, "group_id", s.groupID)

	done := make(chan struct{})
	go func() {
		s.writeLoop()
		close(done)
	}()

	s.readLoop()
	<-done

	slog.Info("Session closed", "connection_id", s.id, "group_id", s.groupID)
}

// drain removes the session from the registry before anything else, so no
// further broadcast can target it, then shuts both loops down. Safe to call
// from either loop; only the first call acts.
func (s *Session) drain(status websocket.StatusCode, reason string) {
	s.drainOnce.Do(func() {
		s.registry.Deregister(s.groupID, s.id)
		// No broadcaster can hold the send channel once the registry entry
		// is gone (registration and broadcast share one lock), so closing
		// it here cannot race a send.
		close(s.send)
		s.conn.Close(status, reason)
	})
}

// readLoop reads inbound frames until the socket errors or the client sends
// a close frame. Text frames are handed to the dispatcher one at a time, so
// one sender's messages persist and broadcast in the order they were sent.
// Frames of any other type are read and discarded.
func (s *Session) readLoop() {
	defer s.drain(websocket.StatusNormalClosure, "session closing")

	for {
		typ, data, err := s.conn.Read(context.Background())
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, io.EOF) {
				slog.Debug("Websocket closed by client", "connection_id", s.id)
			} else {
				slog.Debug("Websocket read error", "connection_id", s.id, "error", err)
			}
			return
		}

		if typ != websocket.MessageText {
			continue
		}

		s.dispatcher.HandleInbound(context.Background(), s.userID, s.groupID, string(data))
	}
}

// writeLoop drains the outbound channel into the socket in order, stopping
// when the channel is closed by drain or when a write fails.
func (s *Session) writeLoop() {
	defer s.drain(websocket.StatusNormalClosure, "session closing")

	for frame := range s.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := s.conn.Write(ctx, websocket.MessageText, frame)
		cancel()
		if err != nil {
			slog.Debug("Websocket write error", "connection_id", s.id, "error", err)
			return
		}
	}
}
