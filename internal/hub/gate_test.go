package hub

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gchat-cloud/gchat-server/internal/domain"
)

type fakeTokens map[string]int64

func (f fakeTokens) Resolve(token string) (int64, error) {
	id, ok := f[token]
	if !ok {
		return 0, domain.ErrInvalidCredentials
	}
	return id, nil
}

type fakeMembers map[int64][]int64

func (f fakeMembers) IsMember(_ context.Context, userID, groupID int64) (bool, error) {
	for _, id := range f[groupID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

// newTestServer wires a Gate with fakes behind a real echo server, mirroring
// the production route shape.
func newTestServer(t *testing.T, store MessageAppender, tokens fakeTokens, members fakeMembers) (*httptest.Server, *Registry) {
	t.Helper()

	registry := NewRegistry()
	gate := NewGate(tokens, members, registry, NewDispatcher(store, registry))

	e := echo.New()
	e.GET("/ws/group/:group_id", gate.Handler)

	ts := httptest.NewServer(e)
	t.Cleanup(ts.Close)
	return ts, registry
}

func dial(t *testing.T, ts *httptest.Server, groupID, token string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/group/" + groupID + "?token=" + token
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) domain.Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, websocket.MessageText, typ)

	var msg domain.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestSessionFanOut(t *testing.T) {
	tokens := fakeTokens{"token-a": 1, "token-b": 2}
	members := fakeMembers{7: {1, 2}}
	ts, registry := newTestServer(t, &fakeAppender{}, tokens, members)

	connA := dial(t, ts, "7", "token-a")
	defer connA.Close(websocket.StatusNormalClosure, "")
	connB := dial(t, ts, "7", "token-b")
	defer connB.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return registry.Snapshot(7) == 2 },
		time.Second, 10*time.Millisecond, "both sessions should register")

	ctx := context.Background()
	require.NoError(t, connA.Write(ctx, websocket.MessageText, []byte("hi")))

	gotA := readMessage(t, connA)
	gotB := readMessage(t, connB)

	assert.Equal(t, "hi", gotA.Content)
	assert.Equal(t, int64(7), gotA.GroupID)
	assert.Equal(t, int64(1), gotA.UserID)
	assert.Equal(t, gotA, gotB, "sender and peer reconcile on the same canonical record")
	assert.NotZero(t, gotA.ID)
	assert.False(t, gotA.Timestamp.IsZero())
}

func TestSessionDisconnectCleansUp(t *testing.T) {
	tokens := fakeTokens{"token-a": 1, "token-b": 2}
	members := fakeMembers{7: {1, 2}}
	ts, registry := newTestServer(t, &fakeAppender{}, tokens, members)

	connA := dial(t, ts, "7", "token-a")
	defer connA.Close(websocket.StatusNormalClosure, "")
	connB := dial(t, ts, "7", "token-b")

	require.Eventually(t, func() bool { return registry.Snapshot(7) == 2 },
		time.Second, 10*time.Millisecond)

	require.NoError(t, connB.Close(websocket.StatusNormalClosure, "done"))

	require.Eventually(t, func() bool { return registry.Snapshot(7) == 1 },
		time.Second, 10*time.Millisecond, "departed session should be deregistered")

	// Broadcasting to the remaining member must still work, with no error
	// and no crash from the departed connection.
	require.NoError(t, connA.Write(context.Background(), websocket.MessageText, []byte("bye")))
	got := readMessage(t, connA)
	assert.Equal(t, "bye", got.Content)
	assert.Equal(t, 1, registry.Snapshot(7))
}

func TestSessionPreservesSendOrder(t *testing.T) {
	tokens := fakeTokens{"token-a": 1, "token-b": 2}
	members := fakeMembers{7: {1, 2}}
	ts, registry := newTestServer(t, &fakeAppender{}, tokens, members)

	connA := dial(t, ts, "7", "token-a")
	defer connA.Close(websocket.StatusNormalClosure, "")
	connB := dial(t, ts, "7", "token-b")
	defer connB.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return registry.Snapshot(7) == 2 },
		time.Second, 10*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, connA.Write(ctx, websocket.MessageText, []byte("one")))
	require.NoError(t, connA.Write(ctx, websocket.MessageText, []byte("two")))

	first := readMessage(t, connB)
	second := readMessage(t, connB)
	assert.Equal(t, "one", first.Content)
	assert.Equal(t, "two", second.Content)
	assert.Less(t, first.ID, second.ID)
}

func TestUpgradeRejectedWithBadToken(t *testing.T) {
	tokens := fakeTokens{"token-a": 1}
	members := fakeMembers{7: {1}}
	ts, registry := newTestServer(t, &fakeAppender{}, tokens, members)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, url := range []string{
		"/ws/group/7?token=expired-token",
		"/ws/group/7", // missing token
	} {
		wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + url
		_, resp, err := websocket.Dial(ctx, wsURL, nil)
		require.Error(t, err, "upgrade should fail for %s", url)
		if resp != nil {
			assert.Equal(t, 401, resp.StatusCode)
		}
	}

	assert.Equal(t, 0, registry.Snapshot(7), "rejected upgrades must not touch the registry")
}

func TestUpgradeRejectedForNonMember(t *testing.T) {
	tokens := fakeTokens{"token-c": 3}
	members := fakeMembers{7: {1, 2}}
	ts, registry := newTestServer(t, &fakeAppender{}, tokens, members)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/group/7?token=token-c"
	_, resp, err := websocket.Dial(ctx, wsURL, nil)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, 401, resp.StatusCode)
	}
	assert.Equal(t, 0, registry.Snapshot(7))
}

func TestPersistFailureKeepsSessionUsable(t *testing.T) {
	store := &fakeAppender{}
	tokens := fakeTokens{"token-a": 1, "token-b": 2}
	members := fakeMembers{7: {1, 2}}
	ts, registry := newTestServer(t, store, tokens, members)

	connA := dial(t, ts, "7", "token-a")
	defer connA.Close(websocket.StatusNormalClosure, "")
	connB := dial(t, ts, "7", "token-b")
	defer connB.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return registry.Snapshot(7) == 2 },
		time.Second, 10*time.Millisecond)

	// First send fails at the store: nobody hears it.
	store.mu.Lock()
	store.fail = true
	store.mu.Unlock()
	require.NoError(t, connA.Write(context.Background(), websocket.MessageText, []byte("lost")))

	// Wait for the server to attempt (and fail) the append before restoring
	// the store, so "lost" cannot slip through after the flag clears.
	require.Eventually(t, func() bool { return store.appendAttempts() == 1 },
		time.Second, 10*time.Millisecond, "failed append should have been attempted")

	// The session must remain open and usable afterwards.
	store.mu.Lock()
	store.fail = false
	store.mu.Unlock()
	require.NoError(t, connA.Write(context.Background(), websocket.MessageText, []byte("kept")))

	got := readMessage(t, connB)
	assert.Equal(t, "kept", got.Content, "the failed message is dropped, the next one flows")
	gotA := readMessage(t, connA)
	assert.Equal(t, "kept", gotA.Content)
}

func TestNonTextFramesAreIgnored(t *testing.T) {
	tokens := fakeTokens{"token-a": 1, "token-b": 2}
	members := fakeMembers{7: {1, 2}}
	ts, registry := newTestServer(t, &fakeAppender{}, tokens, members)

	connA := dial(t, ts, "7", "token-a")
	defer connA.Close(websocket.StatusNormalClosure, "")
	connB := dial(t, ts, "7", "token-b")
	defer connB.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return registry.Snapshot(7) == 2 },
		time.Second, 10*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, connA.Write(ctx, websocket.MessageBinary, []byte{0x01, 0x02}))
	require.NoError(t, connA.Write(ctx, websocket.MessageText, []byte("after binary")))

	got := readMessage(t, connB)
	assert.Equal(t, "after binary", got.Content, "binary frames produce no dispatch")
}
