package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gchat-cloud/gchat-server/internal/auth"
	"github.com/gchat-cloud/gchat-server/internal/domain"
	"github.com/gchat-cloud/gchat-server/internal/handlers"
	"github.com/gchat-cloud/gchat-server/internal/middleware"
)

type fakeTempChatStore struct {
	byKey  map[string]*domain.TempChat
	owners map[string]int64
}

func newFakeTempChatStore() *fakeTempChatStore {
	return &fakeTempChatStore{
		byKey:  make(map[string]*domain.TempChat),
		owners: make(map[string]int64),
	}
}

func (f *fakeTempChatStore) Create(_ context.Context, chatKey string, groupID int64, endDate time.Time, passwordHash *string, ownerID int64) error {
	f.byKey[chatKey] = &domain.TempChat{
		ChatKey:      chatKey,
		GroupID:      groupID,
		EndDate:      endDate,
		PasswordHash: passwordHash,
	}
	f.owners[chatKey] = ownerID
	return nil
}

func (f *fakeTempChatStore) FindByKey(_ context.Context, chatKey string) (*domain.TempChat, error) {
	chat, ok := f.byKey[chatKey]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return chat, nil
}

func (f *fakeTempChatStore) ForUser(_ context.Context, userID int64) ([]domain.TempChat, error) {
	var out []domain.TempChat
	for key, owner := range f.owners {
		if owner == userID {
			out = append(out, *f.byKey[key])
		}
	}
	return out, nil
}

func newTempFixture() (*handlers.TempGroupHandler, *fakeTempChatStore, *fakeGroupStore, *fakeMessageStore) {
	temps := newFakeTempChatStore()
	groups := newFakeGroupStore()
	messages := &fakeMessageStore{byGroup: make(map[int64][]domain.Message)}
	tokens := &stubTokens{byToken: map[string]int64{"tok-1": 1}}
	return handlers.NewTempGroupHandler(temps, groups, messages, tokens), temps, groups, messages
}

func TestCreateTempChat(t *testing.T) {
	h, temps, groups, _ := newTempFixture()
	e := newEcho()

	end := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	c, rec := postJSON(t, e, "/temp-group/create",
		fmt.Sprintf(`{"token":"tok-1","group_name":"pub quiz","end_date":%q}`, end))
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.CreatedTempChatResponse
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.ChatKey)
	require.Contains(t, temps.byKey, resp.ChatKey)
	assert.Nil(t, temps.byKey[resp.ChatKey].PasswordHash)
	assert.Equal(t, domain.GroupTypeTemporary, groups.groups[resp.GroupID].Type)
	assert.Equal(t, []int64{1}, groups.members[resp.GroupID])
}

func TestCreateTempChatHashesPassword(t *testing.T) {
	h, temps, _, _ := newTempFixture()
	e := newEcho()

	end := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	c, rec := postJSON(t, e, "/temp-group/create",
		fmt.Sprintf(`{"token":"tok-1","group_name":"secret","end_date":%q,"password":"swordfish"}`, end))
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.CreatedTempChatResponse
	decode(t, rec, &resp)
	hash := temps.byKey[resp.ChatKey].PasswordHash
	require.NotNil(t, hash)
	assert.NotEqual(t, "swordfish", *hash)
	assert.True(t, auth.CheckPassword("swordfish", *hash))
}

func TestCreateTempChatRejectsBadEndDate(t *testing.T) {
	h, temps, _, _ := newTempFixture()
	e := newEcho()

	c, rec := postJSON(t, e, "/temp-group/create",
		`{"token":"tok-1","group_name":"bad","end_date":"next tuesday"}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	c, rec = postJSON(t, e, "/temp-group/create",
		fmt.Sprintf(`{"token":"tok-1","group_name":"bad","end_date":%q}`, past))
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, temps.byKey)
}

func TestExpiredChatIsDeletedLazily(t *testing.T) {
	h, temps, groups, _ := newTempFixture()
	e := newEcho()

	groupID, err := groups.Create(context.Background(), "old", domain.GroupTypeTemporary, []int64{1})
	require.NoError(t, err)
	require.NoError(t, temps.Create(context.Background(), "stale-key", groupID, time.Now().Add(-time.Minute), nil, 1))

	c, rec := getReq(t, e, "/temp-group/get-group-info?temp=stale-key")
	require.NoError(t, h.GetGroupInfo(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, groups.deleted, groupID)
}

func TestExpiredChatsAreFilteredFromListing(t *testing.T) {
	h, temps, groups, _ := newTempFixture()
	e := newEcho()

	liveID, err := groups.Create(context.Background(), "live", domain.GroupTypeTemporary, []int64{1})
	require.NoError(t, err)
	staleID, err := groups.Create(context.Background(), "stale", domain.GroupTypeTemporary, []int64{1})
	require.NoError(t, err)
	require.NoError(t, temps.Create(context.Background(), "live-key", liveID, time.Now().Add(time.Hour), nil, 1))
	require.NoError(t, temps.Create(context.Background(), "stale-key", staleID, time.Now().Add(-time.Hour), nil, 1))

	c, rec := getReq(t, e, "/temp-group/get")
	c.Set(middleware.UserIDContextKey, int64(1))
	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var chats []handlers.TempChatInfoResponse
	decode(t, rec, &chats)
	require.Len(t, chats, 1)
	assert.Equal(t, "live-key", chats[0].ChatKey)
	assert.Contains(t, groups.deleted, staleID)
}

func TestHasPassword(t *testing.T) {
	h, temps, groups, _ := newTempFixture()
	e := newEcho()

	groupID, err := groups.Create(context.Background(), "open", domain.GroupTypeTemporary, []int64{1})
	require.NoError(t, err)
	require.NoError(t, temps.Create(context.Background(), "open-key", groupID, time.Now().Add(time.Hour), nil, 1))

	c, rec := getReq(t, e, "/temp-group/has-password?temp=open-key")
	require.NoError(t, h.HasPassword(c))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]bool
	decode(t, rec, &resp)
	assert.False(t, resp["has_password"])

	c, rec = getReq(t, e, "/temp-group/has-password?temp=missing")
	require.NoError(t, h.HasPassword(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTempChatMessagesGatedByPassword(t *testing.T) {
	h, temps, groups, messages := newTempFixture()
	e := newEcho()

	groupID, err := groups.Create(context.Background(), "locked", domain.GroupTypeTemporary, []int64{1})
	require.NoError(t, err)
	hash, err := auth.HashPassword("open sesame")
	require.NoError(t, err)
	require.NoError(t, temps.Create(context.Background(), "locked-key", groupID, time.Now().Add(time.Hour), &hash, 1))
	messages.byGroup[groupID] = []domain.Message{
		{ID: 1, GroupID: groupID, UserID: 1, Username: "alice", Content: "psst", Timestamp: time.Now().UTC()},
	}

	c, rec := getReq(t, e, "/temp-group/get-messages?temp=locked-key&password=wrong")
	require.NoError(t, h.GetMessages(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = getReq(t, e, "/temp-group/get-messages?temp=locked-key&password=open+sesame")
	require.NoError(t, h.GetMessages(c))
	require.Equal(t, http.StatusOK, rec.Code)
	var history []domain.Message
	decode(t, rec, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "psst", history[0].Content)
}
