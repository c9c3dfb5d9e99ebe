package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/gchat-cloud/gchat-server/internal/domain"
	"github.com/gchat-cloud/gchat-server/internal/handlers"
)

// stubTokens resolves a fixed set of tokens to user ids.
type stubTokens struct {
	byToken map[string]int64
}

func (s *stubTokens) Resolve(token string) (int64, error) {
	id, ok := s.byToken[token]
	if !ok {
		return 0, domain.ErrInvalidCredentials
	}
	return id, nil
}

// postJSON builds an echo context around a JSON POST body.
func postJSON(t *testing.T, e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// getReq builds an echo context around a GET request.
func getReq(t *testing.T, e *echo.Echo, path string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = handlers.NewValidator()
	return e
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into))
}

// fakeGroupStore keeps groups and memberships in memory.
type fakeGroupStore struct {
	nextID   int64
	groups   map[int64]domain.Group
	members  map[int64][]int64
	pictures map[int64]string
	deleted  []int64
}

func newFakeGroupStore() *fakeGroupStore {
	return &fakeGroupStore{
		nextID:   1,
		groups:   make(map[int64]domain.Group),
		members:  make(map[int64][]int64),
		pictures: make(map[int64]string),
	}
}

func (f *fakeGroupStore) Create(_ context.Context, name string, typ domain.GroupType, memberIDs []int64) (int64, error) {
	id := f.nextID
	f.nextID++
	f.groups[id] = domain.Group{ID: id, Name: name, Type: typ}
	f.members[id] = append([]int64(nil), memberIDs...)
	return id, nil
}

func (f *fakeGroupStore) Delete(_ context.Context, groupID int64) error {
	delete(f.groups, groupID)
	delete(f.members, groupID)
	f.deleted = append(f.deleted, groupID)
	return nil
}

func (f *fakeGroupStore) ForUser(_ context.Context, userID int64) ([]domain.Group, error) {
	var out []domain.Group
	for id, members := range f.members {
		for _, m := range members {
			if m == userID {
				out = append(out, f.groups[id])
			}
		}
	}
	return out, nil
}

func (f *fakeGroupStore) Members(_ context.Context, groupID int64) ([]domain.Member, error) {
	var out []domain.Member
	for _, id := range f.members[groupID] {
		out = append(out, domain.Member{ID: id})
	}
	return out, nil
}

func (f *fakeGroupStore) AddMembers(_ context.Context, groupID int64, userIDs []int64) error {
	f.members[groupID] = append(f.members[groupID], userIDs...)
	return nil
}

func (f *fakeGroupStore) RemoveMember(_ context.Context, groupID, userID int64) error {
	kept := f.members[groupID][:0]
	for _, m := range f.members[groupID] {
		if m != userID {
			kept = append(kept, m)
		}
	}
	f.members[groupID] = kept
	return nil
}

func (f *fakeGroupStore) UpdatePicture(_ context.Context, groupID int64, pictureURL string) error {
	f.pictures[groupID] = pictureURL
	return nil
}

func (f *fakeGroupStore) IsMember(_ context.Context, userID, groupID int64) (bool, error) {
	for _, m := range f.members[groupID] {
		if m == userID {
			return true, nil
		}
	}
	return false, nil
}

// fakeMessageStore serves a canned history.
type fakeMessageStore struct {
	byGroup map[int64][]domain.Message
}

func (f *fakeMessageStore) Append(_ context.Context, userID, groupID int64, content string) (*domain.Message, error) {
	msg := domain.Message{
		ID:        int64(len(f.byGroup[groupID]) + 1),
		GroupID:   groupID,
		UserID:    userID,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	f.byGroup[groupID] = append(f.byGroup[groupID], msg)
	return &msg, nil
}

func (f *fakeMessageStore) ListForGroup(_ context.Context, groupID int64) ([]domain.Message, error) {
	return f.byGroup[groupID], nil
}
