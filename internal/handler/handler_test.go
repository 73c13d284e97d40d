package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/chatter-dev/chatter/internal/config"
	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
	"github.com/chatter-dev/chatter/internal/jwt"
	"github.com/chatter-dev/chatter/internal/middleware"
	"github.com/chatter-dev/chatter/internal/service"
	"github.com/chatter-dev/chatter/internal/timeline"
)

func testConfig() *config.Config {
	return &config.Config{Public: config.Public{
		JwtTTL:           time.Hour,
		PageSize:         20,
		GroupingTimezone: "UTC",
	}}
}

// asUser injects the authenticated user the way the auth middleware would.
func asUser(r *http.Request, id domain.UserId) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserClaimsKey, &domain.User{Id: id, Name: "tester"})
	return r.WithContext(ctx)
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(raw)
}

// mockMessageStorage is the storage slice behind the message service.
type mockMessageStorage struct {
	createFunc       func(ctx context.Context, data domain.MessageCreationData) (domain.Message, error)
	messageFunc      func(ctx context.Context, id domain.MsgId) (domain.Message, error)
	updateFunc       func(ctx context.Context, id domain.MsgId, body string) error
	deleteFunc       func(ctx context.Context, id domain.MsgId) error
	pageFunc         func(ctx context.Context, scope timeline.Scope, before *timeline.Position, limit int) ([]domain.Message, bool, error)
	channelFunc      func(id domain.ChannelId) (domain.Channel, error)
	conversationFunc func(id domain.ConversationId) (domain.Conversation, error)
	memberFunc       func(ctx context.Context, workspaceId domain.WorkspaceId, userId domain.UserId) (domain.Member, error)
}

func (m *mockMessageStorage) CreateMessage(ctx context.Context, data domain.MessageCreationData) (domain.Message, error) {
	return m.createFunc(ctx, data)
}
func (m *mockMessageStorage) Message(ctx context.Context, id domain.MsgId) (domain.Message, error) {
	return m.messageFunc(ctx, id)
}
func (m *mockMessageStorage) UpdateMessageBody(ctx context.Context, id domain.MsgId, body string) error {
	return m.updateFunc(ctx, id, body)
}
func (m *mockMessageStorage) DeleteMessage(ctx context.Context, id domain.MsgId) error {
	return m.deleteFunc(ctx, id)
}
func (m *mockMessageStorage) MessagePage(ctx context.Context, scope timeline.Scope, before *timeline.Position, limit int) ([]domain.Message, bool, error) {
	return m.pageFunc(ctx, scope, before, limit)
}
func (m *mockMessageStorage) Channel(id domain.ChannelId) (domain.Channel, error) {
	return m.channelFunc(id)
}
func (m *mockMessageStorage) Conversation(id domain.ConversationId) (domain.Conversation, error) {
	return m.conversationFunc(id)
}
func (m *mockMessageStorage) MemberByWorkspaceAndUser(ctx context.Context, workspaceId domain.WorkspaceId, userId domain.UserId) (domain.Member, error) {
	return m.memberFunc(ctx, workspaceId, userId)
}

func memberOf(workspaceId domain.WorkspaceId, userId domain.UserId) func(context.Context, domain.WorkspaceId, domain.UserId) (domain.Member, error) {
	return func(_ context.Context, wid domain.WorkspaceId, uid domain.UserId) (domain.Member, error) {
		if wid != workspaceId || uid != userId {
			return domain.Member{}, internal_errors.NotFound
		}
		return domain.Member{Id: 2, WorkspaceId: wid, UserId: uid, Role: domain.RoleMember}, nil
	}
}

func idp(v int64) *int64 { return &v }

func msgAt(id domain.MsgId, memberId domain.MemberId, at time.Time) domain.Message {
	return domain.Message{
		MessageMetadata: domain.MessageMetadata{
			Id: id, WorkspaceId: 11, ChannelId: idp(21), MemberId: memberId, CreatedAt: at,
		},
		Body: "hello",
	}
}

func newMessageHandler(storage *mockMessageStorage) (*Handler, *timeline.Hub) {
	hub := timeline.NewHub()
	msgService := service.NewMessage(storage, hub, 20)
	return New(nil, nil, nil, nil, msgService, nil, nil, nil, testConfig()), hub
}

func messagesRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/v1/workspaces/{workspace}/messages", h.GetMessages).Methods(http.MethodGet)
	r.HandleFunc("/v1/workspaces/{workspace}/messages", h.CreateMessage).Methods(http.MethodPost)
	return r
}

func TestGetMessagesNonMemberGetsEmptyPage(t *testing.T) {
	storage := &mockMessageStorage{
		memberFunc: memberOf(11, 7),
		pageFunc: func(_ context.Context, _ timeline.Scope, _ *timeline.Position, _ int) ([]domain.Message, bool, error) {
			t.Fatal("store must not be queried for non-members")
			return nil, false, nil
		},
	}
	h, hub := newMessageHandler(storage)
	defer hub.Close()

	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodGet, "/v1/workspaces/11/messages?channelId=21", nil), 99)
	messagesRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got pageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Empty(t, got.Messages)
	assert.Equal(t, domain.Exhausted, got.Status)
	assert.Empty(t, got.Cursor)
}

func TestGetMessagesGrouped(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	// Store order is newest-first
	msgs := []domain.Message{
		msgAt(103, 5, day2),
		msgAt(102, 5, day1.Add(2*time.Minute)),
		msgAt(101, 5, day1),
	}
	storage := &mockMessageStorage{
		memberFunc: memberOf(11, 7),
		channelFunc: func(id domain.ChannelId) (domain.Channel, error) {
			return domain.Channel{Id: id, WorkspaceId: 11}, nil
		},
		pageFunc: func(_ context.Context, _ timeline.Scope, _ *timeline.Position, _ int) ([]domain.Message, bool, error) {
			return msgs, false, nil
		},
	}
	h, hub := newMessageHandler(storage)
	defer hub.Close()

	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodGet, "/v1/workspaces/11/messages?channelId=21&grouped=true", nil), 7)
	messagesRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got pageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	require.Len(t, got.Days, 2)
	assert.Equal(t, "2024-03-01", got.Days[0].Date)
	assert.Equal(t, "2024-03-02", got.Days[1].Date)

	first := got.Days[0].Messages
	require.Len(t, first, 2)
	assert.False(t, first[0].Compact, "first message of a day always shows a header")
	assert.True(t, first[1].Compact, "same author two minutes later is a continuation")
}

func TestCreateMessage(t *testing.T) {
	storage := &mockMessageStorage{
		memberFunc: memberOf(11, 7),
		channelFunc: func(id domain.ChannelId) (domain.Channel, error) {
			return domain.Channel{Id: id, WorkspaceId: 11}, nil
		},
		createFunc: func(_ context.Context, data domain.MessageCreationData) (domain.Message, error) {
			return msgAt(100, data.MemberId, time.Now()), nil
		},
	}
	h, hub := newMessageHandler(storage)
	defer hub.Close()

	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodPost, "/v1/workspaces/11/messages",
		jsonBody(t, map[string]interface{}{"channelId": 21, "body": "hello"})), 7)
	messagesRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

type mockAuthStorage struct {
	saveFunc    func(user domain.User) (domain.UserId, error)
	byEmailFunc func(email domain.Email) (domain.User, error)
	userFunc    func(id domain.UserId) (domain.User, error)
}

func (m *mockAuthStorage) SaveUser(user domain.User) (domain.UserId, error) { return m.saveFunc(user) }
func (m *mockAuthStorage) UserByEmail(email domain.Email) (domain.User, error) {
	return m.byEmailFunc(email)
}
func (m *mockAuthStorage) User(id domain.UserId) (domain.User, error) { return m.userFunc(id) }

func TestRegisterSetsCookie(t *testing.T) {
	storage := &mockAuthStorage{
		saveFunc: func(user domain.User) (domain.UserId, error) { return 7, nil },
	}
	authService := service.NewAuth(storage, jwt.New("secret", time.Hour))
	h := New(authService, nil, nil, nil, nil, nil, nil, nil, testConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register",
		jsonBody(t, map[string]string{"name": "Alice", "email": "a@b.co", "password": "long enough"}))
	h.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "accessToken", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	// Bearer-auth clients read the token from the body instead
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, cookies[0].Value, body["token"])
}

func TestLoginReturnsToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("long enough"), bcrypt.DefaultCost)
	require.NoError(t, err)
	storage := &mockAuthStorage{
		byEmailFunc: func(email domain.Email) (domain.User, error) {
			return domain.User{Id: 7, Name: "Alice", Email: email, PassHash: string(hash)}, nil
		},
	}
	authService := service.NewAuth(storage, jwt.New("secret", time.Hour))
	h := New(authService, nil, nil, nil, nil, nil, nil, nil, testConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
		jsonBody(t, map[string]string{"email": "a@b.co", "password": "long enough"}))
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["token"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, body["token"], cookies[0].Value)
}

func TestLogoutClearsCookie(t *testing.T) {
	h := New(nil, nil, nil, nil, nil, nil, nil, nil, testConfig())

	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

func TestReady(t *testing.T) {
	h := New(nil, nil, nil, nil, nil, nil, nil, &fakePinger{}, testConfig())
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyDatabaseDown(t *testing.T) {
	h := New(nil, nil, nil, nil, nil, nil, nil, &fakePinger{err: context.DeadlineExceeded}, testConfig())
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUnauthenticatedRequestIsRejected(t *testing.T) {
	h, hub := newMessageHandler(&mockMessageStorage{})
	defer hub.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/workspaces/11/messages?channelId=21", nil)
	messagesRouter(h).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
