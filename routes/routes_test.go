package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snap-point/follow-api/cache"
	"github.com/snap-point/follow-api/middleware"
	"github.com/snap-point/follow-api/notify"
	"github.com/snap-point/follow-api/repositories"
	"github.com/snap-point/follow-api/services"
	"github.com/snap-point/follow-api/signing"
	"github.com/snap-point/follow-api/testutil"
	"github.com/snap-point/follow-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "jwt-secret"

type inbox struct {
	mu      sync.Mutex
	notices []notify.FollowRequestNotice
}

func (i *inbox) Enqueue(notice notify.FollowRequestNotice) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.notices = append(i.notices, notice)
	return true
}

func (i *inbox) last(t *testing.T) notify.FollowRequestNotice {
	t.Helper()
	i.mu.Lock()
	defer i.mu.Unlock()
	require.NotEmpty(t, i.notices)
	return i.notices[len(i.notices)-1]
}

type server struct {
	t      *testing.T
	db     *gorm.DB
	engine *gin.Engine
	inbox  *inbox
	tokens map[string]string
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	codec, err := signing.NewCodec([]byte("action-secret"), time.Hour)
	require.NoError(t, err)

	store := repositories.NewRelationshipStore(db)
	graph := repositories.NewGraph(db, cache.Nop{})
	visibility := services.NewVisibility(graph)
	box := &inbox{}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Metrics())
	SetupRoutes(r, Dependencies{
		JWTSecret:  testSecret,
		Store:      store,
		Graph:      graph,
		Follows:    services.NewFollowService(store, graph, codec, box, "http://api.test"),
		Posts:      services.NewPostService(repositories.NewPostRepository(db), store, visibility),
		Visibility: visibility,
	})

	return &server{t: t, db: db, engine: r, inbox: box, tokens: map[string]string{}}
}

func (s *server) account(username string, private bool) {
	profile := testutil.CreateAccount(s.t, s.db, username, private)
	token, err := utils.GenerateAccessToken(profile.UserID, testSecret, time.Hour)
	require.NoError(s.t, err)
	s.tokens[username] = token
}

func (s *server) do(as, method, path string, body interface{}) (int, map[string]interface{}) {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+s.tokens[as])
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var payload map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &payload))
	}
	return w.Code, payload
}

func data(t *testing.T, payload map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := payload["data"].(map[string]interface{})
	require.True(t, ok, "payload has no data object: %v", payload)
	return d
}

func TestPrivateFollowThroughEmailLink(t *testing.T) {
	s := newServer(t)
	s.account("alice", false)
	s.account("bob", true)

	code, payload := s.do("alice", http.MethodPost, "/api/users/bob/follow", nil)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "pending", data(t, payload)["status"])
	assert.Equal(t, false, data(t, payload)["isDirect"])

	code, payload = s.do("bob", http.MethodGet, "/api/follow-requests", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, payload["data"], 1)

	code, payload = s.do("alice", http.MethodGet, "/api/users/bob", nil)
	require.Equal(t, http.StatusOK, code)
	profile := data(t, payload)
	assert.Equal(t, false, profile["canView"])
	assert.Equal(t, true, profile["isFollowPending"])
	assert.NotContains(t, profile, "bio")

	notice := s.inbox.last(t)
	path := strings.TrimPrefix(notice.AcceptURL, "http://api.test")
	code, payload = s.do("", http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "accepted", data(t, payload)["status"])

	code, payload = s.do("alice", http.MethodGet, "/api/users/bob", nil)
	require.Equal(t, http.StatusOK, code)
	profile = data(t, payload)
	assert.Equal(t, true, profile["canView"])
	assert.Equal(t, true, profile["isFollowing"])
	assert.EqualValues(t, 1, profile["followersCount"])

	code, payload = s.do("alice", http.MethodGet, "/api/users/bob/followers", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, payload["data"], 1)
}

func TestResolveWithSession(t *testing.T) {
	s := newServer(t)
	s.account("alice", false)
	s.account("bob", true)
	s.account("carol", false)

	code, _ := s.do("alice", http.MethodPost, "/api/users/bob/follow", nil)
	require.Equal(t, http.StatusCreated, code)
	notice := s.inbox.last(t)

	code, payload := s.do("carol", http.MethodPost, "/api/follow-requests/resolve", gin.H{"token": notice.RejectToken})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, false, payload["success"])

	code, payload = s.do("bob", http.MethodPost, "/api/follow-requests/resolve", gin.H{"token": notice.RejectToken + "x"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Action failed", payload["error"])

	code, payload = s.do("bob", http.MethodPost, "/api/follow-requests/resolve", gin.H{"token": notice.RejectToken})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "rejected", data(t, payload)["status"])

	code, _ = s.do("bob", http.MethodPost, "/api/follow-requests/resolve", gin.H{"token": notice.RejectToken})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFollowErrors(t *testing.T) {
	s := newServer(t)
	s.account("alice", false)
	s.account("carol", false)

	code, payload := s.do("alice", http.MethodPost, "/api/users/alice/follow", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, payload["success"])

	code, _ = s.do("alice", http.MethodPost, "/api/users/nobody/follow", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, payload = s.do("alice", http.MethodPost, "/api/users/carol/follow", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, data(t, payload)["isDirect"])

	code, _ = s.do("alice", http.MethodPost, "/api/users/carol/follow", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do("alice", http.MethodDelete, "/api/users/carol/follow-request", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do("alice", http.MethodDelete, "/api/users/carol/follow", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do("alice", http.MethodDelete, "/api/users/carol/follow", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do("", http.MethodPost, "/api/users/carol/follow", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestPrivacyToggle(t *testing.T) {
	s := newServer(t)
	s.account("alice", false)

	code, payload := s.do("alice", http.MethodPut, "/api/profile/privacy", gin.H{"private": true})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, data(t, payload)["private"])

	code, _ = s.do("alice", http.MethodPut, "/api/profile/privacy", gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPostsAreGatedByVisibility(t *testing.T) {
	s := newServer(t)
	s.account("alice", false)
	s.account("bob", true)
	s.account("carol", false)

	code, payload := s.do("bob", http.MethodPost, "/api/posts", gin.H{"content": "hello followers"})
	require.Equal(t, http.StatusCreated, code)
	postPath := "/api/posts/" + jsonID(data(t, payload)["id"])

	code, _ = s.do("carol", http.MethodGet, postPath, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do("carol", http.MethodGet, "/api/users/bob/posts", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do("alice", http.MethodPost, "/api/users/bob/follow", nil)
	require.Equal(t, http.StatusCreated, code)
	code, _ = s.do("", http.MethodGet, strings.TrimPrefix(s.inbox.last(t).AcceptURL, "http://api.test"), nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do("alice", http.MethodGet, postPath, nil)
	assert.Equal(t, http.StatusOK, code)

	code, payload = s.do("alice", http.MethodGet, "/api/users/bob/posts", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, payload["data"], 1)

	code, _ = s.do("alice", http.MethodPost, postPath+"/comments", gin.H{"content": "nice"})
	assert.Equal(t, http.StatusCreated, code)
	code, payload = s.do("alice", http.MethodGet, postPath+"/comments", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, payload["data"], 1)

	code, payload = s.do("alice", http.MethodPost, postPath+"/like", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, data(t, payload)["reacted"])
	assert.EqualValues(t, 1, data(t, payload)["likesCount"])

	code, payload = s.do("alice", http.MethodPost, postPath+"/like", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, data(t, payload)["reacted"])
	assert.EqualValues(t, 0, data(t, payload)["likesCount"])

	code, _ = s.do("carol", http.MethodPost, postPath+"/like", nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestPostEditAndCommentModeration(t *testing.T) {
	s := newServer(t)
	s.account("alice", false)
	s.account("bob", false)
	s.account("carol", false)

	code, payload := s.do("alice", http.MethodPost, "/api/posts", gin.H{"content": "first draft", "draft": true})
	require.Equal(t, http.StatusCreated, code)
	postPath := "/api/posts/" + jsonID(data(t, payload)["id"])

	code, _ = s.do("bob", http.MethodGet, postPath, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, payload = s.do("alice", http.MethodPatch, postPath, gin.H{"content": "published", "draft": false})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "published", data(t, payload)["content"])
	assert.Equal(t, "published", data(t, payload)["status"])

	code, _ = s.do("bob", http.MethodPut, postPath, gin.H{"content": "hijacked"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do("alice", http.MethodPut, postPath, gin.H{"content": ""})
	assert.Equal(t, http.StatusBadRequest, code)

	code, payload = s.do("bob", http.MethodPost, postPath+"/comments", gin.H{"content": "nice"})
	require.Equal(t, http.StatusCreated, code)
	commentPath := postPath + "/comments/" + jsonID(data(t, payload)["id"])

	code, payload = s.do("carol", http.MethodGet, commentPath, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "bob", data(t, payload)["username"])

	code, _ = s.do("carol", http.MethodGet, postPath+"/comments/9999", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do("carol", http.MethodDelete, commentPath, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do("alice", http.MethodDelete, commentPath, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do("carol", http.MethodGet, commentPath, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do("bob", http.MethodDelete, postPath, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, payload = s.do("alice", http.MethodDelete, postPath, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Post deleted", payload["message"])
	code, _ = s.do("alice", http.MethodGet, postPath, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)

	code, payload := s.do("", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", payload["status"])

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_request_duration_seconds")
}

func jsonID(v interface{}) string {
	return strconv.FormatFloat(v.(float64), 'f', 0, 64)
}
