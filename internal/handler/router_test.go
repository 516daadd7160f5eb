package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/hitoshi/devconnector/internal/auth"
	"github.com/hitoshi/devconnector/internal/model"
	"github.com/hitoshi/devconnector/internal/post"
	"github.com/hitoshi/devconnector/internal/repository"
)

// --- 統合テスト用のステートフルモック ---

type memPostStore struct {
	mu    sync.Mutex
	posts map[string]model.Post
}

func (m *memPostStore) FindByID(ctx context.Context, id string) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}
func (m *memPostStore) List(ctx context.Context) ([]*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Post, 0, len(m.posts))
	for _, p := range m.posts {
		p := p
		out = append(out, &p)
	}
	return out, nil
}
func (m *memPostStore) Create(ctx context.Context, p *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[p.ID] = *p
	return nil
}
func (m *memPostStore) Update(ctx context.Context, p *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.posts[p.ID].Version != p.Version {
		return repository.ErrVersionConflict
	}
	p.Version++
	m.posts[p.ID] = *p
	return nil
}
func (m *memPostStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.posts, id)
	return nil
}
func (m *memPostStore) DeleteByUserID(ctx context.Context, userID string) error { return nil }

type memUserStore struct {
	users map[string]*model.User
}

func (m *memUserStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.users[id], nil
}
func (m *memUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}
func (m *memUserStore) Create(ctx context.Context, u *model.User) error { return nil }
func (m *memUserStore) DeleteByID(ctx context.Context, id string) error { return nil }

type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(s string) string { return s }

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

// --- 統合テスト用ルーター構築ヘルパー ---

type testEnv struct {
	router http.Handler
	server *httptest.Server
	issuer *auth.TokenIssuer
	u1, u2 *model.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	u1 := &model.User{ID: uuid.NewString(), Name: "User One", Avatar: "https://www.gravatar.com/avatar/1"}
	u2 := &model.User{ID: uuid.NewString(), Name: "User Two", Avatar: "https://www.gravatar.com/avatar/2"}
	users := &memUserStore{users: map[string]*model.User{u1.ID: u1, u2.ID: u2}}
	posts := &memPostStore{posts: make(map[string]model.Post)}

	issuer := auth.NewTokenIssuer([]byte("integration-secret"), 0)
	deps := &RouterDeps{
		TokenVerifier:     issuer,
		CORSAllowedOrigin: "http://localhost:3000",
		MaxBodyBytes:      1 << 20,
		HealthChecker:     fakePinger{},
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "# metrics")
		}),
		AuthService: &mockAuthService{
			currentUserFn: func(ctx context.Context, userID string) (*model.User, error) {
				return users.users[userID], nil
			},
		},
		ProfileService: &mockProfileService{
			listFn: func(ctx context.Context) ([]*model.Profile, error) { return nil, nil },
		},
		PostService: post.NewService(posts, users, passthroughSanitizer{}, nil),
		UserService: &mockUserService{},
	}

	router := NewRouter(deps)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testEnv{router: router, server: srv, issuer: issuer, u1: u1, u2: u2}
}

func (e *testEnv) token(t *testing.T, u *model.User) string {
	t.Helper()
	tok, _, err := e.issuer.Issue(u.ID)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, r)
	if err != nil {
		t.Fatalf("NewRequest() error: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

// --- テスト ---

func TestNewRouter_PublicEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/health", "/metrics", "/api/profile"} {
		resp, _ := env.do(t, http.MethodGet, path, "", "")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want %d", path, resp.StatusCode, http.StatusOK)
		}
	}
}

func TestNewRouter_SetsRequestIDHeader(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/health", "", "")
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id response header")
	}
}

func TestNewRouter_ProtectedEndpoints_RequireToken(t *testing.T) {
	env := newTestEnv(t)

	endpoints := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth"},
		{http.MethodGet, "/api/profile/me"},
		{http.MethodPost, "/api/profile"},
		{http.MethodDelete, "/api/profile"},
		{http.MethodPut, "/api/profile/experience"},
		{http.MethodDelete, "/api/profile/experience/x"},
		{http.MethodPut, "/api/profile/education"},
		{http.MethodDelete, "/api/profile/education/x"},
		{http.MethodGet, "/api/posts"},
		{http.MethodPost, "/api/posts"},
		{http.MethodPut, "/api/posts/like/x"},
		{http.MethodPut, "/api/posts/unlike/x"},
		{http.MethodPost, "/api/posts/comment/x"},
		{http.MethodDelete, "/api/posts/comment/x/y"},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			resp, body := env.do(t, ep.method, ep.path, "", "")
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
			}
			if !strings.Contains(string(body), "No token, authorization denied.") {
				t.Errorf("body = %s", body)
			}
		})
	}
}

func TestNewRouter_TamperedToken_Returns401(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, env.u1)
	other := auth.NewTokenIssuer([]byte("another-secret"), 0)
	foreign, _, _ := other.Issue(env.u1.ID)

	for _, bad := range []string{tok + "x", foreign, "not.a.jwt"} {
		resp, body := env.do(t, http.MethodGet, "/api/auth", bad, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
		}
		if !strings.Contains(string(body), "Token is not valid.") {
			t.Errorf("body = %s", body)
		}
	}
}

func TestNewRouter_HealthUnavailable(t *testing.T) {
	deps := &RouterDeps{HealthChecker: fakePinger{err: errors.New("db down")}}
	w := httptest.NewRecorder()
	NewRouter(deps).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

// TestIntegration_PostLikeAndCommentFlow は投稿・いいね・コメントの一連の操作と所有者制約を検証する。
func TestIntegration_PostLikeAndCommentFlow(t *testing.T) {
	env := newTestEnv(t)
	t1 := env.token(t, env.u1)
	t2 := env.token(t, env.u2)

	// U1が投稿を作成
	resp, body := env.do(t, http.MethodPost, "/api/posts", t1, `{"text":"hello world"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create post status = %d: %s", resp.StatusCode, body)
	}
	var created postResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode post: %v", err)
	}
	if created.Name != env.u1.Name || created.User != env.u1.ID {
		t.Errorf("post author = (%q, %q)", created.User, created.Name)
	}
	postID := created.ID

	// U2がいいね、二重いいねは400
	resp, body = env.do(t, http.MethodPut, "/api/posts/like/"+postID, t2, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("like status = %d: %s", resp.StatusCode, body)
	}
	var likes []model.Like
	if err := json.Unmarshal(body, &likes); err != nil || len(likes) != 1 || likes[0].UserID != env.u2.ID {
		t.Fatalf("likes = %s (err %v)", body, err)
	}
	resp, body = env.do(t, http.MethodPut, "/api/posts/like/"+postID, t2, "")
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(string(body), "Post already liked.") {
		t.Errorf("duplicate like = %d %s", resp.StatusCode, body)
	}

	// U1はいいねしていないので取り消せない
	resp, _ = env.do(t, http.MethodPut, "/api/posts/unlike/"+postID, t1, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unlike without like status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	// U2がコメント
	resp, body = env.do(t, http.MethodPost, "/api/posts/comment/"+postID, t2, `{"text":"nice post"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("comment status = %d: %s", resp.StatusCode, body)
	}
	var comments []model.Comment
	if err := json.Unmarshal(body, &comments); err != nil || len(comments) != 1 {
		t.Fatalf("comments = %s (err %v)", body, err)
	}
	commentID := comments[0].ID

	// 投稿者U1であってもU2のコメントは削除できない
	resp, _ = env.do(t, http.MethodDelete, "/api/posts/comment/"+postID+"/"+commentID, t1, "")
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("foreign comment delete status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}

	// U2は自分のコメントを削除できる
	resp, body = env.do(t, http.MethodDelete, "/api/posts/comment/"+postID+"/"+commentID, t2, "")
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("own comment delete = %d %s", resp.StatusCode, body)
	}

	// U2はU1の投稿を削除できない
	resp, _ = env.do(t, http.MethodDelete, "/api/posts/"+postID, t2, "")
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("foreign post delete status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}

	resp, body = env.do(t, http.MethodDelete, "/api/posts/"+postID, t1, "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Post removed.") {
		t.Errorf("own post delete = %d %s", resp.StatusCode, body)
	}

	resp, _ = env.do(t, http.MethodGet, "/api/posts/"+postID, t1, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get deleted post status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestIntegration_CreatePost_EmptyText(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/posts", env.token(t, env.u1), `{"text":"   "}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if !strings.Contains(string(body), `"param":"text"`) {
		t.Errorf("body = %s", body)
	}
}

func TestIntegration_BodyTooLarge(t *testing.T) {
	env := newTestEnv(t)

	big := `{"text":"` + strings.Repeat("a", 2<<20) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(big))
	req.Header.Set("x-auth-token", env.token(t, env.u1))
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", w.Code, http.StatusRequestEntityTooLarge)
	}
}
