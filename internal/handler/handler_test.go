package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/devconnector/internal/github"
	"github.com/hitoshi/devconnector/internal/middleware"
	"github.com/hitoshi/devconnector/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	registerFn    func(ctx context.Context, name, email, password string) (string, error)
	loginFn       func(ctx context.Context, email, password string) (string, error)
	currentUserFn func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	return m.registerFn(ctx, name, email, password)
}
func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	return m.loginFn(ctx, email, password)
}
func (m *mockAuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	return m.currentUserFn(ctx, userID)
}

type mockProfileService struct {
	getMineFn          func(ctx context.Context, userID string) (*model.Profile, error)
	getByUserIDFn      func(ctx context.Context, userID string) (*model.Profile, error)
	listFn             func(ctx context.Context) ([]*model.Profile, error)
	upsertFn           func(ctx context.Context, userID string, fields model.ProfileFields) (*model.Profile, error)
	addExperienceFn    func(ctx context.Context, userID string, exp model.Experience) ([]model.Experience, error)
	removeExperienceFn func(ctx context.Context, userID, expID string) ([]model.Experience, error)
	addEducationFn     func(ctx context.Context, userID string, edu model.Education) ([]model.Education, error)
	removeEducationFn  func(ctx context.Context, userID, eduID string) ([]model.Education, error)
	gitHubReposFn      func(ctx context.Context, username string) ([]github.Repository, error)
}

func (m *mockProfileService) GetMine(ctx context.Context, userID string) (*model.Profile, error) {
	return m.getMineFn(ctx, userID)
}
func (m *mockProfileService) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	return m.getByUserIDFn(ctx, userID)
}
func (m *mockProfileService) List(ctx context.Context) ([]*model.Profile, error) {
	return m.listFn(ctx)
}
func (m *mockProfileService) Upsert(ctx context.Context, userID string, fields model.ProfileFields) (*model.Profile, error) {
	return m.upsertFn(ctx, userID, fields)
}
func (m *mockProfileService) AddExperience(ctx context.Context, userID string, exp model.Experience) ([]model.Experience, error) {
	return m.addExperienceFn(ctx, userID, exp)
}
func (m *mockProfileService) RemoveExperience(ctx context.Context, userID, expID string) ([]model.Experience, error) {
	return m.removeExperienceFn(ctx, userID, expID)
}
func (m *mockProfileService) AddEducation(ctx context.Context, userID string, edu model.Education) ([]model.Education, error) {
	return m.addEducationFn(ctx, userID, edu)
}
func (m *mockProfileService) RemoveEducation(ctx context.Context, userID, eduID string) ([]model.Education, error) {
	return m.removeEducationFn(ctx, userID, eduID)
}
func (m *mockProfileService) GitHubRepos(ctx context.Context, username string) ([]github.Repository, error) {
	return m.gitHubReposFn(ctx, username)
}

type mockUserService struct {
	withdrawFn func(ctx context.Context, userID string) error
}

func (m *mockUserService) Withdraw(ctx context.Context, userID string) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, userID)
	}
	return nil
}

// --- ヘルパー ---

// withUserID はテスト用に認証済みユーザーIDをコンテキストに注入するヘルパー。
func withUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.ContextWithUserID(r.Context(), userID))
}

// withChiURLParams はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}

func decodeValidationErrors(t *testing.T, w *httptest.ResponseRecorder) []fieldError {
	t.Helper()
	var resp validationErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode validation errors: %v", err)
	}
	return resp.Errors
}

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}
