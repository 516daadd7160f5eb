package auth

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/devconnector/internal/model"
	"github.com/hitoshi/devconnector/internal/repository"
)

// --- モック ---

type mockUserRepo struct {
	findByIDFn    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn      func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}
func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}
func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) error {
	return nil
}

// fakeHasher はbcryptを使わずに照合回数を記録するHasher。
type fakeHasher struct {
	verifyCalls int
}

func (h *fakeHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	return "hashed:" + plaintext, nil
}

func (h *fakeHasher) Verify(plaintext, digest string) bool {
	h.verifyCalls++
	return digest == "hashed:"+plaintext
}

func newTestService(repo *mockUserRepo) (*Service, *fakeHasher, *TokenIssuer) {
	hasher := &fakeHasher{}
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	return NewService(repo, hasher, issuer), hasher, issuer
}

func assertAPIErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T: %v", err, err)
	}
	if apiErr.Code != code {
		t.Errorf("Code = %q, want %q", apiErr.Code, code)
	}
}

// --- Register ---

func TestService_Register_CreatesUserAndIssuesToken(t *testing.T) {
	var created *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	svc, _, issuer := newTestService(repo)

	token, err := svc.Register(context.Background(), " Alice ", " Alice@Example.com ", "secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected user to be created")
	}
	if created.Email != "alice@example.com" {
		t.Errorf("Email = %q, want normalised address", created.Email)
	}
	if created.Name != "Alice" {
		t.Errorf("Name = %q, want %q", created.Name, "Alice")
	}
	if created.PasswordHash != "hashed:secret1" {
		t.Errorf("PasswordHash = %q, password must be stored hashed", created.PasswordHash)
	}
	if created.Avatar != GravatarURL("alice@example.com") {
		t.Errorf("Avatar = %q", created.Avatar)
	}
	if created.ID == "" {
		t.Error("ID should be generated")
	}

	userID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("issued token should verify: %v", err)
	}
	if userID != created.ID {
		t.Errorf("token user = %q, want %q", userID, created.ID)
	}
}

func TestService_Register_ExistingEmail_ReturnsUserExists(t *testing.T) {
	createCalled := false
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email}, nil
		},
		createFn: func(ctx context.Context, user *model.User) error {
			createCalled = true
			return nil
		},
	}
	svc, _, _ := newTestService(repo)

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "secret1")
	assertAPIErrorCode(t, err, model.ErrCodeUserExists)
	if createCalled {
		t.Error("Create should not be called for an existing email")
	}
}

func TestService_Register_ConcurrentDuplicate_ReturnsUserExists(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return repository.ErrDuplicate
		},
	}
	svc, _, _ := newTestService(repo)

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "secret1")
	assertAPIErrorCode(t, err, model.ErrCodeUserExists)
}

func TestService_Register_RepositoryError_IsWrapped(t *testing.T) {
	dbErr := errors.New("db down")
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, dbErr
		},
	}
	svc, _, _ := newTestService(repo)

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "secret1")
	if !errors.Is(err, dbErr) {
		t.Errorf("expected wrapped db error, got %v", err)
	}
}

func TestService_Register_PasswordOverLimit_ReturnsValidationError(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			t.Error("Create should not be called")
			return nil
		},
	}
	svc := NewService(repo, NewPasswordHasher(bcrypt.MinCost), NewTokenIssuer([]byte("test-secret"), time.Hour))

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", strings.Repeat("a", MaxPasswordBytes+1))
	assertAPIErrorCode(t, err, model.ErrCodeValidationFailed)
}

// failingHasher はHashが常に失敗するHasher。
type failingHasher struct{ fakeHasher }

func (h *failingHasher) Hash(plaintext string) (string, error) {
	return "", errors.New("hasher unavailable")
}

func TestNewService_DummyDigestFailure_IsLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	NewService(&mockUserRepo{}, &failingHasher{}, NewTokenIssuer([]byte("test-secret"), time.Hour))

	out := buf.String()
	if !strings.Contains(out, "failed to prepare dummy password digest") || !strings.Contains(out, "hasher unavailable") {
		t.Errorf("expected dummy digest failure to be logged, got %s", out)
	}
}

// --- Login ---

func TestService_Login_Success(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email != "alice@example.com" {
				t.Errorf("email = %q, want normalised address", email)
			}
			return &model.User{ID: "user-1", Email: email, PasswordHash: "hashed:secret1"}, nil
		},
	}
	svc, _, issuer := newTestService(repo)

	token, err := svc.Login(context.Background(), "ALICE@example.com", "secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	userID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("issued token should verify: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("token user = %q, want user-1", userID)
	}
}

func TestService_Login_WrongPassword_ReturnsInvalidCredentials(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", PasswordHash: "hashed:secret1"}, nil
		},
	}
	svc, _, _ := newTestService(repo)

	token, err := svc.Login(context.Background(), "alice@example.com", "wrong")
	assertAPIErrorCode(t, err, model.ErrCodeInvalidCredentials)
	if token != "" {
		t.Error("no token should be issued")
	}
}

func TestService_Login_UnknownEmail_SameErrorAndStillVerifies(t *testing.T) {
	svc, hasher, _ := newTestService(&mockUserRepo{})

	_, err := svc.Login(context.Background(), "ghost@example.com", "secret1")
	assertAPIErrorCode(t, err, model.ErrCodeInvalidCredentials)
	if hasher.verifyCalls != 1 {
		t.Errorf("verifyCalls = %d, want 1 (dummy compare)", hasher.verifyCalls)
	}
}

// --- CurrentUser ---

func TestService_CurrentUser(t *testing.T) {
	t.Run("存在するユーザー", func(t *testing.T) {
		repo := &mockUserRepo{
			findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
				return &model.User{ID: id, Name: "Alice"}, nil
			},
		}
		svc, _, _ := newTestService(repo)

		user, err := svc.CurrentUser(context.Background(), "user-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Name != "Alice" {
			t.Errorf("Name = %q, want Alice", user.Name)
		}
	})

	t.Run("退会済みユーザー", func(t *testing.T) {
		svc, _, _ := newTestService(&mockUserRepo{})

		_, err := svc.CurrentUser(context.Background(), "user-1")
		assertAPIErrorCode(t, err, model.ErrCodeUserNotFound)
	})
}

func TestNormalizeEmail(t *testing.T) {
	if got := normalizeEmail("  MiXeD@Example.COM\n"); got != "mixed@example.com" {
		t.Errorf("normalizeEmail = %q", got)
	}
	if strings.Contains(normalizeEmail(" a@b.c "), " ") {
		t.Error("spaces should be trimmed")
	}
}
