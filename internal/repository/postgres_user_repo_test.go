package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hitoshi/devconnector/internal/model"
	"github.com/lib/pq"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sqlmock expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var userColumns = []string{"id", "name", "email", "password_hash", "avatar", "created_at"}

func TestPostgresUserRepo_FindByEmail_Found(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepo(db)
	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)SELECT id, name, email, password_hash, avatar, created_at FROM users\s+WHERE email = \$1`).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("user-1", "Alice", "alice@example.com", "$2a$10$digest", "https://gravatar/x", createdAt))

	user, err := repo.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.ID != "user-1" || user.Name != "Alice" || user.PasswordHash != "$2a$10$digest" {
		t.Errorf("unexpected user: %+v", user)
	}
	if !user.CreatedAt.Equal(createdAt) {
		t.Errorf("CreatedAt = %v, want %v", user.CreatedAt, createdAt)
	}
}

func TestPostgresUserRepo_FindByID_NotFound_ReturnsNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepo(db)

	mock.ExpectQuery(`FROM users\s+WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	user, err := repo.FindByID(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user, got %+v", user)
	}
}

func TestPostgresUserRepo_FindByID_DBError_Wrapped(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepo(db)
	dbErr := errors.New("connection reset")

	mock.ExpectQuery(`FROM users\s+WHERE id = \$1`).
		WithArgs("user-1").
		WillReturnError(dbErr)

	_, err := repo.FindByID(context.Background(), "user-1")
	if !errors.Is(err, dbErr) {
		t.Errorf("expected wrapped db error, got %v", err)
	}
}

func TestPostgresUserRepo_Create_Success(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepo(db)
	user := &model.User{
		ID:           "user-1",
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "digest",
		Avatar:       "avatar",
		CreatedAt:    time.Now(),
	}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(user.ID, user.Name, user.Email, user.PasswordHash, user.Avatar, user.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPostgresUserRepo_Create_DuplicateEmail_ReturnsErrDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepo(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &model.User{ID: "user-1", Email: "alice@example.com"})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestPostgresUserRepo_DeleteByID(t *testing.T) {
	t.Run("削除成功", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgresUserRepo(db)

		mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
			WithArgs("user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := repo.DeleteByID(context.Background(), "user-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("対象なしはエラー", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgresUserRepo(db)

		mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
			WithArgs("ghost").
			WillReturnResult(sqlmock.NewResult(0, 0))

		if err := repo.DeleteByID(context.Background(), "ghost"); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}
