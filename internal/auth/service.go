// Package auth はパスワードハッシュ、セッショントークンの発行・検証、
// 所有者チェック、ユーザー登録・ログインを提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/devconnector/internal/model"
	"github.com/hitoshi/devconnector/internal/repository"
)

// passwordLengthMessage は登録時のパスワード長エラーのメッセージ。
const passwordLengthMessage = "Please enter a password with 6 to 72 characters"

// Hasher はパスワードハッシュのインターフェース。
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// Issuer はセッショントークン発行のインターフェース。
type Issuer interface {
	Issue(userID string) (string, time.Time, error)
}

// Service は登録・ログイン・現在ユーザー取得のビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   Hasher
	issuer   Issuer

	// dummyDigest は存在しないユーザーでのログイン時にも照合コストを揃えるためのダイジェスト。
	dummyDigest string
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, hasher Hasher, issuer Issuer) *Service {
	dummy, err := hasher.Hash("devconnector-dummy-password")
	if err != nil {
		// 空のままだとVerifyが即座に返り、存在しないメールアドレスの応答が速くなる
		slog.Error("failed to prepare dummy password digest",
			slog.String("error", err.Error()),
		)
	}
	return &Service{
		userRepo:    userRepo,
		hasher:      hasher,
		issuer:      issuer,
		dummyDigest: dummy,
	}
}

// Register は新規ユーザーを作成し、セッショントークンを返す。
// 同じメールアドレスのユーザーが存在する場合はUSER_EXISTSエラーを返す。
func (s *Service) Register(ctx context.Context, name, email, password string) (string, error) {
	email = normalizeEmail(email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to find user by email: %w", err)
	}
	if existing != nil {
		return "", model.NewUserExistsError()
	}

	digest, err := s.hasher.Hash(password)
	if errors.Is(err, ErrPasswordTooLong) {
		return "", model.NewValidationError(passwordLengthMessage)
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: digest,
		Avatar:       GravatarURL(email),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// FindByEmailとCreateの間に同じメールアドレスで登録された場合
		if errors.Is(err, repository.ErrDuplicate) {
			return "", model.NewUserExistsError()
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
	)

	return s.issueToken(user.ID)
}

// Login はメールアドレスとパスワードを検証し、セッショントークンを返す。
// ユーザーが存在しない場合とパスワードが一致しない場合は同じエラーを返す。
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		s.hasher.Verify(password, s.dummyDigest)
		return "", model.NewInvalidCredentialsError()
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		slog.Warn("login failed",
			slog.String("user_id", user.ID),
			slog.String("reason", "password_mismatch"),
		)
		return "", model.NewInvalidCredentialsError()
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return s.issueToken(user.ID)
}

// CurrentUser はトークンで認証されたユーザーを返す。
// トークン発行後に退会したユーザーの場合はUSER_NOT_FOUNDエラーを返す。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

func (s *Service) issueToken(userID string) (string, error) {
	token, _, err := s.issuer.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
