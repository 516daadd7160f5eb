// Package user はアカウント管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/devconnector/internal/model"
	"github.com/hitoshi/devconnector/internal/repository"
)

// PostDeleter はユーザーの投稿の一括削除インターフェース。
type PostDeleter interface {
	DeleteByUserID(ctx context.Context, userID string) error
}

// ProfileDeleter はユーザーのプロフィール削除インターフェース。
type ProfileDeleter interface {
	DeleteByUserID(ctx context.Context, userID string) error
}

// Service はアカウント管理のサービス層。
type Service struct {
	userRepo       repository.UserRepository
	postDeleter    PostDeleter
	profileDeleter ProfileDeleter
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	postDeleter PostDeleter,
	profileDeleter ProfileDeleter,
) *Service {
	return &Service{
		userRepo:       userRepo,
		postDeleter:    postDeleter,
		profileDeleter: profileDeleter,
	}
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: posts → profile → user
// 他ユーザーの投稿に残したいいね・コメントはそのまま残す。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	slog.Info("withdrawal started",
		slog.String("user_id", userID),
	)

	// 1. 投稿を削除
	if err := s.postDeleter.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete posts: %w", err)
	}

	// 2. プロフィールを削除
	if err := s.profileDeleter.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	// 3. ユーザーを削除（残った投稿・プロフィールもCASCADEで削除される）
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("withdrawal completed",
		slog.String("user_id", userID),
	)

	return nil
}
