// Package post は投稿と、そのいいね・コメントのドメインロジックを提供する。
package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/devconnector/internal/auth"
	"github.com/hitoshi/devconnector/internal/collection"
	"github.com/hitoshi/devconnector/internal/metrics"
	"github.com/hitoshi/devconnector/internal/model"
	"github.com/hitoshi/devconnector/internal/repository"
)

// Sanitizer はユーザー入力テキストのサニタイズインターフェース。
type Sanitizer interface {
	Sanitize(text string) string
}

// Service は投稿のサービス層。
// いいね・コメントの変更は投稿ドキュメントの読み込み、メモリ上での変更、
// バージョン付き保存の順に行い、変更に失敗した場合は保存しない。
type Service struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	sanitizer Sanitizer
	metrics   metrics.MetricsCollector
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorがnilの場合はメトリクスを記録しない。
func NewService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	sanitizer Sanitizer,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		postRepo:  postRepo,
		userRepo:  userRepo,
		sanitizer: sanitizer,
		metrics:   collector,
		now:       time.Now,
	}
}

// Create は投稿を作成する。投稿者の名前とアバターは作成時点の値をコピーする。
func (s *Service) Create(ctx context.Context, userID, text string) (*model.Post, error) {
	text, err := s.cleanText(text)
	if err != nil {
		return nil, err
	}

	author, err := s.findAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		ID:        uuid.New().String(),
		UserID:    author.ID,
		Text:      text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		Likes:     []model.Like{},
		Comments:  []model.Comment{},
		Version:   1,
		CreatedAt: s.now().UTC(),
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	slog.Info("post created",
		slog.String("post_id", post.ID),
		slog.String("user_id", userID),
	)

	return post, nil
}

// List は全投稿を新しい順に返す。
func (s *Service) List(ctx context.Context) ([]*model.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Get は指定IDの投稿を返す。
func (s *Service) Get(ctx context.Context, postID string) (*model.Post, error) {
	return s.load(ctx, postID)
}

// Delete は投稿を削除する。投稿者本人以外はFORBIDDENエラーを返す。
func (s *Service) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.load(ctx, postID)
	if err != nil {
		return err
	}
	if err := auth.Authorize(userID, post.UserID); err != nil {
		slog.Warn("post delete rejected",
			slog.String("post_id", postID),
			slog.String("user_id", userID),
		)
		return model.NewForbiddenError("User not authorized.")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	slog.Info("post deleted",
		slog.String("post_id", postID),
		slog.String("user_id", userID),
	)
	return nil
}

// Like は投稿にいいねを追加し、更新後のいいね一覧を返す。
// 同じユーザーが既にいいねしている場合はALREADY_LIKEDエラーを返す。
func (s *Service) Like(ctx context.Context, userID, postID string) ([]model.Like, error) {
	post, err := s.mutate(ctx, "likes", "add", postID, func(p *model.Post) error {
		like := model.Like{
			ID:        collection.NewID(),
			UserID:    userID,
			CreatedAt: s.now().UTC(),
		}
		likes, err := collection.AddUnique(p.Likes, like)
		if errors.Is(err, collection.ErrDuplicate) {
			return model.NewAlreadyLikedError()
		}
		p.Likes = likes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Likes, nil
}

// Unlike は呼び出し元のいいねを取り消し、更新後のいいね一覧を返す。
// いいねしていない場合はNOT_LIKEDエラーを返す。
func (s *Service) Unlike(ctx context.Context, userID, postID string) ([]model.Like, error) {
	post, err := s.mutate(ctx, "likes", "remove", postID, func(p *model.Post) error {
		likes, _, err := collection.RemoveByAuthor(p.Likes, userID)
		if errors.Is(err, collection.ErrInvalidState) {
			return model.NewNotLikedError()
		}
		p.Likes = likes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Likes, nil
}

// AddComment は投稿にコメントを追加し、更新後のコメント一覧を返す。
// 認証済みであれば投稿者以外でもコメントできる。
func (s *Service) AddComment(ctx context.Context, userID, postID, text string) ([]model.Comment, error) {
	text, err := s.cleanText(text)
	if err != nil {
		return nil, err
	}
	author, err := s.findAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}

	post, err := s.mutate(ctx, "comments", "add", postID, func(p *model.Post) error {
		p.Comments = collection.Prepend(p.Comments, model.Comment{
			ID:        collection.NewID(),
			UserID:    author.ID,
			Text:      text,
			Name:      author.Name,
			Avatar:    author.Avatar,
			CreatedAt: s.now().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}

// RemoveComment はコメントを削除し、更新後のコメント一覧を返す。
// 削除できるのはコメントの作成者のみで、投稿者であっても他人のコメントは削除できない。
func (s *Service) RemoveComment(ctx context.Context, userID, postID, commentID string) ([]model.Comment, error) {
	post, err := s.mutate(ctx, "comments", "remove", postID, func(p *model.Post) error {
		comment, ok := collection.Find(p.Comments, commentID)
		if !ok {
			return model.NewCommentNotFoundError()
		}
		if err := auth.Authorize(userID, comment.AuthorID()); err != nil {
			return model.NewForbiddenError("User not authorized.")
		}
		comments, _, err := collection.RemoveByID(p.Comments, commentID)
		if err != nil {
			return model.NewCommentNotFoundError()
		}
		p.Comments = comments
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}

// mutate は投稿を読み込んでapplyで変更し、バージョン付きで保存する。
// applyがエラーを返した場合は保存しない。結果はメトリクスに記録する。
func (s *Service) mutate(
	ctx context.Context,
	coll, op, postID string,
	apply func(p *model.Post) error,
) (post *model.Post, err error) {
	defer func() {
		s.metrics.RecordMutation(coll, op, metrics.ResultFromError(err))
	}()

	post, err = s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := apply(post); err != nil {
		return nil, err
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			slog.Warn("post update conflict",
				slog.String("post_id", postID),
				slog.String("collection", coll),
				slog.String("op", op),
			)
			return nil, model.NewConflictError()
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return post, nil
}

// load は投稿を取得する。IDの形式が不正な場合も見つからないものとして扱う。
func (s *Service) load(ctx context.Context, postID string) (*model.Post, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return nil, model.NewPostNotFoundError()
	}
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError()
	}
	return post, nil
}

func (s *Service) findAuthor(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

func (s *Service) cleanText(text string) (string, error) {
	text = strings.TrimSpace(s.sanitizer.Sanitize(text))
	if text == "" {
		return "", model.NewValidationError("Text is required")
	}
	return text, nil
}
