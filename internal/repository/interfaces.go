// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/devconnector/internal/model"
)

// ErrVersionConflict は楽観的排他制御で更新対象のバージョンが一致しなかった場合のエラー。
// 読み込み後に別のリクエストが同じドキュメントを更新したことを示す。
var ErrVersionConflict = errors.New("repository: version conflict")

// ErrDuplicate は一意制約違反のエラー。
var ErrDuplicate = errors.New("repository: duplicate key")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。メールアドレスが重複する場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	DeleteByID(ctx context.Context, id string) error
}

// ProfileRepository はプロフィールの永続化インターフェース。
// experience、educationはプロフィールと同じ行に保存され、ドキュメント単位で読み書きされる。
type ProfileRepository interface {
	// FindByUserID はユーザーIDでプロフィールを取得する。見つからない場合はnilを返す。
	// UserName、UserAvatarには所有者の情報が設定される。
	FindByUserID(ctx context.Context, userID string) (*model.Profile, error)

	// List は全プロフィールを所有者情報付きで取得する。
	List(ctx context.Context) ([]*model.Profile, error)

	// Create はプロフィールを作成する。
	Create(ctx context.Context, profile *model.Profile) error

	// Update はプロフィール全体を保存する。
	// 保存先のversionがprofile.Versionと一致しない場合はErrVersionConflictを返す。
	// 成功時はprofile.Versionを進める。
	Update(ctx context.Context, profile *model.Profile) error

	// DeleteByUserID はユーザーのプロフィールを削除する。存在しない場合も成功とする。
	DeleteByUserID(ctx context.Context, userID string) error
}

// PostRepository は投稿の永続化インターフェース。
// likes、commentsは投稿と同じ行に保存され、ドキュメント単位で読み書きされる。
type PostRepository interface {
	// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// List は全投稿を作成日時の新しい順に取得する。
	List(ctx context.Context) ([]*model.Post, error)

	// Create は投稿を作成する。
	Create(ctx context.Context, post *model.Post) error

	// Update は投稿全体を保存する。
	// 保存先のversionがpost.Versionと一致しない場合はErrVersionConflictを返す。
	// 成功時はpost.Versionを進める。
	Update(ctx context.Context, post *model.Post) error

	// Delete は指定IDの投稿を削除する。
	Delete(ctx context.Context, id string) error

	// DeleteByUserID はユーザーの全投稿を削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}
