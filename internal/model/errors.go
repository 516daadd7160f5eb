// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// ハンドラー境界でHTTPステータスと {"code", "msg", "category"} に変換される。
type APIError struct {
	Code     string // エラーコード
	Message  string // ユーザー向けメッセージ
	Category string // カテゴリ: auth, validation, profile, post, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeUserExists          = "USER_EXISTS"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeProfileNotFound     = "PROFILE_NOT_FOUND"
	ErrCodeExperienceNotFound  = "EXPERIENCE_NOT_FOUND"
	ErrCodeEducationNotFound   = "EDUCATION_NOT_FOUND"
	ErrCodePostNotFound        = "POST_NOT_FOUND"
	ErrCodeCommentNotFound     = "COMMENT_NOT_FOUND"
	ErrCodeAlreadyLiked        = "ALREADY_LIKED"
	ErrCodeNotLiked            = "NOT_LIKED"
	ErrCodeGitHubUserNotFound  = "GITHUB_USER_NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// NewValidationError は入力値が不正な場合のエラーを生成する。
func NewValidationError(msg string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  msg,
		Category: "validation",
	}
}

// NewUnauthorizedError は認証されていない場合のエラーを生成する。
func NewUnauthorizedError(msg string) *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  msg,
		Category: "auth",
	}
}

// NewForbiddenError は認証済みだが所有者ではない場合のエラーを生成する。
func NewForbiddenError(msg string) *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  msg,
		Category: "auth",
	}
}

// NewUserExistsError は登録済みメールアドレスで再登録しようとした場合のエラーを生成する。
func NewUserExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeUserExists,
		Message:  "User already exists.",
		Category: "auth",
	}
}

// NewInvalidCredentialsError はメールアドレスまたはパスワードが一致しない場合のエラーを生成する。
// どちらが誤っているかは返さない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid credentials.",
		Category: "auth",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found.",
		Category: "auth",
	}
}

// NewProfileNotFoundError はプロフィールが見つからない場合のエラーを生成する。
func NewProfileNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeProfileNotFound,
		Message:  "There is no profile for this user.",
		Category: "profile",
	}
}

// NewExperienceNotFoundError は職歴エントリが見つからない場合のエラーを生成する。
func NewExperienceNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeExperienceNotFound,
		Message:  fmt.Sprintf("Experience not found: %s", id),
		Category: "profile",
	}
}

// NewEducationNotFoundError は学歴エントリが見つからない場合のエラーを生成する。
func NewEducationNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeEducationNotFound,
		Message:  fmt.Sprintf("Education not found: %s", id),
		Category: "profile",
	}
}

// NewPostNotFoundError は投稿が見つからない場合のエラーを生成する。
func NewPostNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  "Post not found.",
		Category: "post",
	}
}

// NewCommentNotFoundError はコメントが見つからない場合のエラーを生成する。
func NewCommentNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeCommentNotFound,
		Message:  "Comment does not exist.",
		Category: "post",
	}
}

// NewAlreadyLikedError は同じユーザーが二重にいいねしようとした場合のエラーを生成する。
func NewAlreadyLikedError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyLiked,
		Message:  "Post already liked.",
		Category: "post",
	}
}

// NewNotLikedError はいいねしていない投稿のいいねを取り消そうとした場合のエラーを生成する。
func NewNotLikedError() *APIError {
	return &APIError{
		Code:     ErrCodeNotLiked,
		Message:  "Post has not yet been liked.",
		Category: "post",
	}
}

// NewGitHubUserNotFoundError はGitHubユーザーが存在しない場合のエラーを生成する。
func NewGitHubUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeGitHubUserNotFound,
		Message:  "No Github profile found.",
		Category: "profile",
	}
}

// NewConflictError は並行更新によって保存が拒否された場合のエラーを生成する。
func NewConflictError() *APIError {
	return &APIError{
		Code:     ErrCodeConflict,
		Message:  "The resource was modified by another request. Please retry.",
		Category: "system",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Server error.",
		Category: "system",
	}
}
