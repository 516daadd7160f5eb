package auth

import "errors"

var (
	// ErrInvalidToken は署名不一致、デコード不能、必須クレーム欠落のトークンを示す。
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrExpiredToken は有効期限を過ぎたトークンを示す。
	ErrExpiredToken = errors.New("auth: token expired")
	// ErrForbidden は呼び出し元がリソースの所有者ではないことを示す。
	ErrForbidden = errors.New("auth: forbidden")
	// ErrEmptyPassword は空のパスワードをハッシュしようとしたことを示す。
	ErrEmptyPassword = errors.New("auth: password is empty")
	// ErrPasswordTooLong はMaxPasswordBytesを超えるパスワードを示す。
	ErrPasswordTooLong = errors.New("auth: password exceeds 72 bytes")
)
