// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザー（Identity）を表す。
// Email、Name、Avatarは登録後に変更されない。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcryptダイジェスト。平文パスワードは保持しない
	Avatar       string // メールアドレスから導出したgravatar URL
	CreatedAt    time.Time
}
