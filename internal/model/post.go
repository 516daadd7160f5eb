// Package model はドメインモデルを定義する。
package model

import "time"

// Post はユーザーの投稿を表す。
// Name、Avatarは作成時点の投稿者情報のコピーで、以後のユーザー情報変更には追従しない。
// Likes、Commentsは新しい順（先頭が最新）に並ぶ。
type Post struct {
	ID        string
	UserID    string
	Text      string
	Name      string
	Avatar    string
	Likes     []Like
	Comments  []Comment
	Version   int // 楽観的排他制御用
	CreatedAt time.Time
}

// Like は投稿へのいいねを表す。1ユーザーにつき1投稿1件まで。
// posts.likesカラムにJSON配列として保存される。
type Like struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	CreatedAt time.Time `json:"date"`
}

// EntryID はエントリの識別子を返す。
func (l Like) EntryID() string { return l.ID }

// AuthorID はいいねしたユーザーのIDを返す。
func (l Like) AuthorID() string { return l.UserID }

// Comment は投稿へのコメントを表す。
// 削除できるのはコメントの作成者のみで、投稿の所有者であっても他人のコメントは削除できない。
// posts.commentsカラムにJSON配列として保存される。
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"date"`
}

// EntryID はエントリの識別子を返す。
func (c Comment) EntryID() string { return c.ID }

// AuthorID はコメント作成者のIDを返す。
func (c Comment) AuthorID() string { return c.UserID }
