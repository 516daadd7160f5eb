// Package collection は親ドキュメントに埋め込まれた順序付きサブコレクション
// （いいね、コメント、職歴、学歴）の追加・削除ロジックを提供する。
//
// 追加は常に先頭への挿入（新しい順）で、削除は識別子の線形探索で位置を特定し、
// 残りのエントリの相対順序を保ったまま取り除く。
// すべての関数は引数のスライスを変更せず、新しいスライスを返す。
// 失敗した場合は呼び出し元の親ドキュメントを保存してはならない。
package collection

import (
	"errors"
	"slices"
)

var (
	// ErrNotFound は指定IDのエントリが存在しないことを示す。
	ErrNotFound = errors.New("collection: entry not found")
	// ErrDuplicate は同じ作成者のエントリが既に存在することを示す。
	ErrDuplicate = errors.New("collection: duplicate entry for author")
	// ErrInvalidState は作成者のエントリが存在しないため取り消せないことを示す。
	ErrInvalidState = errors.New("collection: no entry for author")
)

// Entry は識別子を持つサブコレクションのエントリ。
type Entry interface {
	EntryID() string
}

// AuthoredEntry は作成者を持つエントリ。いいね・コメントが該当する。
type AuthoredEntry interface {
	Entry
	AuthorID() string
}

// Prepend はエントリを先頭に追加した新しいスライスを返す。
func Prepend[T any](list []T, entry T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, entry)
	return append(out, list...)
}

// IndexByID は指定IDのエントリの位置を返す。見つからない場合は-1を返す。
func IndexByID[T Entry](list []T, id string) int {
	return slices.IndexFunc(list, func(e T) bool {
		return e.EntryID() == id
	})
}

// Find は指定IDのエントリを返す。
func Find[T Entry](list []T, id string) (T, bool) {
	i := IndexByID(list, id)
	if i < 0 {
		var zero T
		return zero, false
	}
	return list[i], true
}

// IndexByAuthor は指定ユーザーが作成したエントリの位置を返す。見つからない場合は-1を返す。
func IndexByAuthor[T AuthoredEntry](list []T, authorID string) int {
	return slices.IndexFunc(list, func(e T) bool {
		return e.AuthorID() == authorID
	})
}

// ContainsAuthor は指定ユーザーが作成したエントリが存在するかを返す。
func ContainsAuthor[T AuthoredEntry](list []T, authorID string) bool {
	return IndexByAuthor(list, authorID) >= 0
}

// RemoveAt は位置iのエントリを除いた新しいスライスを返す。
// 範囲外のインデックスはパニックする。
func RemoveAt[T any](list []T, i int) []T {
	out := slices.Clone(list)
	return slices.Delete(out, i, i+1)
}

// RemoveByID は指定IDのエントリを除いた新しいスライスと、除いたエントリを返す。
// 存在しない場合はErrNotFoundを返す。
func RemoveByID[T Entry](list []T, id string) ([]T, T, error) {
	i := IndexByID(list, id)
	if i < 0 {
		var zero T
		return list, zero, ErrNotFound
	}
	return RemoveAt(list, i), list[i], nil
}

// AddUnique は作成者ごとに1件までの制約付きでエントリを先頭に追加する。
// 同じ作成者のエントリが既にある場合はErrDuplicateを返し、スライスは変更しない。
func AddUnique[T AuthoredEntry](list []T, entry T) ([]T, error) {
	if ContainsAuthor(list, entry.AuthorID()) {
		return list, ErrDuplicate
	}
	return Prepend(list, entry), nil
}

// RemoveByAuthor は指定ユーザーが作成したエントリを除いた新しいスライスを返す。
// 存在しない場合はErrInvalidStateを返す。
func RemoveByAuthor[T AuthoredEntry](list []T, authorID string) ([]T, T, error) {
	i := IndexByAuthor(list, authorID)
	if i < 0 {
		var zero T
		return list, zero, ErrInvalidState
	}
	return RemoveAt(list, i), list[i], nil
}
