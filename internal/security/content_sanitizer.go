// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer は投稿・コメント本文からHTMLマークアップを除去し、
// 保存されたテキストがブラウザでスクリプトとして解釈されないようにする。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxSanitizePasses はエンティティで多重にエスケープされたタグを剥がす最大回数。
// これを超えても収束しない入力はマークアップ記号を落としたテキストにする。
const maxSanitizePasses = 8

// TextSanitizer はユーザー入力テキストのサニタイズ機能のインターフェースを定義する。
type TextSanitizer interface {
	// Sanitize はテキストから全てのHTMLタグを除去したプレーンテキストを返す。
	// script、styleタグは中身ごと除去する。
	// "&"、"<"、"'" などの記号はエスケープせずそのまま残す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(text string) string
}

// textSanitizer はTextSanitizerの実装。
// bluemondayのポリシーはスレッドセーフに共有できる。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
// タグを一切許可しないbluemondayのStrictPolicyを使う。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はテキストから全てのHTMLタグを除去する。
// StrictPolicyはタグ除去と同時に記号をエンティティ化するため、結果をアンエスケープして
// プレーンテキストに戻す。アンエスケープで新たなタグが現れた場合は再度除去する。
func (s *textSanitizer) Sanitize(text string) string {
	current := text
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(current))
		if next == current {
			return next
		}
		current = next
	}
	// 残りのエスケープ段からタグが復元されないよう "<"、">"、"&" を取り除く。
	// 結果はタグもエンティティも含まないため、再度Sanitizeしても変化しない。
	return strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '&':
			return -1
		}
		return r
	}, current)
}
