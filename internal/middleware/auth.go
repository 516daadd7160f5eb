// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/devconnector/internal/auth"
	"github.com/hitoshi/devconnector/internal/metrics"
	"github.com/hitoshi/devconnector/internal/model"
)

// TokenHeader はセッショントークンを運ぶリクエストヘッダー名。
const TokenHeader = "x-auth-token"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// TokenVerifier はセッショントークンの検証インターフェース。
// auth.TokenIssuerが実装する。
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// NewAuthMiddleware はx-auth-tokenヘッダーのトークンを検証し、
// 認証済みユーザーIDをリクエストコンテキストに注入するミドルウェアを返す。
// トークンが無い場合と無効・期限切れの場合で異なるメッセージの401を返す。
// 無効と期限切れは同じレスポンスとし、区別はメトリクスとログのみで行う。
func NewAuthMiddleware(verifier TokenVerifier, collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(TokenHeader)
			if token == "" {
				collector.RecordAuthFailure("missing")
				WriteErrorResponse(w, http.StatusUnauthorized,
					model.NewUnauthorizedError("No token, authorization denied."))
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				reason := "invalid"
				if errors.Is(err, auth.ErrExpiredToken) {
					reason = "expired"
				}
				collector.RecordAuthFailure(reason)
				slog.Debug("token rejected",
					slog.String("reason", reason),
					slog.String("path", r.URL.Path),
				)
				WriteErrorResponse(w, http.StatusUnauthorized,
					model.NewUnauthorizedError("Token is not valid."))
				return
			}

			annotateUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
