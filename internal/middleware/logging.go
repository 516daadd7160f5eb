package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestIDHeader はリクエストIDを返すレスポンスヘッダー名。
const RequestIDHeader = "X-Request-Id"

// statusRecorder はhttp.ResponseWriterをラップし、ステータスコードと書き込みバイト数を記録する。
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	bytes      int
	written    bool
}

// WriteHeader はステータスコードを記録してから委譲する。
func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

// Write はデータを書き込む。WriteHeaderが未呼び出しの場合は200を記録する。
func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// requestLog は後段のミドルウェアがアクセスログに追記する属性を保持する。
// 認証ミドルウェアはロギングミドルウェアより内側で動くため、
// 派生コンテキストではなくこのポインタ経由でユーザーIDを伝える。
type requestLog struct {
	userID string
}

var requestLogContextKey = contextKey("request_log")

// annotateUserID はアクセスログに認証済みユーザーIDを記録する。
// ロギングミドルウェアを通っていないリクエストでは何もしない。
func annotateUserID(ctx context.Context, userID string) {
	if rl, ok := ctx.Value(requestLogContextKey).(*requestLog); ok {
		rl.userID = userID
	}
}

// NewLoggingMiddleware はリクエストのJSON構造化ログを出力するミドルウェアを返す。
// ログにはmethod、path、status、bytes、duration_ms、request_id、user_id（認証済みの場合）を含む。
func NewLoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rl := &requestLog{}
			if userID, err := UserIDFromContext(r.Context()); err == nil {
				rl.userID = userID
			}
			r = r.WithContext(context.WithValue(r.Context(), requestLogContextKey, rl))

			reqID := chimw.GetReqID(r.Context())
			if reqID != "" {
				w.Header().Set(RequestIDHeader, reqID)
			}

			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			durationMs := float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond)

			args := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.statusCode),
				slog.Int("bytes", rec.bytes),
				slog.Float64("duration_ms", durationMs),
			}
			if reqID != "" {
				args = append(args, slog.String("request_id", reqID))
			}
			if rl.userID != "" {
				args = append(args, slog.String("user_id", rl.userID))
			}

			level := slog.LevelInfo
			if rec.statusCode >= 500 {
				level = slog.LevelError
			} else if rec.statusCode >= 400 {
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "http_request", args...)
		})
	}
}
