package middleware

import "net/http"

// NewBodyLimitMiddleware はリクエストボディの読み取り上限を設定するミドルウェアを返す。
// 上限を超えたボディはJSONデコード時にエラーとなる。
func NewBodyLimitMiddleware(maxBytes int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && maxBytes > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
