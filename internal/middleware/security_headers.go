package middleware

import "net/http"

// apiSecurityHeaders はJSON APIの全レスポンスに付与するヘッダー。
// レスポンスはHTMLとして描画されず、キャッシュもされない前提で設定する。
var apiSecurityHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"Referrer-Policy":         "no-referrer",
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	"Cache-Control":           "no-store",
}

// NewSecurityHeadersMiddleware はセキュリティ関連のHTTPレスポンスヘッダーを付与するミドルウェアを返す。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range apiSecurityHeaders {
				h.Set(k, v)
			}
			next.ServeHTTP(w, r)
		})
	}
}
