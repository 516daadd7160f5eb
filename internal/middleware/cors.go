package middleware

import (
	"net/http"
	"strings"
)

// NewCORSMiddleware はCORSミドルウェアを返す。
// allowedOriginsはカンマ区切りで複数指定できる。1つだけの場合は常にその値を返し、
// 複数の場合はリクエストのOriginが一致したときだけ同じ値を返す。
// トークンはCookieではなくx-auth-tokenヘッダーで送られるため、許可ヘッダーに含める。
// OPTIONSプリフライトリクエストには204で応答する。
func NewCORSMiddleware(allowedOrigins string) func(next http.Handler) http.Handler {
	origins := splitOrigins(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if origin := matchOrigin(origins, r.Header.Get("Origin")); origin != "" {
				h.Set("Access-Control-Allow-Origin", origin)
			}
			if len(origins) > 1 {
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, "+TokenHeader)
			h.Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func matchOrigin(origins []string, requestOrigin string) string {
	if len(origins) == 1 {
		return origins[0]
	}
	for _, o := range origins {
		if o == requestOrigin {
			return o
		}
	}
	return ""
}
