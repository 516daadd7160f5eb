package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/devconnector/internal/metrics"
	"github.com/hitoshi/devconnector/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	Logger            *slog.Logger
	Metrics           metrics.MetricsCollector
	CORSAllowedOrigin string
	MaxBodyBytes      int64

	// 運用エンドポイント
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	AuthService    AuthServiceInterface
	ProfileService ProfileServiceInterface
	PostService    PostServiceInterface
	UserService    UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → Logging → Metrics → SecurityHeaders → CORS → BodyLimit → (Auth)
//
// 認証が必要なルートのみAuthMiddlewareを通す。
func NewRouter(deps *RouterDeps) http.Handler {
	collector := deps.Metrics
	if collector == nil {
		collector = metrics.Nop{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(collector))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewBodyLimitMiddleware(deps.MaxBodyBytes))

	authHandler := NewAuthHandler(deps.AuthService)
	profileHandler := NewProfileHandler(deps.ProfileService)
	postHandler := NewPostHandler(deps.PostService)
	userHandler := NewUserHandler(deps.UserService)
	requireAuth := middleware.NewAuthMiddleware(deps.TokenVerifier, collector)

	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Post("/api/users", authHandler.Register)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/", authHandler.Login)
		r.With(requireAuth).Get("/", authHandler.Me)
	})

	r.Route("/api/profile", func(r chi.Router) {
		// 公開ルート
		r.Get("/", profileHandler.List)
		r.Get("/user/{user_id}", profileHandler.GetByUserID)
		r.Get("/github/{username}", profileHandler.GitHubRepos)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/me", profileHandler.GetMine)
			r.Post("/", profileHandler.Upsert)
			r.Delete("/", userHandler.Withdraw)

			r.Put("/experience", profileHandler.AddExperience)
			r.Delete("/experience/{exp_id}", profileHandler.RemoveExperience)
			r.Put("/education", profileHandler.AddEducation)
			r.Delete("/education/{edu_id}", profileHandler.RemoveEducation)
		})
	})

	r.Route("/api/posts", func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/", postHandler.Create)
		r.Get("/", postHandler.List)
		r.Get("/{id}", postHandler.Get)
		r.Delete("/{id}", postHandler.Delete)

		r.Put("/like/{id}", postHandler.Like)
		r.Put("/unlike/{id}", postHandler.Unlike)
		r.Post("/comment/{id}", postHandler.AddComment)
		r.Delete("/comment/{id}/{comment_id}", postHandler.RemoveComment)
	})

	return r
}
