package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/devconnector/internal/auth"
	"github.com/hitoshi/devconnector/internal/config"
	"github.com/hitoshi/devconnector/internal/database"
	"github.com/hitoshi/devconnector/internal/github"
	"github.com/hitoshi/devconnector/internal/handler"
	"github.com/hitoshi/devconnector/internal/logger"
	"github.com/hitoshi/devconnector/internal/metrics"
	"github.com/hitoshi/devconnector/internal/post"
	"github.com/hitoshi/devconnector/internal/profile"
	"github.com/hitoshi/devconnector/internal/repository"
	"github.com/hitoshi/devconnector/internal/security"
	"github.com/hitoshi/devconnector/internal/user"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定値のログレベルを反映する
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		slog.Warn("invalid LOG_LEVEL, falling back to info", slog.String("error", err.Error()))
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.Bool("github_cache", cfg.RedisURL != ""),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	profileRepo := repository.NewPostgresProfileRepo(db)
	postRepo := repository.NewPostgresPostRepo(db)

	// 3. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	// 4. セキュリティサービスの初期化
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewTextSanitizer()

	// 5. GitHubクライアント（REDIS_URL設定時はキャッシュを挟む）
	repoLister, closeCache, err := newRepoLister(cfg, ssrfGuard)
	if err != nil {
		return err
	}
	defer closeCache()

	// 6. ドメインサービスの初期化
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	authService := auth.NewService(userRepo, hasher, issuer)

	profileService := profile.NewService(profileRepo, ssrfGuard, repoLister, collector)
	postService := post.NewService(postRepo, userRepo, sanitizer, collector)
	userService := user.NewService(userRepo, postRepo, profileRepo)

	// 7. ルーターの構築
	deps := &handler.RouterDeps{
		TokenVerifier:     issuer,
		Logger:            slog.Default(),
		Metrics:           collector,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		MaxBodyBytes:      cfg.MaxBodyBytes,
		HealthChecker:     db,
		MetricsHandler:    metrics.Handler(reg),

		AuthService:    authService,
		ProfileService: profileService,
		PostService:    postService,
		UserService:    userService,
	}

	router := handler.NewRouter(deps)

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// newRepoLister はGitHubリポジトリ取得クライアントを構築する。
// REDIS_URLが空の場合はキャッシュなしのクライアントをそのまま返す。
// 戻り値のclose関数はRedis接続を閉じる。
func newRepoLister(cfg *config.Config, guard security.SSRFGuardService) (github.RepoLister, func() error, error) {
	client := github.NewClient(
		guard.NewSafeClient(cfg.GitHubTimeout),
		slog.Default(),
		cfg.GitHubClientID,
		cfg.GitHubClientSecret,
	)

	if cfg.RedisURL == "" {
		return client, func() error { return nil }, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	slog.Info("github repository cache enabled",
		slog.Duration("ttl", cfg.GitHubCacheTTL),
	)

	cached := github.NewCachedClient(client, github.NewRedisCache(rdb, cfg.GitHubCacheTTL), slog.Default())
	return cached, rdb.Close, nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
