package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Token
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	// GitHub
	GitHubClientID     string
	GitHubClientSecret string
	GitHubTimeout      time.Duration
	GitHubCacheTTL     time.Duration

	// Redis（空の場合はGitHubリポジトリのキャッシュを無効化）
	RedisURL string

	// Server
	ServerPort   string
	MaxBodyBytes int64

	// CORS
	CORSAllowedOrigin string

	// Logging
	LogLevel string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 7*24*time.Hour)
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", 10)
	cfg.GitHubClientID = getEnvString("GITHUB_CLIENT_ID", "")
	cfg.GitHubClientSecret = getEnvString("GITHUB_CLIENT_SECRET", "")
	cfg.GitHubTimeout = getEnvDuration("GITHUB_TIMEOUT", 10*time.Second)
	cfg.GitHubCacheTTL = getEnvDuration("GITHUB_CACHE_TTL", time.Hour)
	cfg.RedisURL = getEnvString("REDIS_URL", "")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.MaxBodyBytes = getEnvInt64("MAX_BODY_BYTES", 1<<20)
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
