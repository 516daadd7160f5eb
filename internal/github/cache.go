package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "github:repos:"

// RepoLister はリポジトリ一覧取得のインターフェース。
type RepoLister interface {
	ListRepos(ctx context.Context, username string) ([]Repository, error)
}

// RedisCache はGitHubリポジトリ一覧をRedisにキャッシュする。
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache はRedisCacheを生成する。
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get はキャッシュ済みのリポジトリ一覧を返す。キャッシュがない場合は第2戻り値がfalseになる。
func (c *RedisCache) Get(ctx context.Context, username string) ([]Repository, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cache: %w", err)
	}

	var repos []Repository
	if err := json.Unmarshal(data, &repos); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache: %w", err)
	}
	return repos, true, nil
}

// Set はリポジトリ一覧をTTL付きで保存する。
func (c *RedisCache) Set(ctx context.Context, username string, repos []Repository) error {
	payload, err := json.Marshal(repos)
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(username), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// GitHubのユーザー名は大文字小文字を区別しない
func cacheKey(username string) string {
	return cacheKeyPrefix + strings.ToLower(username)
}

// CachedClient はRepoListerの結果をRedisCacheに保存するラッパー。
// キャッシュの読み書きに失敗してもGitHub APIの結果をそのまま返す。
// ユーザーが存在しない結果はキャッシュしない。
type CachedClient struct {
	next   RepoLister
	cache  *RedisCache
	logger *slog.Logger
}

// NewCachedClient はCachedClientを生成する。
func NewCachedClient(next RepoLister, cache *RedisCache, logger *slog.Logger) *CachedClient {
	return &CachedClient{next: next, cache: cache, logger: logger}
}

// ListRepos はキャッシュを優先してリポジトリ一覧を返す。
func (c *CachedClient) ListRepos(ctx context.Context, username string) ([]Repository, error) {
	repos, ok, err := c.cache.Get(ctx, username)
	if err != nil {
		c.logger.Warn("github repo cache read failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
	}
	if ok {
		return repos, nil
	}

	repos, err = c.next.ListRepos(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, username, repos); err != nil {
		c.logger.Warn("github repo cache write failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
	}
	return repos, nil
}

var (
	_ RepoLister = (*Client)(nil)
	_ RepoLister = (*CachedClient)(nil)
)
