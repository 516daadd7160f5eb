// Package github はGitHub連携機能を提供する。
// ユーザーの公開リポジトリ一覧の取得と、その結果のRedisキャッシュを含む。
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

const (
	// defaultEndpoint はGitHub REST APIのベースURL。
	defaultEndpoint = "https://api.github.com"
	// reposPerPage は1回の取得で返すリポジトリ数。
	reposPerPage = 5
	// maxResponseBytes はレスポンスボディの読み取り上限。
	maxResponseBytes = 1 << 20
	userAgent        = "devconnector"
)

// ErrUserNotFound はGitHubユーザーが存在しない、またはリポジトリ一覧を取得できない場合のエラー。
var ErrUserNotFound = errors.New("github: user not found")

// usernamePattern はGitHubのユーザー名として許容される形式。
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,37}[A-Za-z0-9])?$`)

// Repository はGitHubリポジトリの公開情報。
type Repository struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	HTMLURL         string    `json:"html_url"`
	Description     string    `json:"description"`
	Language        string    `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	WatchersCount   int       `json:"watchers_count"`
	ForksCount      int       `json:"forks_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// Client はGitHub REST APIのクライアント。
type Client struct {
	httpClient   *http.Client
	logger       *slog.Logger
	endpoint     string // テスト用にエンドポイントを差し替え可能
	clientID     string
	clientSecret string
}

// NewClient はClientの新しいインスタンスを生成する。
// clientID、clientSecretが空の場合は未認証でAPIを呼び出す。
func NewClient(httpClient *http.Client, logger *slog.Logger, clientID, clientSecret string) *Client {
	return &Client{
		httpClient:   httpClient,
		logger:       logger,
		endpoint:     defaultEndpoint,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// ListRepos はユーザーの公開リポジトリを作成日時の古い順に最大5件取得する。
// ユーザーが存在しない場合やGitHubが200以外を返した場合はErrUserNotFoundを返す。
func (c *Client) ListRepos(ctx context.Context, username string) ([]Repository, error) {
	if !usernamePattern.MatchString(username) {
		return nil, ErrUserNotFound
	}

	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse endpoint: %w", err)
	}
	reqURL = reqURL.JoinPath("users", username, "repos")

	q := reqURL.Query()
	q.Set("per_page", fmt.Sprint(reposPerPage))
	q.Set("sort", "created")
	q.Set("direction", "asc")
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.clientID != "" && c.clientSecret != "" {
		req.SetBasicAuth(c.clientID, c.clientSecret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("github api request failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("github api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("github api returned non-200 status",
			slog.String("username", username),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, ErrUserNotFound
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	repos := []Repository{}
	if err := json.Unmarshal(body, &repos); err != nil {
		c.logger.Error("failed to parse github api response",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return repos, nil
}
