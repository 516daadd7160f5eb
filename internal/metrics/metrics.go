// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/devconnector/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ミューテーション結果のラベル値
const (
	ResultOK        = "ok"
	ResultNotFound  = "not_found"
	ResultDuplicate = "duplicate"
	ResultForbidden = "forbidden"
	ResultInvalid   = "invalid_state"
	ResultConflict  = "conflict"
	ResultError     = "error"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	// RecordMutation はサブコレクション変更の結果を記録する。
	// collectionはexperience/education/likes/comments、opはadd/removeなど。
	RecordMutation(collection, op, result string)
	RecordAuthFailure(reason string)
	RecordGitHubLookup(result string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	mutations      *prometheus.CounterVec
	authFailures   *prometheus.CounterVec
	githubLookups  *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devconnector_collection_mutations_total",
			Help: "サブコレクション変更の合計数",
		}, []string{"collection", "op", "result"}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devconnector_auth_failures_total",
			Help: "認証失敗の合計数",
		}, []string{"reason"}),
		githubLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devconnector_github_lookups_total",
			Help: "GitHubリポジトリ取得の合計数",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devconnector_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "devconnector_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.mutations,
		c.authFailures,
		c.githubLookups,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordMutation はサブコレクション変更の結果を記録する。
func (c *Collector) RecordMutation(collection, op, result string) {
	c.mutations.WithLabelValues(collection, op, result).Inc()
}

// RecordAuthFailure は認証失敗を理由別に記録する。
func (c *Collector) RecordAuthFailure(reason string) {
	c.authFailures.WithLabelValues(reason).Inc()
}

// RecordGitHubLookup はGitHubリポジトリ取得の結果を記録する。
func (c *Collector) RecordGitHubLookup(result string) {
	c.githubLookups.WithLabelValues(result).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストの処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// ResultFromError はサービス層のエラーをミューテーション結果のラベル値に変換する。
func ResultFromError(err error) string {
	if err == nil {
		return ResultOK
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		return ResultError
	}
	switch apiErr.Code {
	case model.ErrCodeAlreadyLiked:
		return ResultDuplicate
	case model.ErrCodeNotLiked:
		return ResultInvalid
	case model.ErrCodeForbidden:
		return ResultForbidden
	case model.ErrCodeConflict:
		return ResultConflict
	case model.ErrCodePostNotFound, model.ErrCodeProfileNotFound, model.ErrCodeCommentNotFound,
		model.ErrCodeExperienceNotFound, model.ErrCodeEducationNotFound, model.ErrCodeUserNotFound,
		model.ErrCodeGitHubUserNotFound:
		return ResultNotFound
	default:
		return ResultError
	}
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使う。
type Nop struct{}

func (Nop) RecordMutation(collection, op, result string) {}
func (Nop) RecordAuthFailure(reason string)              {}
func (Nop) RecordGitHubLookup(result string)             {}
func (Nop) RecordHTTPStatus(statusCode int)              {}
func (Nop) RecordRequestLatency(duration time.Duration)  {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
