// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordRegistrationSuccess()
	RecordRegistrationFailure(code string)
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordDeletion()
	RecordEventPublished()
	RecordEventPublishFailure()
	RecordTokenRejected(reason string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	registrationSuccess prometheus.Counter
	registrationFail    *prometheus.CounterVec
	loginSuccess        prometheus.Counter
	loginFail           prometheus.Counter
	deletions           prometheus.Counter
	eventPublished      prometheus.Counter
	eventPublishFail    prometheus.Counter
	tokenRejected       *prometheus.CounterVec
	httpStatus          *prometheus.CounterVec
	requestLatency      prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrationSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authcore_registration_success_total",
			Help: "アカウント作成成功の合計数",
		}),
		registrationFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_registration_fail_total",
			Help: "アカウント作成失敗のエラーコード別合計数",
		}, []string{"code"}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authcore_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authcore_login_fail_total",
			Help: "ログイン失敗の合計数",
		}),
		deletions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authcore_account_deletions_total",
			Help: "アカウント削除の合計数",
		}),
		eventPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authcore_event_published_total",
			Help: "作成イベント発行成功の合計数",
		}),
		eventPublishFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authcore_event_publish_fail_total",
			Help: "作成イベント発行失敗の合計数",
		}),
		tokenRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_token_rejected_total",
			Help: "トークン検証失敗の理由別合計数",
		}, []string{"reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "authcore_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.registrationSuccess,
		c.registrationFail,
		c.loginSuccess,
		c.loginFail,
		c.deletions,
		c.eventPublished,
		c.eventPublishFail,
		c.tokenRejected,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordRegistrationSuccess はアカウント作成成功を記録する。
func (c *Collector) RecordRegistrationSuccess() {
	c.registrationSuccess.Inc()
}

// RecordRegistrationFailure はアカウント作成失敗をエラーコード別に記録する。
func (c *Collector) RecordRegistrationFailure(code string) {
	c.registrationFail.WithLabelValues(code).Inc()
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFail.Inc()
}

// RecordDeletion はアカウント削除を記録する。
func (c *Collector) RecordDeletion() {
	c.deletions.Inc()
}

// RecordEventPublished は作成イベント発行成功を記録する。
func (c *Collector) RecordEventPublished() {
	c.eventPublished.Inc()
}

// RecordEventPublishFailure は作成イベント発行失敗を記録する。
func (c *Collector) RecordEventPublishFailure() {
	c.eventPublishFail.Inc()
}

// RecordTokenRejected はトークン検証失敗を理由別に記録する。
func (c *Collector) RecordTokenRejected(reason string) {
	c.tokenRejected.WithLabelValues(reason).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// Nop は何も記録しないMetricsCollector実装。
// メトリクス収集が不要な箇所やテストで使用する。
type Nop struct{}

func (Nop) RecordRegistrationSuccess()         {}
func (Nop) RecordRegistrationFailure(string)   {}
func (Nop) RecordLoginSuccess()                {}
func (Nop) RecordLoginFailure()                {}
func (Nop) RecordDeletion()                    {}
func (Nop) RecordEventPublished()              {}
func (Nop) RecordEventPublishFailure()         {}
func (Nop) RecordTokenRejected(string)         {}
func (Nop) RecordHTTPStatus(int)               {}
func (Nop) RecordRequestLatency(time.Duration) {}

// compile-time interface checks
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
