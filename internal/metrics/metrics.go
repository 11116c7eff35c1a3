// Package metrics 提供提成、收益与领取流程的 Prometheus 指标。
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 领取结果标签
const (
	ClaimResultRecorded  = "recorded"
	ClaimResultDuplicate = "duplicate"
	ClaimResultLocked    = "locked"
	ClaimResultError     = "error"
)

// Metrics 指标集合，nil 接收者上的方法均为空操作
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	payoutComputations  *prometheus.CounterVec
	payoutDuration      prometheus.Histogram
	yieldProjections    *prometheus.CounterVec
	reserveBanked       prometheus.Counter
	reserveReleased     prometheus.Counter
	settlementsTotal    *prometheus.CounterVec
	claimsTotal         *prometheus.CounterVec
	tasksProcessed      *prometheus.CounterVec
}

// New 创建独立注册表的指标集合
func New(namespace string) *Metrics {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = "fleetdesk"
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of admin HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Admin HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		payoutComputations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payout_computations_total",
				Help:      "Monthly payout computations by attribution policy and outcome",
			},
			[]string{"attribution", "result"},
		),
		payoutDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "payout_computation_duration_seconds",
				Help:      "Time spent loading snapshots and computing a monthly payout",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		yieldProjections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "yield_projections_total",
				Help:      "Equity yield projections split by whether the ROI cap applied",
			},
			[]string{"capped"},
		),
		reserveBanked: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "yield_reserve_banked_amount_total",
				Help:      "Cumulative interest banked into the smart yield reserve",
			},
		),
		reserveReleased: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "yield_reserve_released_amount_total",
				Help:      "Cumulative interest released from the smart yield reserve",
			},
		),
		settlementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "yield_settlements_total",
				Help:      "Monthly yield settlements by outcome",
			},
			[]string{"result"},
		),
		claimsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payout_claims_total",
				Help:      "Payout claim attempts by outcome",
			},
			[]string{"result"},
		),
		tasksProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queue_tasks_processed_total",
				Help:      "Background tasks processed by type and outcome",
			},
			[]string{"task", "result"},
		),
	}
}

// Handler 指标抓取入口
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 返回底层注册表
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordHTTPRequest 记录一次 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	if path == "" {
		path = "unmatched"
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordPayout 记录一次提成计算
func (m *Metrics) RecordPayout(attribution string, found bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if !found {
		result = "unknown_agent"
	}
	m.payoutComputations.WithLabelValues(attribution, result).Inc()
	m.payoutDuration.Observe(duration.Seconds())
}

// RecordYieldProjection 记录一次收益测算
func (m *Metrics) RecordYieldProjection(capped bool) {
	if m == nil {
		return
	}
	m.yieldProjections.WithLabelValues(strconv.FormatBool(capped)).Inc()
}

// RecordSettlement 记录一次月度结算及储备金变动
func (m *Metrics) RecordSettlement(result string, banked, released float64) {
	if m == nil {
		return
	}
	m.settlementsTotal.WithLabelValues(result).Inc()
	if banked > 0 {
		m.reserveBanked.Add(banked)
	}
	if released > 0 {
		m.reserveReleased.Add(released)
	}
}

// RecordClaim 记录一次领取尝试
func (m *Metrics) RecordClaim(result string) {
	if m == nil {
		return
	}
	m.claimsTotal.WithLabelValues(result).Inc()
}

// RecordTask 记录一次后台任务处理
func (m *Metrics) RecordTask(taskType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.tasksProcessed.WithLabelValues(taskType, result).Inc()
}
