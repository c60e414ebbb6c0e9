package metrics

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dep2p/go-multistream/internal/core/handshake"
	"github.com/dep2p/go-multistream/internal/core/negotiator"
	"github.com/dep2p/go-multistream/pkg/types"
)

// 结果标签值
const (
	ResultOK       = "ok"
	ResultNA       = "na"
	ResultMismatch = "mismatch"
	ResultError    = "error"
)

// Config 指标配置
type Config struct {
	// Namespace 指标命名空间
	Namespace string

	// Buckets 协商耗时直方图桶
	Buckets []float64

	// Registerer 注册目标，nil 时使用 Reporter 私有的 Registry
	Registerer prometheus.Registerer
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Namespace: "multistream",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	}
}

// Reporter 协商指标记录器
type Reporter struct {
	clock    clock.Clock
	registry *prometheus.Registry

	handshakes   *prometheus.CounterVec
	negotiations *prometheus.CounterVec
	lsRequests   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	active       prometheus.Gauge
}

// NewReporter 创建记录器
//
// clk 为 nil 时使用系统时钟。
func NewReporter(cfg Config, clk clock.Clock) *Reporter {
	if clk == nil {
		clk = clock.New()
	}
	if len(cfg.Buckets) == 0 {
		cfg.Buckets = DefaultConfig().Buckets
	}

	r := &Reporter{clock: clk}
	reg := cfg.Registerer
	if reg == nil {
		r.registry = prometheus.NewRegistry()
		reg = r.registry
	}
	factory := promauto.With(reg)

	r.handshakes = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Name:      "handshakes_total",
		Help:      "Total number of multistream handshakes by result",
	}, []string{"result"})

	r.negotiations = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Name:      "negotiations_total",
		Help:      "Total number of protocol selections by role and result",
	}, []string{"role", "result"})

	r.lsRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Name:      "ls_total",
		Help:      "Total number of ls requests sent or served",
	}, []string{"role"})

	r.duration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Name:      "negotiation_duration_seconds",
		Help:      "Time from session creation to protocol handoff",
		Buckets:   cfg.Buckets,
	}, []string{"role"})

	r.active = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Name:      "active_sessions",
		Help:      "Number of sessions still negotiating",
	})

	return r
}

// Gatherer 返回私有 Registry；使用外部 Registerer 时为 nil
func (r *Reporter) Gatherer() prometheus.Gatherer {
	if r == nil || r.registry == nil {
		return nil
	}
	return r.registry
}

// Now 返回记录器时钟的当前时间
func (r *Reporter) Now() time.Time {
	if r == nil {
		return time.Time{}
	}
	return r.clock.Now()
}

// SessionOpened 记录会话创建
func (r *Reporter) SessionOpened() {
	if r == nil {
		return
	}
	r.active.Inc()
}

// SessionFinished 记录会话结束
//
// started 为 SessionOpened 时的 Now()；protocol 非空表示成功移交。
func (r *Reporter) SessionFinished(role types.Role, started time.Time, protocol types.ProtocolID) {
	if r == nil {
		return
	}
	r.active.Dec()
	if protocol != "" {
		r.duration.WithLabelValues(role.String()).Observe(r.clock.Since(started).Seconds())
	}
}

// Handshake 记录握手结果
func (r *Reporter) Handshake(err error) {
	if r == nil {
		return
	}
	result := ResultOK
	switch {
	case err == nil:
	case errors.Is(err, handshake.ErrMismatch):
		result = ResultMismatch
	default:
		result = ResultError
	}
	r.handshakes.WithLabelValues(result).Inc()
}

// Negotiation 记录一次 select 的结果
func (r *Reporter) Negotiation(role types.Role, err error) {
	if r == nil {
		return
	}
	r.negotiations.WithLabelValues(role.String(), resultOf(err)).Inc()
}

// List 记录一次 ls
func (r *Reporter) List(role types.Role) {
	if r == nil {
		return
	}
	r.lsRequests.WithLabelValues(role.String()).Inc()
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, negotiator.ErrNotSupported):
		return ResultNA
	default:
		return ResultError
	}
}
