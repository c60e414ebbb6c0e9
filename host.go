package multistream

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-multistream/config"
	"github.com/dep2p/go-multistream/internal/core/host"
	"github.com/dep2p/go-multistream/internal/core/metrics"
)

// Host TCP + yamux 主机
type Host = host.Host

// Reporter 协商指标记录器
type Reporter = metrics.Reporter

// NewHost 按统一配置创建主机，cfg 为 nil 时使用默认配置
//
// r 可以为 nil。返回的主机需要调用 Start 才开始监听。
func NewHost(cfg *config.Config, r *Reporter) (*Host, error) {
	return host.New(
		host.WithConfig(host.ConfigFromUnified(cfg)),
		host.WithMetrics(r),
	)
}

// NewReporter 创建指标记录器
//
// reg 为 nil 时使用记录器私有的 Registry，可通过 Gatherer() 读取。
func NewReporter(namespace string, reg prometheus.Registerer) *Reporter {
	cfg := metrics.DefaultConfig()
	if namespace != "" {
		cfg.Namespace = namespace
	}
	cfg.Registerer = reg
	return metrics.NewReporter(cfg, nil)
}
