package multistream

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-multistream/config"
	"github.com/dep2p/go-multistream/internal/core/host"
	"github.com/dep2p/go-multistream/internal/core/metrics"
	"github.com/dep2p/go-multistream/pkg/lib/log"
)

var logger = log.Logger("multistream")

// Module 返回完整的 Fx 模块
//
// 提供 *config.Config（未提供时使用默认值并应用 MSS_ 环境变量）、
// *Reporter（指标禁用时为 nil）与 *Host，并把主机的 Start/Close
// 挂到 fx 生命周期上。
func Module(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Provide(func() (*config.Config, error) {
			return provideConfig(cfg)
		}),
		metrics.Module,
		host.Module(),
	)
}

func provideConfig(cfg *config.Config) (*config.Config, error) {
	if cfg == nil {
		cfg = config.NewConfig()
		config.ApplyEnv(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("加载配置",
		"listen_addr", cfg.Host.ListenAddr,
		"protocol_id", cfg.Negotiation.ProtocolID,
		"metrics", cfg.Metrics.Enabled)
	return cfg, nil
}
