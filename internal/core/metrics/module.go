package metrics

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-multistream/config"
)

// Params Metrics 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// ConfigFromUnified 从统一配置创建指标配置
//
// 返回 false 表示指标被禁用。
func ConfigFromUnified(cfg *config.Config) (Config, bool) {
	out := DefaultConfig()
	if cfg == nil {
		return out, true
	}
	out.Namespace = cfg.Metrics.Namespace
	return out, cfg.Metrics.Enabled
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(NewReporterFromParams),
)

// NewReporterFromParams 从参数创建 Reporter
//
// 指标被禁用时返回 nil，下游按 nil 接收者处理。
func NewReporterFromParams(p Params) *Reporter {
	cfg, enabled := ConfigFromUnified(p.UnifiedCfg)
	if !enabled {
		return nil
	}
	return NewReporter(cfg, nil)
}
