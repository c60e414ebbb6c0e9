package host

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-multistream/config"
	"github.com/dep2p/go-multistream/internal/core/metrics"
)

// ModuleInput 模块输入依赖
type ModuleInput struct {
	fx.In

	UnifiedCfg *config.Config    `optional:"true"`
	Reporter   *metrics.Reporter `optional:"true"`
}

// ProvideHost 提供 Host 服务
func ProvideHost(input ModuleInput) (*Host, error) {
	return New(
		WithConfig(ConfigFromUnified(input.UnifiedCfg)),
		WithMetrics(input.Reporter),
	)
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("host",
		fx.Provide(ProvideHost),
		fx.Invoke(registerLifecycle),
	)
}

type lifecycleInput struct {
	fx.In
	LC   fx.Lifecycle
	Host *Host
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return input.Host.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return input.Host.Close()
		},
	})
}
