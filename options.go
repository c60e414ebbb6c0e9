package multistream

import (
	"github.com/dep2p/go-multistream/config"
	"github.com/dep2p/go-multistream/internal/core/metrics"
	"github.com/dep2p/go-multistream/internal/core/session"
)

// Option 会话配置选项
type Option func(*[]session.Option)

func sessionOptions(opts []Option) []session.Option {
	var out []session.Option
	for _, opt := range opts {
		opt(&out)
	}
	return out
}

func with(o session.Option) Option {
	return func(out *[]session.Option) {
		*out = append(*out, o)
	}
}

// WithReadyCallback 设置握手结果回调
//
// 握手确认时以 nil 调用，失败时以错误调用，恰好一次。
func WithReadyCallback(cb func(error)) Option {
	return with(session.WithReadyCallback(cb))
}

// WithProtocolID 设置握手标识，默认 /multistream/1.0.0
func WithProtocolID(id string) Option {
	return with(session.WithProtocolID(id))
}

// WithMaxMessageSize 设置单帧帧体上限，默认 64 KiB
func WithMaxMessageSize(n int) Option {
	return with(session.WithMaxMessageSize(n))
}

// WithMetrics 把会话结果记录到 r
func WithMetrics(r *metrics.Reporter) Option {
	return with(session.WithMetrics(r))
}

// WithConfig 应用统一配置中的协商参数
func WithConfig(cfg *config.Config) Option {
	return func(out *[]session.Option) {
		if cfg == nil {
			return
		}
		*out = append(*out,
			session.WithProtocolID(cfg.Negotiation.ProtocolID),
			session.WithMaxMessageSize(cfg.Negotiation.MaxMessageSize),
		)
	}
}
