package session

import (
	"github.com/dep2p/go-multistream/internal/core/codec"
	"github.com/dep2p/go-multistream/internal/core/handshake"
	"github.com/dep2p/go-multistream/internal/core/metrics"
)

type options struct {
	protocolID string
	maxSize    int
	readyCb    func(error)
	reporter   *metrics.Reporter
}

func defaultOptions() options {
	return options{
		protocolID: handshake.ProtocolID,
		maxSize:    codec.DefaultMaxMessageSize,
	}
}

// Option 会话选项
type Option func(*options)

// WithProtocolID 设置握手标识
func WithProtocolID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.protocolID = id
		}
	}
}

// WithMaxMessageSize 设置单帧帧体上限
func WithMaxMessageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSize = n
		}
	}
}

// WithReadyCallback 设置握手结果回调，恰好触发一次
func WithReadyCallback(cb func(error)) Option {
	return func(o *options) {
		o.readyCb = cb
	}
}

// WithMetrics 设置指标记录器，nil 表示不记录
func WithMetrics(r *metrics.Reporter) Option {
	return func(o *options) {
		o.reporter = r
	}
}
