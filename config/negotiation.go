package config

import (
	"errors"
	"time"
)

// 协商层默认值
const (
	// DefaultProtocolID 默认握手标识
	DefaultProtocolID = "/multistream/1.0.0"

	// DefaultMaxMessageSize 默认帧体上限
	DefaultMaxMessageSize = 64 * 1024

	// DefaultNegotiateTimeout 主机为单条流协商设置的默认超时
	DefaultNegotiateTimeout = 10 * time.Second
)

// NegotiationConfig 协商层配置
type NegotiationConfig struct {
	// ProtocolID 握手时双方交换的标识
	ProtocolID string `json:"protocol_id"`

	// MaxMessageSize 单帧帧体上限（含换行符）
	MaxMessageSize int `json:"max_message_size"`

	// NegotiateTimeout 主机层协商超时
	//
	// 协商核心没有超时，由调用方通过 context 截止时间施加。
	NegotiateTimeout Duration `json:"negotiate_timeout"`
}

// DefaultNegotiationConfig 返回默认协商配置
func DefaultNegotiationConfig() NegotiationConfig {
	return NegotiationConfig{
		ProtocolID:       DefaultProtocolID,
		MaxMessageSize:   DefaultMaxMessageSize,
		NegotiateTimeout: Duration(DefaultNegotiateTimeout),
	}
}

// Validate 验证协商配置
func (c NegotiationConfig) Validate() error {
	if c.ProtocolID == "" {
		return errors.New("protocol_id must not be empty")
	}
	if c.MaxMessageSize < len(c.ProtocolID)+1 {
		return errors.New("max_message_size too small for protocol_id")
	}
	if c.NegotiateTimeout < 0 {
		return errors.New("negotiate_timeout must not be negative")
	}
	return nil
}
