package host

import (
	"errors"
	"net"
	"time"

	"github.com/dep2p/go-multistream/config"
	"github.com/dep2p/go-multistream/internal/core/codec"
	"github.com/dep2p/go-multistream/internal/core/handshake"
)

// Config Host 配置
type Config struct {
	// ListenAddr TCP 监听地址
	ListenAddr string

	// ProtocolID 握手标识
	ProtocolID string

	// MaxMessageSize 协商帧体上限
	MaxMessageSize int

	// NegotiateTimeout 单个子流的协商超时（默认 10s）
	NegotiateTimeout time.Duration

	// MaxIncomingStreams 单条连接的入站子流上限
	MaxIncomingStreams uint32
}

// ConfigOption 配置选项
type ConfigOption func(*Config)

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:         "127.0.0.1:0",
		ProtocolID:         handshake.ProtocolID,
		MaxMessageSize:     codec.DefaultMaxMessageSize,
		NegotiateTimeout:   config.DefaultNegotiateTimeout,
		MaxIncomingStreams: 1000,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return errors.New("ListenAddr must be host:port")
	}
	if c.ProtocolID == "" {
		return errors.New("ProtocolID cannot be empty")
	}
	if c.MaxMessageSize <= 0 {
		return errors.New("MaxMessageSize must be positive")
	}
	if c.NegotiateTimeout <= 0 {
		return errors.New("NegotiateTimeout must be positive")
	}
	if c.MaxIncomingStreams == 0 {
		return errors.New("MaxIncomingStreams must be positive")
	}
	return nil
}

// WithListenAddr 设置监听地址
func WithListenAddr(addr string) ConfigOption {
	return func(c *Config) {
		c.ListenAddr = addr
	}
}

// WithNegotiateTimeout 设置协商超时
func WithNegotiateTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.NegotiateTimeout = d
	}
}

// WithMaxIncomingStreams 设置入站子流上限
func WithMaxIncomingStreams(n uint32) ConfigOption {
	return func(c *Config) {
		c.MaxIncomingStreams = n
	}
}

// Apply 应用配置选项
func (c *Config) Apply(opts ...ConfigOption) *Config {
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConfigFromUnified 从统一配置创建 Host 配置
func ConfigFromUnified(cfg *config.Config) *Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return &Config{
		ListenAddr:         cfg.Host.ListenAddr,
		ProtocolID:         cfg.Negotiation.ProtocolID,
		MaxMessageSize:     cfg.Negotiation.MaxMessageSize,
		NegotiateTimeout:   cfg.Negotiation.NegotiateTimeout.Duration(),
		MaxIncomingStreams: cfg.Host.MaxIncomingStreams,
	}
}
