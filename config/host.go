package config

import (
	"errors"
	"net"
)

// HostConfig 主机配置
type HostConfig struct {
	// ListenAddr TCP 监听地址
	ListenAddr string `json:"listen_addr"`

	// MaxIncomingStreams 单条连接允许的入站子流上限
	MaxIncomingStreams uint32 `json:"max_incoming_streams"`
}

// DefaultHostConfig 返回默认主机配置
func DefaultHostConfig() HostConfig {
	return HostConfig{
		ListenAddr:         "127.0.0.1:0",
		MaxIncomingStreams: 1000,
	}
}

// Validate 验证主机配置
func (c HostConfig) Validate() error {
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return err
	}
	if c.MaxIncomingStreams == 0 {
		return errors.New("max_incoming_streams must be positive")
	}
	return nil
}
