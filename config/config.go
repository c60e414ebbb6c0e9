// Package config 提供统一的配置管理
//
// 主 Config 结构体按功能嵌入子配置，每个子配置在独立文件中定义：
//   - Negotiation: 协商层（握手标识、帧上限、协商超时）
//   - Host: TCP + yamux 主机
//   - Metrics: Prometheus 指标
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Host.ListenAddr = "127.0.0.1:4001"
//
//	// 从 JSON 文件加载，再应用 MSS_ 前缀的环境变量
//	cfg, err := config.LoadFile("mss.json")
//	config.ApplyEnv(cfg)
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Config 是 go-multistream 的完整配置结构
type Config struct {
	// Negotiation 协商层配置
	Negotiation NegotiationConfig `json:"negotiation"`

	// Host 主机配置
	Host HostConfig `json:"host"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Negotiation: DefaultNegotiationConfig(),
		Host:        DefaultHostConfig(),
		Metrics:     DefaultMetricsConfig(),
	}
}

// Validate 递归验证所有子配置
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.Negotiation.Validate(); err != nil {
		return fmt.Errorf("negotiation: %w", err)
	}
	if err := c.Host.Validate(); err != nil {
		return fmt.Errorf("host: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}

// FromJSON 从 JSON 解析配置
//
// 未出现的字段保留默认值。
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的配置文件路径是预期行为
	if err != nil {
		return nil, err
	}
	return FromJSON(data)
}

// ToJSON 序列化配置
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
