package config

import (
	"os"
	"strconv"
	"time"
)

// 环境变量名（均使用 MSS_ 前缀）
const (
	EnvPrefix           = "MSS_"
	EnvProtocolID       = "PROTOCOL_ID"
	EnvMaxMessageSize   = "MAX_MESSAGE_SIZE"
	EnvNegotiateTimeout = "NEGOTIATE_TIMEOUT"
	EnvListenAddr       = "LISTEN_ADDR"
	EnvMetricsEnabled   = "METRICS_ENABLED"
)

// ApplyEnv 应用环境变量覆盖配置
//
// 环境变量优先级高于配置文件，但低于命令行参数。
// 无法解析的值被忽略。
func ApplyEnv(cfg *Config) {
	if cfg == nil {
		return
	}

	if v := os.Getenv(EnvPrefix + EnvProtocolID); v != "" {
		cfg.Negotiation.ProtocolID = v
	}
	if v := os.Getenv(EnvPrefix + EnvMaxMessageSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Negotiation.MaxMessageSize = n
		}
	}
	if v := os.Getenv(EnvPrefix + EnvNegotiateTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Negotiation.NegotiateTimeout = Duration(d)
		}
	}
	if v := os.Getenv(EnvPrefix + EnvListenAddr); v != "" {
		cfg.Host.ListenAddr = v
	}
	if v := os.Getenv(EnvPrefix + EnvMetricsEnabled); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
}
