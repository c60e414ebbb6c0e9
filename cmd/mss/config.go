package main

import (
	"github.com/dep2p/go-multistream/config"
)

// ============================================================================
//                              配置加载（CLI 专用）
// ============================================================================

// buildConfig 构建配置
//
// 优先级（从高到低）：命令行参数、MSS_ 环境变量、配置文件、默认值。
func buildConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	config.ApplyEnv(cfg)

	if *listenAddr != "" {
		cfg.Host.ListenAddr = *listenAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
