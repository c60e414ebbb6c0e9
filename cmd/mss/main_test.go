package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-multistream"
	"github.com/dep2p/go-multistream/config"
)

// TestBuildConfig 环境变量与命令行覆盖默认值
func TestBuildConfig(t *testing.T) {
	t.Setenv("MSS_NEGOTIATE_TIMEOUT", "3s")
	*listenAddr = "127.0.0.1:4555"
	defer func() { *listenAddr = "" }()

	cfg, err := buildConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:4555", cfg.Host.ListenAddr)
	assert.Equal(t, 3*time.Second, cfg.Negotiation.NegotiateTimeout.Duration())
}

// TestRunDial dial 模式完成 ls 与 upper 选择
func TestRunDial(t *testing.T) {
	server, err := multistream.NewHost(nil, nil)
	require.NoError(t, err)
	defer server.Close()
	require.NoError(t, registerProtocols(server))
	require.NoError(t, server.Start(context.Background()))

	*peerAddr = server.Addr().String()
	*protocol = string(protoUpper)
	*message = "banana"
	defer func() { *peerAddr = "" }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, runDial(ctx, config.NewConfig(), &out))
	assert.Contains(t, out.String(), "[/echo/1.0.0 /upper/1.0.0]")
	assert.Contains(t, out.String(), "/upper/1.0.0 -> BANANA")

	t.Log("✅ dial 模式成功")
}
