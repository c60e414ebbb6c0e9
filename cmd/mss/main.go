// Package main 提供 mss 命令行入口
//
// listen 模式在 TCP + yamux 上提供 /echo/1.0.0 与 /upper/1.0.0；
// dial 模式连接到对端，先 ls 再选择协议并发送一条消息。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-multistream"
	"github.com/dep2p/go-multistream/config"
	"github.com/dep2p/go-multistream/pkg/lib/log"
)

var logger = log.Logger("mss/cmd")

// 协议
const (
	protoEcho  multistream.ProtocolID = "/echo/1.0.0"
	protoUpper multistream.ProtocolID = "/upper/1.0.0"
)

var (
	// ─────────────────────────────────────────────────────────────────────
	// 运行参数
	// ─────────────────────────────────────────────────────────────────────
	mode        = flag.String("mode", "listen", "运行模式 (listen/dial)")
	configFile  = flag.String("config", "", "配置文件路径")
	listenAddr  = flag.String("listen", "", "监听地址，覆盖配置文件")
	metricsAddr = flag.String("metrics-addr", "", "Prometheus 指标地址（空 = 不启用）")

	// ─────────────────────────────────────────────────────────────────────
	// dial 模式
	// ─────────────────────────────────────────────────────────────────────
	peerAddr = flag.String("peer", "", "对端地址 host:port")
	protocol = flag.String("protocol", string(protoEcho), "要选择的协议")
	message  = flag.String("msg", "hello multistream", "发送的消息")
	timeout  = flag.Duration("timeout", 10*time.Second, "dial 模式总超时")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()
	log.SetupFromEnv()

	cfg, err := buildConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	switch *mode {
	case "listen":
		return runListen(cfg)
	case "dial":
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()
		return runDial(ctx, cfg, os.Stdout)
	default:
		return fmt.Errorf("未知模式: %s", *mode)
	}
}

// ============================================================================
//                              listen
// ============================================================================

func runListen(cfg *config.Config) error {
	var h *multistream.Host
	app := fx.New(
		multistream.Module(cfg),
		fx.NopLogger,
		fx.Invoke(registerProtocols),
		fx.Invoke(registerMetricsServer),
		fx.Populate(&h),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}

	fmt.Printf("监听地址: %s\n", h.Addr())
	fmt.Printf("协议: %v\n", h.Handlers())
	fmt.Println("按 Ctrl+C 退出")
	waitForSignal()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStop()
	return app.Stop(stopCtx)
}

func registerProtocols(h *multistream.Host) error {
	if err := h.SetStreamHandler(protoEcho, handleEcho); err != nil {
		return err
	}
	return h.SetStreamHandler(protoUpper, handleUpper)
}

func handleEcho(s multistream.Stream) {
	defer s.Close()
	n, err := io.Copy(s, s)
	if err != nil {
		logger.Warn("echo 失败", "err", err)
		return
	}
	_ = s.CloseWrite()
	logger.Info("echo 完成", "bytes", n)
}

func handleUpper(s multistream.Stream) {
	defer s.Close()
	data, err := io.ReadAll(s)
	if err != nil {
		logger.Warn("upper 读取失败", "err", err)
		return
	}
	if _, err := s.Write([]byte(strings.ToUpper(string(data)))); err != nil {
		logger.Warn("upper 写入失败", "err", err)
		return
	}
	_ = s.CloseWrite()
}

// registerMetricsServer 在 -metrics-addr 上暴露 /metrics
func registerMetricsServer(lc fx.Lifecycle, r *multistream.Reporter) {
	if *metricsAddr == "" || r == nil || r.Gatherer() == nil {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.Gatherer(), promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("指标服务失败", "err", err)
				}
			}()
			logger.Info("指标服务已启动", "addr", *metricsAddr)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

// waitForSignal 等待退出信号
func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}

// ============================================================================
//                              dial
// ============================================================================

func runDial(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if *peerAddr == "" {
		return errors.New("dial 模式需要 -peer")
	}

	h, err := multistream.NewHost(cfg, nil)
	if err != nil {
		return err
	}
	defer h.Close()

	ids, err := h.ListProtocols(ctx, *peerAddr)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "对端协议: %v\n", ids)

	s, err := h.NewStream(ctx, *peerAddr, multistream.ProtocolID(*protocol))
	if err != nil {
		return err
	}
	defer s.Close()

	var g errgroup.Group
	g.Go(func() error {
		if _, err := io.WriteString(s, *message); err != nil {
			return err
		}
		return s.CloseWrite()
	})
	reply, err := io.ReadAll(s)
	if err != nil {
		return err
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s -> %s\n", *protocol, reply)
	return nil
}
