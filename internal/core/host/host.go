package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	tec "github.com/jbenet/go-temp-err-catcher"
	"github.com/libp2p/go-yamux/v5"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-multistream/internal/core/metrics"
	"github.com/dep2p/go-multistream/internal/core/registry"
	"github.com/dep2p/go-multistream/internal/core/session"
	"github.com/dep2p/go-multistream/pkg/interfaces"
	"github.com/dep2p/go-multistream/pkg/lib/log"
	"github.com/dep2p/go-multistream/pkg/types"
)

var logger = log.Logger("core/host")

// Host TCP + yamux 主机
type Host struct {
	ctx       context.Context
	ctxCancel context.CancelFunc

	config   *Config
	reporter *metrics.Reporter
	yamuxCfg *yamux.Config

	// handlers 主机级处理器表，每个入站子流复制一份
	handlers *registry.Registry

	mu       sync.Mutex
	listener net.Listener
	inbound  map[*yamux.Session]struct{}
	outbound map[string]*yamux.Session

	group   errgroup.Group
	started atomic.Bool
	closed  atomic.Bool
}

// Option Host 构造选项类型
type Option func(*Host) error

// WithConfig 设置配置
func WithConfig(cfg *Config) Option {
	return func(h *Host) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		h.config = cfg
		return nil
	}
}

// WithMetrics 设置指标记录器
func WithMetrics(r *metrics.Reporter) Option {
	return func(h *Host) error {
		h.reporter = r
		return nil
	}
}

// New 创建新的 Host
func New(opts ...Option) (*Host, error) {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Host{
		ctx:       ctx,
		ctxCancel: cancel,
		config:    DefaultConfig(),
		handlers:  registry.New(),
		inbound:   make(map[*yamux.Session]struct{}),
		outbound:  make(map[string]*yamux.Session),
	}

	for _, opt := range opts {
		if err := opt(h); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	if err := h.config.Validate(); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid host config: %w", err)
	}

	ycfg := yamux.DefaultConfig()
	ycfg.LogOutput = io.Discard
	ycfg.MaxIncomingStreams = h.config.MaxIncomingStreams
	h.yamuxCfg = ycfg

	return h, nil
}

// SetStreamHandler 注册协议处理器
//
// 只影响之后到达的子流；重复注册替换处理器并保留顺序。
func (h *Host) SetStreamHandler(id types.ProtocolID, handler interfaces.StreamHandler) error {
	if handler == nil {
		return fmt.Errorf("%w: %s", session.ErrInvalidHandler, id)
	}
	if err := id.Validate(h.config.MaxMessageSize); err != nil {
		return err
	}
	h.handlers.Add(id, handler)
	logger.Debug("注册主机协议处理器", "protocol", id)
	return nil
}

// Handlers 按注册顺序返回主机协议
func (h *Host) Handlers() []types.ProtocolID {
	return h.handlers.IDs()
}

// Addr 返回实际监听地址，未启动时为 nil
func (h *Host) Addr() net.Addr {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener == nil {
		return nil
	}
	return h.listener.Addr()
}

// Start 开始监听并接受入站连接
func (h *Host) Start(ctx context.Context) error {
	if h.closed.Load() {
		return ErrHostClosed
	}
	if !h.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", h.config.ListenAddr)
	if err != nil {
		h.started.Store(false)
		return fmt.Errorf("listen %s: %w", h.config.ListenAddr, err)
	}

	h.mu.Lock()
	h.listener = ln
	h.mu.Unlock()

	h.group.Go(func() error { return h.acceptLoop(ln) })
	logger.Info("主机开始监听", "addr", ln.Addr().String())
	return nil
}

// NewStream 打开到 addr 的子流并协商 id
//
// 成功时返回的流已移交，直接承载应用数据。
func (h *Host) NewStream(ctx context.Context, addr string, id types.ProtocolID) (interfaces.Stream, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.NegotiateTimeout)
	defer cancel()

	d, err := h.openDialer(ctx, addr)
	if err != nil {
		return nil, err
	}

	s, err := d.Select(ctx, id)
	if err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("select %s on %s: %w", id, addr, err)
	}
	return s, nil
}

// ListProtocols 列出 addr 上主机注册的协议
func (h *Host) ListProtocols(ctx context.Context, addr string) ([]types.ProtocolID, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.NegotiateTimeout)
	defer cancel()

	d, err := h.openDialer(ctx, addr)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	ids, err := d.Ls(ctx)
	if err != nil {
		return nil, fmt.Errorf("ls on %s: %w", addr, err)
	}
	return ids, nil
}

func (h *Host) openDialer(ctx context.Context, addr string) (*session.Dialer, error) {
	if h.closed.Load() {
		return nil, ErrHostClosed
	}

	ysess, err := h.clientSession(ctx, addr)
	if err != nil {
		return nil, err
	}
	s, err := ysess.OpenStream(ctx)
	if err != nil {
		return nil, fmt.Errorf("open stream to %s: %w", addr, err)
	}
	return session.NewDialer(s, h.sessionOptions()...), nil
}

// clientSession 复用或建立到 addr 的 yamux 客户端会话
func (h *Host) clientSession(ctx context.Context, addr string) (*yamux.Session, error) {
	h.mu.Lock()
	if ysess, ok := h.outbound[addr]; ok && !ysess.IsClosed() {
		h.mu.Unlock()
		return ysess, nil
	}
	h.mu.Unlock()

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	ysess, err := yamux.Client(conn, h.yamuxCfg, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("yamux client %s: %w", addr, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed.Load() {
		_ = ysess.Close()
		return nil, ErrHostClosed
	}
	// 并发拨号时保留先建立的会话
	if existing, ok := h.outbound[addr]; ok && !existing.IsClosed() {
		_ = ysess.Close()
		return existing, nil
	}
	h.outbound[addr] = ysess
	logger.Debug("建立出站连接", "addr", addr)
	return ysess, nil
}

func (h *Host) sessionOptions() []session.Option {
	return []session.Option{
		session.WithProtocolID(h.config.ProtocolID),
		session.WithMaxMessageSize(h.config.MaxMessageSize),
		session.WithMetrics(h.reporter),
	}
}

// ============================================================================
//                              入站
// ============================================================================

func (h *Host) acceptLoop(ln net.Listener) error {
	var catcher tec.TempErrCatcher
	for {
		conn, err := ln.Accept()
		if err != nil {
			if h.closed.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			if catcher.IsTemporary(err) {
				logger.Warn("接受连接临时失败", "err", err)
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		catcher.Reset()

		ysess, err := yamux.Server(conn, h.yamuxCfg, nil)
		if err != nil {
			logger.Warn("建立 yamux 会话失败", "remote", conn.RemoteAddr().String(), "err", err)
			_ = conn.Close()
			continue
		}
		if !h.trackInbound(ysess) {
			_ = ysess.Close()
			return nil
		}
		h.group.Go(func() error {
			h.serveConn(ysess)
			return nil
		})
	}
}

func (h *Host) trackInbound(ysess *yamux.Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed.Load() {
		return false
	}
	h.inbound[ysess] = struct{}{}
	return true
}

func (h *Host) serveConn(ysess *yamux.Session) {
	remote := ysess.RemoteAddr().String()
	logger.Debug("接受入站连接", "remote", remote)
	defer func() {
		h.mu.Lock()
		delete(h.inbound, ysess)
		h.mu.Unlock()
		_ = ysess.Close()
	}()

	for {
		s, err := ysess.AcceptStream()
		if err != nil {
			logger.Debug("入站连接结束", "remote", remote, "err", err)
			return
		}
		h.handleInbound(s)
	}
}

// handleInbound 为入站子流创建监听方会话
func (h *Host) handleInbound(s *yamux.Stream) {
	l := session.NewListener(s, h.sessionOptions()...)
	for _, e := range h.handlers.Entries() {
		if err := l.AddHandler(e.ID, e.Handler); err != nil {
			logger.Warn("复制协议处理器失败", "protocol", e.ID, "err", err)
		}
	}

	go func() {
		timer := time.NewTimer(h.config.NegotiateTimeout)
		defer timer.Stop()

		select {
		case <-l.Done():
			if l.Err() != nil {
				_ = l.Close()
			}
		case <-timer.C:
			logger.Debug("入站协商超时", "session", l.ID())
			_ = l.Close()
		case <-h.ctx.Done():
			_ = l.Close()
		}
	}()
}

// Close 关闭监听器与全部连接
func (h *Host) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	h.ctxCancel()

	var err error
	h.mu.Lock()
	if h.listener != nil {
		err = multierr.Append(err, h.listener.Close())
	}
	for ysess := range h.inbound {
		err = multierr.Append(err, ysess.Close())
	}
	for addr, ysess := range h.outbound {
		err = multierr.Append(err, ysess.Close())
		delete(h.outbound, addr)
	}
	h.mu.Unlock()

	err = multierr.Append(err, h.group.Wait())
	logger.Info("主机已关闭")
	return err
}
