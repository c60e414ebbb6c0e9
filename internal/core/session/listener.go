package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dep2p/go-multistream/internal/core/negotiator"
	"github.com/dep2p/go-multistream/internal/core/registry"
	"github.com/dep2p/go-multistream/pkg/interfaces"
	"github.com/dep2p/go-multistream/pkg/types"
)

// Listener 监听方会话
type Listener struct {
	*base
	registry *registry.Registry
}

var _ interfaces.Session = (*Listener)(nil)

// NewListener 创建监听方会话并立即开始握手
//
// 握手确认后协商循环自动启动；处理器可以在任何时候注册，
// 只要早于对端相应请求的到达即可被选中。
func NewListener(stream interfaces.Stream, opts ...Option) *Listener {
	l := &Listener{
		base:     newBase(stream, types.RoleListener, opts),
		registry: registry.New(),
	}
	l.startHandshake(l.serve)
	return l
}

// AddHandler 注册协议处理器
//
// 重复注册同一协议时替换处理器并保留其在 ls 列表中的位置。
// 只修改注册表，不写任何字节。
func (l *Listener) AddHandler(id types.ProtocolID, handler interfaces.StreamHandler) error {
	if handler == nil {
		return fmt.Errorf("%w: %s", ErrInvalidHandler, id)
	}
	if err := id.Validate(l.opts.maxSize); err != nil {
		return err
	}

	replaced := l.registry.Add(id, handler)
	logger.Debug("注册协议处理器", "session", l.id, "protocol", id, "replaced", replaced)
	return nil
}

// Handlers 按注册顺序返回已注册协议
func (l *Listener) Handlers() []types.ProtocolID {
	return l.registry.IDs()
}

// Select 监听方不能发起选择
func (l *Listener) Select(context.Context, types.ProtocolID) (interfaces.Stream, error) {
	return nil, l.roleViolation("select")
}

// Ls 监听方不能发起 ls
func (l *Listener) Ls(context.Context) ([]types.ProtocolID, error) {
	return nil, l.roleViolation("ls")
}

// serve 协商循环，命中协议后在当前 goroutine 中调用处理器
func (l *Listener) serve() {
	neg := negotiator.NewListener(l.registry, l.opts.maxSize, l.observe)

	id, handler, err := neg.Serve(l.stream)
	if err != nil {
		if !l.finish("", err) {
			return
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
			logger.Debug("对端关闭，协商循环结束", "session", l.id)
		} else {
			logger.Warn("协商循环失败", "session", l.id, "err", err)
		}
		return
	}

	if !l.finish(id, nil) {
		return
	}
	logger.Debug("移交协议处理器", "session", l.id, "protocol", id)
	handler(l.stream)
}

func (l *Listener) observe(ev negotiator.Event, id types.ProtocolID) {
	switch ev {
	case negotiator.EventList:
		l.opts.reporter.List(types.RoleListener)
		logger.Debug("响应 ls", "session", l.id)
	case negotiator.EventReject:
		l.opts.reporter.Negotiation(types.RoleListener, negotiator.ErrNotSupported)
		logger.Debug("拒绝入站协议", "session", l.id, "protocol", id)
	case negotiator.EventAccept:
		l.opts.reporter.Negotiation(types.RoleListener, nil)
		logger.Debug("接受入站协议", "session", l.id, "protocol", id)
	}
}
