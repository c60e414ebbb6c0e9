package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dep2p/go-multistream/internal/core/handshake"
	"github.com/dep2p/go-multistream/pkg/interfaces"
	"github.com/dep2p/go-multistream/pkg/lib/log"
	"github.com/dep2p/go-multistream/pkg/types"
)

var logger = log.Logger("core/session")

// New 按角色创建会话
//
// role 零值为 RoleDialer。
func New(stream interfaces.Stream, role types.Role, opts ...Option) interfaces.Session {
	if role.IsListener() {
		return NewListener(stream, opts...)
	}
	return NewDialer(stream, opts...)
}

// ============================================================================
//                              base
// ============================================================================

// base 两种角色共享的握手与生命周期状态
type base struct {
	id      string
	role    types.Role
	stream  interfaces.Stream
	opts    options
	engine  *handshake.Engine
	started time.Time

	ready chan struct{}
	hsErr error // close(ready) 之前写入

	done     chan struct{}
	mu       sync.Mutex
	finished bool
	protocol types.ProtocolID
	err      error
}

func newBase(stream interfaces.Stream, role types.Role, opts []Option) *base {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	b := &base{
		id:     uuid.NewString(),
		role:   role,
		stream: stream,
		opts:   o,
		engine: handshake.NewEngine(o.protocolID, o.maxSize),
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}
	b.opts.reporter.SessionOpened()
	b.started = b.opts.reporter.Now()
	return b
}

// startHandshake 异步运行握手，确认后调用 onConfirmed
func (b *base) startHandshake(onConfirmed func()) {
	go func() {
		err := b.engine.Run(b.stream)
		b.hsErr = err
		b.opts.reporter.Handshake(err)
		close(b.ready)

		if err != nil {
			logger.Warn("握手失败", "session", b.id, "role", b.role, "err", err)
			b.finish("", err)
		} else {
			logger.Debug("握手完成", "session", b.id, "role", b.role)
		}

		if b.opts.readyCb != nil {
			b.opts.readyCb(err)
		}
		if err == nil && onConfirmed != nil {
			onConfirmed()
		}
	}()
}

// ID 返回会话标识
func (b *base) ID() string {
	return b.id
}

// Role 返回会话角色
func (b *base) Role() types.Role {
	return b.role
}

// HandshakeState 返回握手状态
func (b *base) HandshakeState() handshake.State {
	return b.engine.State()
}

// Ready 阻塞直到握手确认或失败
func (b *base) Ready(ctx context.Context) error {
	select {
	case <-b.ready:
		return b.hsErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done 协商结束时关闭
func (b *base) Done() <-chan struct{} {
	return b.done
}

// Protocol 返回已接受的协议
func (b *base) Protocol() types.ProtocolID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.protocol
}

// Err 返回使会话失效的错误
func (b *base) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Close 关闭底层流
//
// 流已移交给处理器时不做任何事。
func (b *base) Close() error {
	b.mu.Lock()
	handedOff := b.finished && b.protocol != ""
	b.mu.Unlock()
	if handedOff {
		return nil
	}

	b.finish("", ErrSessionClosed)
	return b.stream.Close()
}

// finish 记录协商结束，只有第一次调用生效
func (b *base) finish(protocol types.ProtocolID, err error) bool {
	b.mu.Lock()
	if b.finished {
		b.mu.Unlock()
		return false
	}
	b.finished = true
	b.protocol = protocol
	b.err = err
	close(b.done)
	b.mu.Unlock()

	b.opts.reporter.SessionFinished(b.role, b.started, protocol)
	return true
}

// finishedErr 会话结束后新调用应返回的错误，未结束时为 nil
func (b *base) finishedErr() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case !b.finished:
		return nil
	case b.protocol != "":
		return fmt.Errorf("%w: %s", ErrNegotiated, b.protocol)
	case errors.Is(b.err, ErrSessionClosed):
		return b.err
	default:
		return fmt.Errorf("%w: %w", ErrSessionClosed, b.err)
	}
}

func (b *base) roleViolation(op string) error {
	return fmt.Errorf("%w: %s cannot %s", ErrRoleViolation, b.role, op)
}
