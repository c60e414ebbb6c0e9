package session

import (
	"context"
	"fmt"

	"github.com/dep2p/go-multistream/internal/core/negotiator"
	"github.com/dep2p/go-multistream/pkg/interfaces"
	"github.com/dep2p/go-multistream/pkg/types"
)

// Dialer 拨号方会话
type Dialer struct {
	*base
	neg *negotiator.Dialer

	// pending 容量为 1 的挂起槽，持有者独占线路上的请求/响应
	pending chan struct{}
}

var _ interfaces.Session = (*Dialer)(nil)

// NewDialer 创建拨号方会话并立即开始握手
func NewDialer(stream interfaces.Stream, opts ...Option) *Dialer {
	d := &Dialer{
		base:    newBase(stream, types.RoleDialer, opts),
		pending: make(chan struct{}, 1),
	}
	d.neg = negotiator.NewDialer(d.opts.maxSize)
	d.startHandshake(nil)
	return d
}

// AddHandler 拨号方不能注册处理器
func (d *Dialer) AddHandler(types.ProtocolID, interfaces.StreamHandler) error {
	return d.roleViolation("add handler")
}

// Select 请求对端使用指定协议
//
// 成功时返回原始流，会话随即结束，不再读写协商帧。
// 返回 ErrNotSupported 时流仍可继续 Select / Ls。
func (d *Dialer) Select(ctx context.Context, id types.ProtocolID) (interfaces.Stream, error) {
	if err := id.Validate(d.opts.maxSize); err != nil {
		return nil, err
	}

	err := d.do(ctx, func() error {
		err := d.neg.Select(d.stream, id)
		d.opts.reporter.Negotiation(types.RoleDialer, err)
		if err != nil {
			return err
		}
		if !d.finish(id, nil) {
			return d.finishedErr()
		}
		return nil
	})
	if err != nil {
		logger.Debug("选择协议失败", "session", d.id, "protocol", id, "err", err)
		return nil, err
	}

	logger.Debug("协议已选定", "session", d.id, "protocol", id)
	return d.stream, nil
}

// Ls 列出对端注册的协议
func (d *Dialer) Ls(ctx context.Context) ([]types.ProtocolID, error) {
	var ids []types.ProtocolID
	err := d.do(ctx, func() error {
		var err error
		ids, err = d.neg.List(d.stream)
		d.opts.reporter.List(types.RoleDialer)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// do 在挂起槽内执行一次线路请求
//
// 排队期间 ctx 取消只返回 ctx.Err()；请求已上线路时 ctx 取消会关闭流
// 并使会话失效，因为线路位置已无法确定。
func (d *Dialer) do(ctx context.Context, fn func() error) error {
	if err := d.Ready(ctx); err != nil {
		return err
	}

	select {
	case d.pending <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		return d.finishedErr()
	}
	defer func() { <-d.pending }()

	if err := d.finishedErr(); err != nil {
		return err
	}

	result := make(chan error, 1)
	go func() { result <- fn() }()

	select {
	case err := <-result:
		if negotiator.IsFatal(err) && d.finish("", err) {
			logger.Warn("会话失效", "session", d.id, "err", err)
		}
		return err
	case <-ctx.Done():
		err := ctx.Err()
		if d.finish("", fmt.Errorf("request abandoned: %w", err)) {
			logger.Warn("请求中途取消，关闭流", "session", d.id, "err", err)
		}
		_ = d.stream.Close()
		return err
	}
}
