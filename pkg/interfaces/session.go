package interfaces

import (
	"context"

	"github.com/dep2p/go-multistream/pkg/types"
)

// Session 单条流上的协商会话
//
// 同一能力集有 Listener 和 Dialer 两种实现，角色在构造时确定。
// 对错误角色调用操作返回 ErrRoleViolation，且不会写出任何字节。
type Session interface {
	// ID 返回会话标识（仅用于日志与诊断）
	ID() string

	// Role 返回会话角色
	Role() types.Role

	// Ready 阻塞直到握手确认或失败
	Ready(ctx context.Context) error

	// AddHandler 注册协议处理器（仅 Listener）
	AddHandler(id types.ProtocolID, handler StreamHandler) error

	// Select 请求对端使用指定协议（仅 Dialer）
	//
	// 成功时返回原始流，协商层随即退出。
	Select(ctx context.Context, id types.ProtocolID) (Stream, error)

	// Ls 列出对端注册的协议，顺序与对端注册顺序一致（仅 Dialer）
	Ls(ctx context.Context) ([]types.ProtocolID, error)

	// Done 协商结束（移交或致命错误）时关闭
	Done() <-chan struct{}

	// Protocol 返回已接受的协议，未完成时为空
	Protocol() types.ProtocolID

	// Err 返回使会话失效的错误
	Err() error

	// Close 关闭底层流；已移交的流不受影响
	Close() error
}
