package session

import "errors"

// 会话错误定义
var (
	// ErrRoleViolation 当前角色不允许该操作
	ErrRoleViolation = errors.New("session: operation not permitted for role")

	// ErrInvalidHandler 处理器不可调用
	ErrInvalidHandler = errors.New("session: handler must not be nil")

	// ErrSessionClosed 会话已失效
	ErrSessionClosed = errors.New("session: closed")

	// ErrNegotiated 流已移交给协议处理器
	ErrNegotiated = errors.New("session: stream already handed off")
)
