package multistream

import (
	"github.com/dep2p/go-multistream/internal/core/session"
	"github.com/dep2p/go-multistream/pkg/interfaces"
	"github.com/dep2p/go-multistream/pkg/types"
)

// 公共类型
type (
	// Stream 可协商的有序双工字节流
	Stream = interfaces.Stream

	// StreamHandler 协议处理器，接管协商后的流
	StreamHandler = interfaces.StreamHandler

	// Session 协商会话
	Session = interfaces.Session

	// ProtocolID 协议标识
	ProtocolID = types.ProtocolID

	// Role 会话角色
	Role = types.Role

	// Listener 监听方会话
	Listener = session.Listener

	// Dialer 拨号方会话
	Dialer = session.Dialer
)

// 角色常量，零值为 RoleDialer
const (
	RoleDialer   = types.RoleDialer
	RoleListener = types.RoleListener
)

// New 按角色在 stream 上创建会话并开始握手
func New(stream Stream, role Role, opts ...Option) Session {
	return session.New(stream, role, sessionOptions(opts)...)
}

// NewListener 创建监听方会话
func NewListener(stream Stream, opts ...Option) *Listener {
	return session.NewListener(stream, sessionOptions(opts)...)
}

// NewDialer 创建拨号方会话
func NewDialer(stream Stream, opts ...Option) *Dialer {
	return session.NewDialer(stream, sessionOptions(opts)...)
}
