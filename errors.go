package multistream

import (
	"errors"

	"github.com/dep2p/go-multistream/internal/core/codec"
	"github.com/dep2p/go-multistream/internal/core/handshake"
	"github.com/dep2p/go-multistream/internal/core/host"
	"github.com/dep2p/go-multistream/internal/core/negotiator"
	"github.com/dep2p/go-multistream/internal/core/session"
	"github.com/dep2p/go-multistream/pkg/types"
)

// 公共错误定义，均可用 errors.Is 匹配
var (
	// ────────────────────────────────────────────────────────────────────────
	// 握手与帧
	// ────────────────────────────────────────────────────────────────────────

	// ErrHandshakeMismatch 对端握手标识与本端不一致
	ErrHandshakeMismatch = handshake.ErrMismatch

	// ErrFraming 帧格式错误或流在帧中途结束
	ErrFraming = codec.ErrFraming

	// ErrMessageTooLong 帧体超过上限
	ErrMessageTooLong = codec.ErrMessageTooLong

	// ────────────────────────────────────────────────────────────────────────
	// 调用错误（同步返回，不产生 I/O）
	// ────────────────────────────────────────────────────────────────────────

	// ErrRoleViolation 当前角色不允许该操作
	ErrRoleViolation = session.ErrRoleViolation

	// ErrInvalidHandler 处理器为 nil
	ErrInvalidHandler = session.ErrInvalidHandler

	// ErrInvalidProtocolID 协议 ID 无效
	ErrInvalidProtocolID = types.ErrInvalidProtocolID

	// ────────────────────────────────────────────────────────────────────────
	// 协商结果
	// ────────────────────────────────────────────────────────────────────────

	// ErrProtocolNotSupported 对端回复 na，流仍可用
	ErrProtocolNotSupported = negotiator.ErrNotSupported

	// ErrUnexpectedResponse 对端响应不符合协议，会话失效
	ErrUnexpectedResponse = negotiator.ErrUnexpectedResponse

	// ErrSessionClosed 会话已失效
	ErrSessionClosed = session.ErrSessionClosed

	// ErrNegotiated 流已移交给协议处理器
	ErrNegotiated = session.ErrNegotiated

	// ────────────────────────────────────────────────────────────────────────
	// 主机
	// ────────────────────────────────────────────────────────────────────────

	// ErrHostClosed 主机已关闭
	ErrHostClosed = host.ErrHostClosed
)

// IsFatal 报告 err 是否使会话失效
//
// na 与调用错误不致命，其余线路错误都致命。
func IsFatal(err error) bool {
	switch {
	case err == nil,
		errors.Is(err, ErrRoleViolation),
		errors.Is(err, ErrInvalidHandler),
		errors.Is(err, ErrInvalidProtocolID):
		return false
	}
	return negotiator.IsFatal(err)
}
