package codec

import "errors"

// 编解码错误定义
var (
	// ErrFraming 帧格式错误（长度前缀非法或帧体被截断）
	ErrFraming = errors.New("codec: malformed frame")

	// ErrMessageTooLong 消息超过帧长度上限
	ErrMessageTooLong = errors.New("codec: message too long")

	// ErrTerminator 读到零长度结束帧
	ErrTerminator = errors.New("codec: terminator frame")
)
