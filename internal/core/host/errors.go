package host

import "errors"

// Host 错误定义
var (
	// ErrHostClosed 主机已关闭
	ErrHostClosed = errors.New("host: closed")

	// ErrNotStarted 主机尚未开始监听
	ErrNotStarted = errors.New("host: not started")

	// ErrAlreadyStarted 主机已经在监听
	ErrAlreadyStarted = errors.New("host: already started")
)
