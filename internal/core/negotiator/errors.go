package negotiator

import "errors"

// 协商错误定义
var (
	// ErrNotSupported 对端回复 na，流仍可继续协商
	ErrNotSupported = errors.New("negotiator: protocol not supported")

	// ErrUnexpectedResponse 响应内容不符合协议，流不可再协商
	ErrUnexpectedResponse = errors.New("negotiator: unexpected response")
)

// IsFatal 判断错误是否使整条流不可再协商
//
// 只有 ErrNotSupported 是可恢复的。
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrNotSupported)
}
