// Package interfaces 定义 go-multistream 公共接口
//
// 本文件定义协商层消费的双向流接口。
package interfaces

import "io"

// Stream 双向字节流
//
// 可以是 TCP 连接、多路复用子流或任意双工管道。协商完成后原样交给处理器，
// 协商层不再附加任何语义。
type Stream interface {
	io.Reader
	io.Writer
	io.Closer

	// CloseWrite 半关闭写方向，对端读到 EOF
	CloseWrite() error
}

// StreamHandler 协议处理函数
//
// 协议被接受后以原始流调用，处理器负责流的后续生命周期。
type StreamHandler func(stream Stream)
