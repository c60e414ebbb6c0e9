// Package interfaces 定义 go-multistream 的公共接口
//
// # 文件组织
//
//   - stream.go  - 双向字节流与流处理器
//   - session.go - 协商会话能力集
//
// 接口只描述协作方边界：底层传输提供 Stream，应用代码提供 StreamHandler，
// 协商层通过 Session 暴露 AddHandler / Select / Ls。
package interfaces
