// Package session 实现单条流上的协商会话
//
// 会话在构造时确定角色，之后不可切换：
//   - Listener: 持有有序注册表，握手确认后运行协商循环，命中协议时把
//     原始流交给对应处理器
//   - Dialer: 通过 Select / Ls 发起请求；请求经由容量为 1 的挂起槽串行化，
//     并发调用按获取槽的顺序排队
//
// 构造不阻塞，握手在独立 goroutine 中运行。Ready 等待握手结果，
// WithReadyCallback 注册的回调恰好触发一次。
//
// 错误传播：
//   - 角色错误、无效处理器、无效协议 ID 只拒绝本次调用，不写任何字节
//   - ErrNotSupported（对端回复 na）不影响会话
//   - 握手失败、帧错误、意外响应、请求中途取消会使会话失效，之后的所有
//     调用都返回包装了原因的 ErrSessionClosed
package session
