// Package negotiator 实现 multistream-select 的协商状态机
//
// 握手确认之后，双方使用同一组帧词汇：
//
//	ls            拨号方请求列出协议
//	<protocolID>  拨号方的选择请求，或监听方的接受回显
//	na            监听方不支持所请求的协议
//
// # 监听方
//
// Listener.Serve 逐帧读取请求并串行处理：ls 写回按注册顺序排列的协议列表
// （每个协议单独成帧，最后跟一个零长度结束帧）；命中注册表时回显协议 ID
// 并返回处理器，协商循环随之结束；未命中时回复 na 并继续等待。
//
// # 拨号方
//
// Dialer.Select 写出协议 ID 并读取一帧响应：回显即成功；na 返回
// ErrNotSupported，流仍可继续协商；其他内容或读失败是致命错误。
// Dialer.List 写出 ls 并读取到结束帧为止。
//
// 线路上没有关联 ID，响应只按到达顺序匹配，调用方必须保证同一时刻
// 最多一个未完成请求。
package negotiator
