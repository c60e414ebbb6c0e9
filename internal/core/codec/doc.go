// Package codec 实现 multistream-select 的长度前缀行编解码
//
// # 帧格式
//
//	<uvarint 长度><UTF-8 字节>\n
//
// 长度包含结尾换行符，因此任何编码后的消息帧体至少 1 字节。
// 长度为 0 的帧（单字节 0x00）保留为 ls 响应的结束符，
// ReadMessage 读到它时返回 ErrTerminator。
//
// # 读取约束
//
// 读取端逐字节解析长度前缀，再精确读取帧体，绝不越过帧边界预读。
// 协商完成后原始流会交给应用处理器，预读的字节将无法归还。
//
// 本编解码器只用于协商消息（握手标识、ls、select、na 以及 ls 响应），
// 协议选定之后的应用数据不经过本包。
package codec
