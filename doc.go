// Package multistream 实现 multistream-select 协议协商
//
// 连接的两端在同一条有序双工字节流上先交换 /multistream/1.0.0 握手，
// 随后由拨号方（Dialer）请求协议、由监听方（Listener）接受或回复 na。
// 一旦接受，流原样交给协议处理器，协商层不再读写任何字节。
//
// # 帧格式
//
//	uvarint(len(msg)+1) || msg || '\n'
//
// ls 的响应是每个协议 ID 各一帧，最后跟一个零长度帧（单字节 0x00）。
//
// # 快速开始
//
//	// 监听方
//	l := multistream.NewListener(stream)
//	_ = l.AddHandler("/echo/1.0.0", func(s multistream.Stream) {
//	    _, _ = io.Copy(s, s)
//	    _ = s.CloseWrite()
//	})
//
//	// 拨号方
//	d := multistream.NewDialer(stream)
//	s, err := d.Select(ctx, "/echo/1.0.0")
//	if errors.Is(err, multistream.ErrProtocolNotSupported) {
//	    // 流仍可继续 Select / Ls
//	}
//
// 会话构造不阻塞，握手在后台运行；两端可以按任意顺序构造。
// Ready(ctx) 等待握手结果，WithReadyCallback 在结果出来时恰好回调一次。
//
// # 主机
//
// Host 在 TCP + yamux 之上为每个入站子流创建监听方会话，
// NewStream 打开出站子流并完成选择。Module() 以 Fx 方式提供配置、
// 指标与主机，并注册启动/停止钩子。
package multistream
