// Package host 在 TCP + yamux 之上承载 multistream 协商
//
// 每条入站 TCP 连接建立一个 yamux 服务端会话，每个入站子流都创建一个
// 监听方协商会话，主机的处理器表按注册顺序复制进去。出站方向
// NewStream 复用到同一地址的 yamux 客户端会话，打开子流后作为拨号方
// 选择协议，成功时把子流原样交给调用方。
//
// 使用示例：
//
//	h, _ := host.New(host.WithConfig(host.DefaultConfig()))
//	_ = h.SetStreamHandler("/echo/1.0.0", func(s interfaces.Stream) {
//	    _, _ = io.Copy(s, s)
//	    _ = s.CloseWrite()
//	})
//	_ = h.Start(ctx)
//
//	s, _ := other.NewStream(ctx, h.Addr().String(), "/echo/1.0.0")
//
// 协商超时：入站子流在超时前未完成协商即被关闭；出站调用以
// context.WithTimeout 限制整个拨号与选择过程。
package host
