// Package metrics 提供协商层 Prometheus 指标
//
// # 指标
//
//	<ns>_handshakes_total{result}                   握手结果 ok / mismatch / error
//	<ns>_negotiations_total{role,result}            select 结果 ok / na / error
//	<ns>_ls_total{role}                             ls 请求（dialer 发起 / listener 响应）
//	<ns>_negotiation_duration_seconds{role}         从会话创建到协议移交的耗时
//	<ns>_active_sessions                            未结束的会话数
//
// Reporter 的所有方法对 nil 接收者安全，禁用指标时会话层直接传 nil。
//
// # 快速开始
//
//	reporter := metrics.NewReporter(metrics.DefaultConfig(), nil)
//	http.Handle("/metrics", promhttp.HandlerFor(reporter.Gatherer(), promhttp.HandlerOpts{}))
package metrics
