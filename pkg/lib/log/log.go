// Package log 提供 go-multistream 统一日志接口
//
// 基于 Go 标准库 log/slog 封装。组件通过 Logger("core/session") 获取
// LazyLogger，每次调用都使用当前的 slog.Default()，因此运行时切换输出
// 目标或级别对已创建的 logger 立即生效。
//
// 环境变量:
//   - MSS_LOG_LEVEL: debug / info / warn / error（默认 info）
//   - MSS_LOG_FORMAT: text 或 json（默认 text）
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// 日志级别常量（从 slog 导出，方便使用）
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// 环境变量名
const (
	EnvLevel  = "MSS_LOG_LEVEL"
	EnvFormat = "MSS_LOG_FORMAT"
)

// ============================================================================
//                              配置
// ============================================================================

// Options 日志输出选项
type Options struct {
	// Level 最低输出级别
	Level slog.Level

	// JSON 是否使用 JSON 格式
	JSON bool
}

// OptionsFromEnv 从环境变量解析日志选项
func OptionsFromEnv() Options {
	opts := Options{Level: LevelInfo}
	if lvl, ok := ParseLevel(os.Getenv(EnvLevel)); ok {
		opts.Level = lvl
	}
	opts.JSON = strings.EqualFold(os.Getenv(EnvFormat), "json")
	return opts
}

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// Setup 按选项重建默认 logger
func Setup(w io.Writer, opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	var l *slog.Logger
	if opts.JSON {
		l = slog.New(slog.NewJSONHandler(w, handlerOpts))
	} else {
		l = slog.New(slog.NewTextHandler(w, handlerOpts))
	}
	slog.SetDefault(l)
	return l
}

// SetupFromEnv 使用环境变量配置默认 logger，输出到 stderr
func SetupFromEnv() *slog.Logger {
	return Setup(os.Stderr, OptionsFromEnv())
}

// SetOutputWithLevel 同时设置日志输出目标和级别
//
// 示例：
//
//	file, _ := os.OpenFile("mss.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
//	log.SetOutputWithLevel(file, log.LevelDebug)
func SetOutputWithLevel(w io.Writer, level slog.Level) {
	Setup(w, Options{Level: level})
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 使用方式：
//
//	var logger = log.Logger("core/session")
//	logger.Info("握手完成", "session", id)
type LazyLogger struct {
	component string
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

func (l *LazyLogger) base() *slog.Logger {
	return slog.Default().With("component", l.component)
}

// Component 返回组件名
func (l *LazyLogger) Component() string {
	return l.component
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) {
	l.base().Debug(msg, args...)
}

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) {
	l.base().Info(msg, args...)
}

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) {
	l.base().Warn(msg, args...)
}

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) {
	l.base().Error(msg, args...)
}

// DebugContext 带 context 的 Debug 日志
func (l *LazyLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.base().DebugContext(ctx, msg, args...)
}

// With 添加额外的属性
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return l.base().With(args...)
}
