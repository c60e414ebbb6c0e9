// Package types 定义 go-multistream 公共类型
//
// 本文件定义协议相关类型。
package types

import (
	"fmt"
	"strings"
)

// 协商协议保留字，不能作为应用协议 ID 使用
const (
	// ReservedLS 列出协议命令
	ReservedLS = "ls"

	// ReservedNA 协议不可用响应
	ReservedNA = "na"
)

// ProtocolID 协议标识符
//
// 约定格式为 /name/semver，但协商层只做精确字符串比较，不解析内部结构。
type ProtocolID string

// String 返回协议 ID 的字符串表示
func (p ProtocolID) String() string {
	return string(p)
}

// IsEmpty 检查协议 ID 是否为空
func (p ProtocolID) IsEmpty() bool {
	return p == ""
}

// Version 返回协议版本
func (p ProtocolID) Version() string {
	parts := strings.Split(string(p), "/")
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return ""
}

// Name 返回协议名称（不含版本）
func (p ProtocolID) Name() string {
	s := string(p)
	lastSlash := strings.LastIndex(s, "/")
	if lastSlash > 0 {
		return s[:lastSlash]
	}
	return s
}

// Validate 校验协议 ID 能否作为一个协商帧发送
//
// maxLen 为帧体上限（含结尾换行符），<= 0 表示不限制。
func (p ProtocolID) Validate(maxLen int) error {
	s := string(p)
	switch {
	case s == "":
		return fmt.Errorf("%w: %w", ErrInvalidProtocolID, ErrEmptyProtocolID)
	case s == ReservedLS || s == ReservedNA:
		return fmt.Errorf("%w: %q is reserved", ErrInvalidProtocolID, s)
	case strings.ContainsRune(s, '\n'):
		return fmt.Errorf("%w: contains newline", ErrInvalidProtocolID)
	case maxLen > 0 && len(s)+1 > maxLen:
		return fmt.Errorf("%w: %d bytes exceeds frame limit %d", ErrInvalidProtocolID, len(s)+1, maxLen)
	}
	return nil
}

// ProtocolIDs 将字符串列表转换为协议 ID 列表
func ProtocolIDs(ids ...string) []ProtocolID {
	out := make([]ProtocolID, len(ids))
	for i, id := range ids {
		out[i] = ProtocolID(id)
	}
	return out
}
