package types

// ============================================================================
//                              Role - 会话角色
// ============================================================================

// Role 会话角色
//
// 角色在会话构造时确定，之后不可切换。零值为 RoleDialer。
type Role int

const (
	// RoleDialer 拨号方：发起 select / ls
	RoleDialer Role = iota
	// RoleListener 监听方：维护处理器注册表并响应请求
	RoleListener
)

// String 返回角色的字符串表示
func (r Role) String() string {
	switch r {
	case RoleDialer:
		return "dialer"
	case RoleListener:
		return "listener"
	default:
		return "unknown"
	}
}

// IsListener 是否为监听方
func (r Role) IsListener() bool {
	return r == RoleListener
}
