package negotiator

import (
	"errors"
	"fmt"
	"io"

	"github.com/dep2p/go-multistream/internal/core/codec"
	"github.com/dep2p/go-multistream/pkg/interfaces"
	"github.com/dep2p/go-multistream/pkg/types"
)

// 线路命令
const (
	// LS 列出协议命令
	LS = types.ReservedLS

	// NA 协议不支持响应
	NA = types.ReservedNA
)

// ============================================================================
//                              事件观察
// ============================================================================

// Event 监听方协商事件
type Event int

const (
	// EventList 收到 ls 并已写回列表
	EventList Event = iota
	// EventReject 请求的协议未注册，已回复 na
	EventReject
	// EventAccept 请求的协议已接受
	EventAccept
)

// String 返回事件名称
func (e Event) String() string {
	switch e {
	case EventList:
		return "ls"
	case EventReject:
		return "reject"
	case EventAccept:
		return "accept"
	default:
		return "unknown"
	}
}

// Observer 事件回调，在协商循环内同步调用
type Observer func(ev Event, id types.ProtocolID)

// Lookup 监听方依赖的注册表视图
type Lookup interface {
	// Lookup 精确匹配协议处理器
	Lookup(id types.ProtocolID) (interfaces.StreamHandler, bool)

	// IDs 按注册顺序返回协议列表
	IDs() []types.ProtocolID
}

// ============================================================================
//                              Listener
// ============================================================================

// Listener 监听方协商循环
type Listener struct {
	lookup  Lookup
	maxSize int
	observe Observer
}

// NewListener 创建监听方协商器
func NewListener(lookup Lookup, maxSize int, observe Observer) *Listener {
	if observe == nil {
		observe = func(Event, types.ProtocolID) {}
	}
	return &Listener{lookup: lookup, maxSize: maxSize, observe: observe}
}

// Serve 运行协商循环，直到某个协议被接受或出错
//
// 接受时已写出回显，返回协议 ID 与处理器；此后调用方不得再从 rw
// 读取协商帧，流归处理器所有。
func (l *Listener) Serve(rw io.ReadWriter) (types.ProtocolID, interfaces.StreamHandler, error) {
	for {
		msg, err := codec.ReadMessage(rw, l.maxSize)
		if errors.Is(err, codec.ErrTerminator) {
			return "", nil, fmt.Errorf("%w: terminator frame from dialer", ErrUnexpectedResponse)
		}
		if err != nil {
			return "", nil, err
		}

		if msg == LS {
			if err := l.writeList(rw); err != nil {
				return "", nil, err
			}
			l.observe(EventList, "")
			continue
		}

		id := types.ProtocolID(msg)
		if handler, ok := l.lookup.Lookup(id); ok && handler != nil {
			if err := codec.WriteMessage(rw, msg, l.maxSize); err != nil {
				return "", nil, err
			}
			l.observe(EventAccept, id)
			return id, handler, nil
		}

		if err := codec.WriteMessage(rw, NA, l.maxSize); err != nil {
			return "", nil, err
		}
		l.observe(EventReject, id)
	}
}

// writeList 以一次写出发送完整的 ls 响应
func (l *Listener) writeList(w io.Writer) error {
	var buf []byte
	for _, id := range l.lookup.IDs() {
		buf = codec.AppendMessage(buf, string(id))
	}
	buf = codec.AppendTerminator(buf)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("negotiator: write ls response: %w", err)
	}
	return nil
}
