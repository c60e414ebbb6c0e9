// Package handshake 实现协商协议自身的版本握手
//
// 两端在流打开后立即发送固定标识（默认 /multistream/1.0.0），
// 同时读取对端的一帧并与期望值比较。发送与读取相互独立、并发进行，
// 因此两端以任意顺序启动都不会在阻塞读写上死锁。
//
// 状态机：
//
//	Start → SentID → Confirmed
//	  └────────┴────→ Failed
package handshake

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/dep2p/go-multistream/internal/core/codec"
)

// ProtocolID multistream-select 协议标识
const ProtocolID = "/multistream/1.0.0"

// ErrMismatch 对端发送的标识与期望不一致
var ErrMismatch = errors.New("handshake: protocol identifier mismatch")

// ============================================================================
//                              State
// ============================================================================

// State 握手状态
type State int32

const (
	// StateStart 尚未发出标识
	StateStart State = iota
	// StateSentID 本端标识已写出
	StateSentID
	// StateConfirmed 双方标识一致
	StateConfirmed
	// StateFailed 握手失败
	StateFailed
)

// String 返回状态名称
func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateSentID:
		return "sent-id"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              Engine
// ============================================================================

// Engine 握手引擎，单次使用
type Engine struct {
	id      string
	maxSize int
	state   atomic.Int32
}

// NewEngine 创建握手引擎
//
// id 为空时使用 ProtocolID。
func NewEngine(id string, maxSize int) *Engine {
	if id == "" {
		id = ProtocolID
	}
	return &Engine{id: id, maxSize: maxSize}
}

// ID 返回本端发送并期望收到的标识
func (e *Engine) ID() string {
	return e.id
}

// State 返回当前状态
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Run 执行握手，阻塞直到确认或失败
//
// 读失败时立即返回，不等待本端写完成；写协程在流关闭后自然退出。
func (e *Engine) Run(rw io.ReadWriter) error {
	writeErr := make(chan error, 1)
	go func() {
		err := codec.WriteMessage(rw, e.id, e.maxSize)
		if err == nil {
			e.state.CompareAndSwap(int32(StateStart), int32(StateSentID))
		}
		writeErr <- err
	}()

	got, err := codec.ReadMessage(rw, e.maxSize)
	if errors.Is(err, codec.ErrTerminator) {
		got, err = "", nil
	}
	if err != nil {
		e.state.Store(int32(StateFailed))
		return fmt.Errorf("handshake: read identifier: %w", err)
	}

	// 等待本端标识写出，保证对端也能读到并独立判定
	if err := <-writeErr; err != nil {
		e.state.Store(int32(StateFailed))
		return fmt.Errorf("handshake: send identifier: %w", err)
	}

	if got != e.id {
		e.state.Store(int32(StateFailed))
		return fmt.Errorf("%w: expected %q, got %q", ErrMismatch, e.id, got)
	}

	e.state.Store(int32(StateConfirmed))
	return nil
}
