package negotiator

import (
	"errors"
	"fmt"
	"io"

	"github.com/dep2p/go-multistream/internal/core/codec"
	"github.com/dep2p/go-multistream/pkg/types"
)

// Dialer 拨号方请求逻辑
//
// Dialer 本身无状态，单请求约束由会话层的挂起槽保证。
type Dialer struct {
	maxSize int
}

// NewDialer 创建拨号方协商器
func NewDialer(maxSize int) *Dialer {
	return &Dialer{maxSize: maxSize}
}

// Select 请求对端使用指定协议
//
// 返回 nil 表示对端已回显，流可直接承载应用数据。
func (d *Dialer) Select(rw io.ReadWriter, id types.ProtocolID) error {
	if err := codec.WriteMessage(rw, string(id), d.maxSize); err != nil {
		return err
	}

	resp, err := codec.ReadMessage(rw, d.maxSize)
	if errors.Is(err, codec.ErrTerminator) {
		return fmt.Errorf("%w: terminator frame in select response", ErrUnexpectedResponse)
	}
	if err != nil {
		return err
	}

	switch resp {
	case string(id):
		return nil
	case NA:
		return fmt.Errorf("%w: %s", ErrNotSupported, id)
	default:
		return fmt.Errorf("%w: selected %q, got %q", ErrUnexpectedResponse, id, resp)
	}
}

// List 请求对端的协议列表
func (d *Dialer) List(rw io.ReadWriter) ([]types.ProtocolID, error) {
	if err := codec.WriteMessage(rw, LS, d.maxSize); err != nil {
		return nil, err
	}

	ids := make([]types.ProtocolID, 0)
	for {
		msg, err := codec.ReadMessage(rw, d.maxSize)
		if errors.Is(err, codec.ErrTerminator) {
			return ids, nil
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, types.ProtocolID(msg))
	}
}
