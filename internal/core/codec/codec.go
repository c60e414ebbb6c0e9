package codec

import (
	"fmt"
	"io"

	"github.com/multiformats/go-varint"
)

// DefaultMaxMessageSize 默认帧体上限（含换行符）
const DefaultMaxMessageSize = 64 * 1024

// ============================================================================
//                              编码
// ============================================================================

// Encode 编码单条消息
func Encode(msg string) []byte {
	return AppendMessage(make([]byte, 0, varint.UvarintSize(uint64(len(msg)+1))+len(msg)+1), msg)
}

// AppendMessage 将消息帧追加到 buf
func AppendMessage(buf []byte, msg string) []byte {
	buf = append(buf, varint.ToUvarint(uint64(len(msg)+1))...)
	buf = append(buf, msg...)
	return append(buf, '\n')
}

// AppendTerminator 追加零长度结束帧
func AppendTerminator(buf []byte) []byte {
	return append(buf, 0)
}

// WriteMessage 编码并一次性写出单条消息
func WriteMessage(w io.Writer, msg string, maxSize int) error {
	if maxSize > 0 && len(msg)+1 > maxSize {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLong, len(msg)+1, maxSize)
	}
	if _, err := w.Write(Encode(msg)); err != nil {
		return fmt.Errorf("codec: write frame: %w", err)
	}
	return nil
}

// ============================================================================
//                              解码
// ============================================================================

// Decode 从缓冲区解码一帧
//
// 返回消息与消耗的字节数。缓冲区不足一帧时返回 ErrFraming，不返回部分消息。
func Decode(buf []byte) (string, int, error) {
	length, n, err := varint.FromUvarint(buf)
	if err != nil {
		return "", 0, fmt.Errorf("%w: length prefix: %w", ErrFraming, err)
	}
	if length == 0 {
		return "", n, ErrTerminator
	}
	if uint64(len(buf)-n) < length {
		return "", 0, fmt.Errorf("%w: %w", ErrFraming, io.ErrUnexpectedEOF)
	}
	body := buf[n : n+int(length)]
	msg, err := trimBody(body)
	if err != nil {
		return "", 0, err
	}
	return msg, n + int(length), nil
}

// ReadMessage 从流中阻塞读取一帧
//
// maxSize <= 0 时使用 DefaultMaxMessageSize。流在帧中途关闭返回包装了
// io.ErrUnexpectedEOF 的 ErrFraming；在帧边界关闭返回包装了 io.EOF 的 ErrFraming。
func ReadMessage(r io.Reader, maxSize int) (string, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxMessageSize
	}

	length, err := varint.ReadUvarint(byteReader{r})
	if err != nil {
		return "", fmt.Errorf("%w: length prefix: %w", ErrFraming, err)
	}
	if length == 0 {
		return "", ErrTerminator
	}
	if length > uint64(maxSize) {
		return "", fmt.Errorf("%w: %w: %d > %d", ErrFraming, ErrMessageTooLong, length, maxSize)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return "", fmt.Errorf("%w: body: %w", ErrFraming, err)
	}
	return trimBody(body)
}

func trimBody(body []byte) (string, error) {
	if body[len(body)-1] != '\n' {
		return "", fmt.Errorf("%w: missing trailing newline", ErrFraming)
	}
	return string(body[:len(body)-1]), nil
}

// byteReader 逐字节读取，避免越过帧边界
type byteReader struct {
	r io.Reader
}

func (b byteReader) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(b.r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}
