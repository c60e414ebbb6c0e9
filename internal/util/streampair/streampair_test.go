package streampair

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPair_HalfCloseEcho 测试半关闭后的回显
func TestPair_HalfCloseEcho(t *testing.T) {
	a, b := New()

	go func() {
		_, _ = io.Copy(b, b)
		_ = b.CloseWrite()
	}()

	go func() {
		_, _ = a.Write([]byte("banana"))
		_ = a.CloseWrite()
	}()

	data, err := io.ReadAll(a)
	require.NoError(t, err)
	assert.Equal(t, "banana", string(data))
}

// TestPair_Close 测试完全关闭
func TestPair_Close(t *testing.T) {
	a, b := New()
	require.NoError(t, a.Close())

	_, err := b.Write([]byte("x"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)

	_, err = b.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}
