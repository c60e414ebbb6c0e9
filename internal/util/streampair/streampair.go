// Package streampair 提供内存中的双工流对
//
// 每个方向是一条同步 io.Pipe：写入阻塞直到对端读走全部数据，
// 因此两端必须并发驱动。CloseWrite 只关闭本端写方向，对端读到 io.EOF，
// 本端仍可继续读取，满足回显类测试对半关闭的要求。
package streampair

import (
	"io"

	"go.uber.org/multierr"

	"github.com/dep2p/go-multistream/pkg/interfaces"
)

// End 流对的一端
type End struct {
	r *io.PipeReader
	w *io.PipeWriter
}

var _ interfaces.Stream = (*End)(nil)

// New 创建一对相互连接的流
func New() (*End, *End) {
	ar, bw := io.Pipe()
	br, aw := io.Pipe()
	return &End{r: ar, w: aw}, &End{r: br, w: bw}
}

// Read 读取对端写入的数据
func (e *End) Read(p []byte) (int, error) {
	return e.r.Read(p)
}

// Write 写入数据，阻塞直到对端读走
func (e *End) Write(p []byte) (int, error) {
	return e.w.Write(p)
}

// CloseWrite 半关闭写方向
func (e *End) CloseWrite() error {
	return e.w.Close()
}

// Close 关闭两个方向
//
// 对端后续写入返回 io.ErrClosedPipe，对端读取返回 io.EOF。
func (e *End) Close() error {
	return multierr.Combine(e.w.Close(), e.r.Close())
}
