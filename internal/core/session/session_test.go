package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-multistream/internal/core/codec"
	"github.com/dep2p/go-multistream/internal/core/handshake"
	"github.com/dep2p/go-multistream/internal/core/metrics"
	"github.com/dep2p/go-multistream/internal/core/negotiator"
	"github.com/dep2p/go-multistream/internal/util/streampair"
	"github.com/dep2p/go-multistream/pkg/interfaces"
	"github.com/dep2p/go-multistream/pkg/types"
)

const testTimeout = 5 * time.Second

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	t.Cleanup(cancel)
	return ctx
}

// newPair 在一对内存流上创建已握手的 Listener 与 Dialer
func newPair(t *testing.T, lopts, dopts []Option) (*Listener, *Dialer) {
	t.Helper()
	dialerEnd, listenerEnd := streampair.New()

	l := NewListener(listenerEnd, lopts...)
	d := NewDialer(dialerEnd, dopts...)

	ctx := testContext(t)
	var g errgroup.Group
	g.Go(func() error { return l.Ready(ctx) })
	g.Go(func() error { return d.Ready(ctx) })
	require.NoError(t, g.Wait())

	t.Cleanup(func() {
		_ = d.Close()
		_ = l.Close()
	})
	return l, d
}

func echo(s interfaces.Stream) {
	_, _ = io.Copy(s, s)
	_ = s.CloseWrite()
}

// TestSession_Handshake 两端并发握手，回调恰好触发一次
func TestSession_Handshake(t *testing.T) {
	dialerEnd, listenerEnd := streampair.New()
	lcb := make(chan error, 2)
	dcb := make(chan error, 2)

	// 先构造 Dialer 也不会死锁
	d := NewDialer(dialerEnd, WithReadyCallback(func(err error) { dcb <- err }))
	l := NewListener(listenerEnd, WithReadyCallback(func(err error) { lcb <- err }))
	defer l.Close()
	defer d.Close()

	require.NoError(t, <-lcb)
	require.NoError(t, <-dcb)
	assert.Never(t, func() bool { return len(lcb)+len(dcb) > 0 }, 50*time.Millisecond, 10*time.Millisecond)

	assert.Equal(t, handshake.StateConfirmed, l.HandshakeState())
	assert.Equal(t, handshake.StateConfirmed, d.HandshakeState())
	assert.NotEqual(t, l.ID(), d.ID())

	t.Log("✅ 握手完成")
}

// TestSession_HandleAndSelect 选择已注册协议并回显数据
func TestSession_HandleAndSelect(t *testing.T) {
	l, d := newPair(t, nil, nil)

	var calls atomic.Int32
	require.NoError(t, l.AddHandler("/monkey/1.0.0", func(s interfaces.Stream) {
		calls.Add(1)
		echo(s)
	}))

	s, err := d.Select(testContext(t), "/monkey/1.0.0")
	require.NoError(t, err)

	go func() {
		_, _ = s.Write([]byte("banana"))
		_ = s.CloseWrite()
	}()
	data, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "banana", string(data))

	<-l.Done()
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, types.ProtocolID("/monkey/1.0.0"), l.Protocol())
	assert.Equal(t, types.ProtocolID("/monkey/1.0.0"), d.Protocol())
	assert.NoError(t, l.Err())
	assert.NoError(t, d.Err())

	// 移交后协商层退出
	_, err = d.Select(testContext(t), "/monkey/1.0.0")
	assert.ErrorIs(t, err, ErrNegotiated)
	assert.NoError(t, d.Close(), "已移交的流不受 Close 影响")

	t.Log("✅ 协议选择与回显成功")
}

// TestSession_SelectNotSupported 未注册协议返回 na，流仍可用
func TestSession_SelectNotSupported(t *testing.T) {
	l, d := newPair(t, nil, nil)
	require.NoError(t, l.AddHandler("/monkey/1.0.0", echo))

	_, err := d.Select(testContext(t), "/panda/1.0.0")
	assert.ErrorIs(t, err, negotiator.ErrNotSupported)
	assert.NoError(t, d.Err())

	_, err = d.Select(testContext(t), "/monkey/1.0.0")
	require.NoError(t, err)
}

// TestSession_Ls 列表保持注册顺序
func TestSession_Ls(t *testing.T) {
	l, d := newPair(t, nil, nil)
	require.NoError(t, l.AddHandler("/monkey/1.0.0", echo))
	require.NoError(t, l.AddHandler("/giraffe/2.0.0", echo))
	require.NoError(t, l.AddHandler("/elephant/2.5.0", echo))

	ids, err := d.Ls(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, []types.ProtocolID{
		"/monkey/1.0.0",
		"/giraffe/2.0.0",
		"/elephant/2.5.0",
	}, ids)
	assert.Equal(t, ids, l.Handlers())
}

// TestSession_DuplicateHandler 重复注册替换处理器并保留位置
func TestSession_DuplicateHandler(t *testing.T) {
	l, d := newPair(t, nil, nil)

	first := make(chan struct{}, 1)
	second := make(chan struct{}, 1)
	require.NoError(t, l.AddHandler("/a/1.0.0", func(interfaces.Stream) { first <- struct{}{} }))
	require.NoError(t, l.AddHandler("/b/1.0.0", echo))
	require.NoError(t, l.AddHandler("/a/1.0.0", func(interfaces.Stream) { second <- struct{}{} }))

	ids, err := d.Ls(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, []types.ProtocolID{"/a/1.0.0", "/b/1.0.0"}, ids)

	_, err = d.Select(testContext(t), "/a/1.0.0")
	require.NoError(t, err)
	<-second
	assert.Empty(t, first)
}

// TestSession_RoleViolation 角色错误同步失败且不写任何字节
func TestSession_RoleViolation(t *testing.T) {
	l, d := newPair(t, nil, nil)

	err := d.AddHandler("/monkey/1.0.0", echo)
	assert.ErrorIs(t, err, ErrRoleViolation)

	_, err = l.Select(testContext(t), "/monkey/1.0.0")
	assert.ErrorIs(t, err, ErrRoleViolation)

	_, err = l.Ls(testContext(t))
	assert.ErrorIs(t, err, ErrRoleViolation)

	// 线路未被污染：后续请求正常
	ids, err := d.Ls(testContext(t))
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, l.Err())
}

// TestSession_InvalidHandler nil 处理器同步失败
func TestSession_InvalidHandler(t *testing.T) {
	l, _ := newPair(t, nil, nil)

	err := l.AddHandler("/monkey/1.0.0", nil)
	assert.ErrorIs(t, err, ErrInvalidHandler)
	assert.Empty(t, l.Handlers())
}

// TestSession_InvalidProtocolID 无效协议 ID 同步失败
func TestSession_InvalidProtocolID(t *testing.T) {
	l, d := newPair(t, nil, nil)

	for _, id := range []types.ProtocolID{"", "ls", "na", "/bad\n/1.0.0"} {
		assert.ErrorIs(t, l.AddHandler(id, echo), types.ErrInvalidProtocolID, "%q", id)
		_, err := d.Select(testContext(t), id)
		assert.ErrorIs(t, err, types.ErrInvalidProtocolID, "%q", id)
	}
	assert.Empty(t, l.Handlers())
	assert.NoError(t, d.Err())
}

// TestSession_DefaultRole 角色零值为 Dialer，回调可省略
func TestSession_DefaultRole(t *testing.T) {
	dialerEnd, listenerEnd := streampair.New()

	var role types.Role
	d := New(dialerEnd, role)
	l := New(listenerEnd, types.RoleListener)
	assert.Equal(t, types.RoleDialer, d.Role())
	assert.Equal(t, types.RoleListener, l.Role())
	assert.IsType(t, &Dialer{}, d)
	assert.IsType(t, &Listener{}, l)

	ctx := testContext(t)
	require.NoError(t, d.Ready(ctx))
	require.NoError(t, l.Ready(ctx))
}

// TestSession_HandshakeMismatch 双方都报告握手不一致，不进行协商
func TestSession_HandshakeMismatch(t *testing.T) {
	dialerEnd, listenerEnd := streampair.New()

	l := NewListener(listenerEnd, WithProtocolID("/multistream/2.0.0"))
	d := NewDialer(dialerEnd)

	ctx := testContext(t)
	assert.ErrorIs(t, l.Ready(ctx), handshake.ErrMismatch)
	assert.ErrorIs(t, d.Ready(ctx), handshake.ErrMismatch)

	<-l.Done()
	<-d.Done()
	assert.ErrorIs(t, l.Err(), handshake.ErrMismatch)
	assert.Equal(t, handshake.StateFailed, d.HandshakeState())

	_, err := d.Select(ctx, "/monkey/1.0.0")
	assert.ErrorIs(t, err, handshake.ErrMismatch)
	_, err = d.Ls(ctx)
	assert.ErrorIs(t, err, handshake.ErrMismatch)
}

// TestSession_OperationsWaitForHandshake 握手前发起的请求排队等待
func TestSession_OperationsWaitForHandshake(t *testing.T) {
	dialerEnd, listenerEnd := streampair.New()
	d := NewDialer(dialerEnd)

	type lsResult struct {
		ids []types.ProtocolID
		err error
	}
	ctx := testContext(t)
	res := make(chan lsResult, 1)
	go func() {
		ids, err := d.Ls(ctx)
		res <- lsResult{ids, err}
	}()

	assert.Never(t, func() bool { return len(res) > 0 }, 50*time.Millisecond, 10*time.Millisecond)

	l := NewListener(listenerEnd)
	defer l.Close()
	defer d.Close()

	r := <-res
	require.NoError(t, r.err)
	assert.Empty(t, r.ids)
}

// TestSession_ConcurrentSelectsQueue 并发请求串行上线路
func TestSession_ConcurrentSelectsQueue(t *testing.T) {
	l, d := newPair(t, nil, nil)
	require.NoError(t, l.AddHandler("/monkey/1.0.0", echo))

	ctx := testContext(t)
	var g errgroup.Group
	for _, id := range []types.ProtocolID{"/panda/1.0.0", "/zebra/1.0.0", "/koala/1.0.0"} {
		id := id
		g.Go(func() error {
			_, err := d.Select(ctx, id)
			if !errors.Is(err, negotiator.ErrNotSupported) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		ids, err := d.Ls(ctx)
		if err == nil && len(ids) != 1 {
			return errors.New("unexpected ls result")
		}
		return err
	})
	require.NoError(t, g.Wait())

	_, err := d.Select(ctx, "/monkey/1.0.0")
	require.NoError(t, err)
}

// TestSession_CancelWhileQueued 排队期间取消不影响会话
func TestSession_CancelWhileQueued(t *testing.T) {
	_, d := newPair(t, nil, nil)

	d.pending <- struct{}{}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := d.Select(ctx, "/monkey/1.0.0")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoError(t, d.Err())
	<-d.pending

	ids, err := d.Ls(testContext(t))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

// TestSession_CancelOnWire 请求上线路后取消会关闭流并使会话失效
func TestSession_CancelOnWire(t *testing.T) {
	dialerEnd, peer := streampair.New()
	d := NewDialer(dialerEnd)

	// 对端完成握手后读取请求但从不响应
	go func() {
		if err := handshake.NewEngine("", 0).Run(peer); err != nil {
			return
		}
		_, _ = codec.ReadMessage(peer, 0)
		_, _ = io.Copy(io.Discard, peer)
	}()
	require.NoError(t, d.Ready(testContext(t)))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := d.Select(ctx, "/monkey/1.0.0")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	<-d.Done()
	assert.ErrorIs(t, d.Err(), context.DeadlineExceeded)

	_, err = d.Select(testContext(t), "/monkey/1.0.0")
	assert.ErrorIs(t, err, ErrSessionClosed)
}

// TestSession_UnexpectedResponsePoisons 意外响应使会话失效
func TestSession_UnexpectedResponsePoisons(t *testing.T) {
	dialerEnd, peer := streampair.New()
	d := NewDialer(dialerEnd)

	go func() {
		if err := handshake.NewEngine("", 0).Run(peer); err != nil {
			return
		}
		_, _ = codec.ReadMessage(peer, 0)
		_ = codec.WriteMessage(peer, "/zebra/1.0.0", 0)
	}()

	_, err := d.Select(testContext(t), "/monkey/1.0.0")
	assert.ErrorIs(t, err, negotiator.ErrUnexpectedResponse)

	_, err = d.Ls(testContext(t))
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.ErrorIs(t, err, negotiator.ErrUnexpectedResponse)
}

// TestSession_Close 关闭后所有请求失败
func TestSession_Close(t *testing.T) {
	l, d := newPair(t, nil, nil)

	require.NoError(t, d.Close())
	<-d.Done()

	_, err := d.Select(testContext(t), "/monkey/1.0.0")
	assert.ErrorIs(t, err, ErrSessionClosed)

	// 对端协商循环读到 EOF 后结束
	<-l.Done()
	assert.ErrorIs(t, l.Err(), io.EOF)
	assert.Empty(t, l.Protocol())
}

// TestSession_MaxMessageSize 协议 ID 超过帧上限被拒绝
func TestSession_MaxMessageSize(t *testing.T) {
	l, _ := newPair(t, []Option{WithMaxMessageSize(64)}, nil)

	err := l.AddHandler(types.ProtocolID("/"+strings.Repeat("x", 80)), echo)
	assert.ErrorIs(t, err, types.ErrInvalidProtocolID)
}

// TestSession_Metrics 会话把结果记录到 Reporter
func TestSession_Metrics(t *testing.T) {
	reporter := metrics.NewReporter(metrics.DefaultConfig(), nil)
	opts := []Option{WithMetrics(reporter)}
	l, d := newPair(t, opts, opts)
	require.NoError(t, l.AddHandler("/monkey/1.0.0", echo))

	ctx := testContext(t)
	_, err := d.Ls(ctx)
	require.NoError(t, err)
	_, err = d.Select(ctx, "/panda/1.0.0")
	require.Error(t, err)
	_, err = d.Select(ctx, "/monkey/1.0.0")
	require.NoError(t, err)
	<-l.Done()

	expected := `
# HELP multistream_handshakes_total Total number of multistream handshakes by result
# TYPE multistream_handshakes_total counter
multistream_handshakes_total{result="ok"} 2
# HELP multistream_negotiations_total Total number of protocol selections by role and result
# TYPE multistream_negotiations_total counter
multistream_negotiations_total{result="na",role="dialer"} 1
multistream_negotiations_total{result="na",role="listener"} 1
multistream_negotiations_total{result="ok",role="dialer"} 1
multistream_negotiations_total{result="ok",role="listener"} 1
# HELP multistream_ls_total Total number of ls requests sent or served
# TYPE multistream_ls_total counter
multistream_ls_total{role="dialer"} 1
multistream_ls_total{role="listener"} 1
# HELP multistream_active_sessions Number of sessions still negotiating
# TYPE multistream_active_sessions gauge
multistream_active_sessions 0
`
	err = testutil.GatherAndCompare(reporter.Gatherer(), strings.NewReader(expected),
		"multistream_handshakes_total",
		"multistream_negotiations_total",
		"multistream_ls_total",
		"multistream_active_sessions",
	)
	assert.NoError(t, err)
}
