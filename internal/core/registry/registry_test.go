package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-multistream/pkg/interfaces"
	"github.com/dep2p/go-multistream/pkg/types"
)

func noop(interfaces.Stream) {}

// TestRegistry_InsertionOrder 测试迭代顺序等于注册顺序
func TestRegistry_InsertionOrder(t *testing.T) {
	r := New()
	r.Add("/monkey/1.0.0", noop)
	r.Add("/giraffe/2.0.0", noop)
	r.Add("/elephant/2.5.0", noop)

	assert.Equal(t, []types.ProtocolID{
		"/monkey/1.0.0",
		"/giraffe/2.0.0",
		"/elephant/2.5.0",
	}, r.IDs())
	assert.Equal(t, 3, r.Len())
}

// TestRegistry_DuplicateKeepsPosition 重复注册替换处理器并保留位置
func TestRegistry_DuplicateKeepsPosition(t *testing.T) {
	r := New()
	var calls []string

	assert.False(t, r.Add("/a/1", func(interfaces.Stream) { calls = append(calls, "first") }))
	assert.False(t, r.Add("/b/1", noop))
	assert.True(t, r.Add("/a/1", func(interfaces.Stream) { calls = append(calls, "second") }))

	assert.Equal(t, []types.ProtocolID{"/a/1", "/b/1"}, r.IDs())

	h, ok := r.Lookup("/a/1")
	require.True(t, ok)
	h(nil)
	assert.Equal(t, []string{"second"}, calls)
}

// TestRegistry_Lookup 测试精确匹配
func TestRegistry_Lookup(t *testing.T) {
	r := New()
	r.Add("/monkey/1.0.0", noop)

	_, ok := r.Lookup("/monkey/1.0.0")
	assert.True(t, ok)

	_, ok = r.Lookup("/monkey/1.0")
	assert.False(t, ok, "不做前缀或版本匹配")

	_, ok = r.Lookup("/MONKEY/1.0.0")
	assert.False(t, ok)
}

// TestRegistry_SnapshotIsolation 快照不受后续修改影响
func TestRegistry_SnapshotIsolation(t *testing.T) {
	r := New()
	r.Add("/a/1", noop)
	ids := r.IDs()
	entries := r.Entries()

	r.Add("/b/1", noop)
	assert.Len(t, ids, 1)
	assert.Len(t, entries, 1)
	assert.Equal(t, types.ProtocolID("/a/1"), entries[0].ID)
}

// TestRegistry_Concurrent 并发注册与查找
func TestRegistry_Concurrent(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Add(types.ProtocolID(fmt.Sprintf("/p/%d", i)), noop)
		}(i)
		go func() {
			defer wg.Done()
			_ = r.IDs()
			_, _ = r.Lookup("/p/0")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, r.Len())
	seen := make(map[types.ProtocolID]bool)
	for _, id := range r.IDs() {
		assert.False(t, seen[id], "重复的协议 %s", id)
		seen[id] = true
	}
}
