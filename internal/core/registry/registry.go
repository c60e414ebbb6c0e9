// Package registry 实现有序的协议处理器注册表
//
// 注册表属于单个 Listener 会话，迭代顺序等于首次注册顺序，
// 该顺序会通过 ls 响应对外可见。
//
// 重复注册同一协议 ID 时替换处理器，但保留其原有位置。
package registry

import (
	"sync"

	"github.com/dep2p/go-multistream/pkg/interfaces"
	"github.com/dep2p/go-multistream/pkg/types"
)

// Entry 注册项
type Entry struct {
	ID      types.ProtocolID
	Handler interfaces.StreamHandler
}

// Registry 有序协议注册表
//
// 用 key 切片保存顺序、map 保存下标，查找 O(1)，列举保序。
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
	index   map[types.ProtocolID]int
}

// New 创建空注册表
func New() *Registry {
	return &Registry{
		index: make(map[types.ProtocolID]int),
	}
}

// Add 注册处理器
//
// 返回 true 表示替换了已有协议的处理器（位置不变）。
// 调用方负责校验协议 ID 与处理器。
func (r *Registry) Add(id types.ProtocolID, handler interfaces.StreamHandler) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.index[id]; ok {
		r.entries[i].Handler = handler
		return true
	}

	r.index[id] = len(r.entries)
	r.entries = append(r.entries, Entry{ID: id, Handler: handler})
	return false
}

// Lookup 按精确字符串匹配查找处理器
func (r *Registry) Lookup(id types.ProtocolID) (interfaces.StreamHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.entries[i].Handler, true
}

// IDs 按注册顺序返回协议 ID 快照
func (r *Registry) IDs() []types.ProtocolID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]types.ProtocolID, len(r.entries))
	for i, e := range r.entries {
		ids[i] = e.ID
	}
	return ids
}

// Entries 按注册顺序返回注册项快照
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len 返回注册数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
