package repository

import (
	"context"
	"sync"
)

// MemorySnapshotRepo 进程内快照存储，用于测试与临时演示
type MemorySnapshotRepo struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemorySnapshotRepo 创建内存存储
func NewMemorySnapshotRepo() *MemorySnapshotRepo {
	return &MemorySnapshotRepo{data: make(map[string]string)}
}

func (r *MemorySnapshotRepo) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[key]
	return v, ok, nil
}

func (r *MemorySnapshotRepo) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = value
	return nil
}

func (r *MemorySnapshotRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}
