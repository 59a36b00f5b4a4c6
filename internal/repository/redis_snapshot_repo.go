package repository

import (
	"context"

	"course-planner/pkg/redis"
)

type redisSnapshotRepo struct {
	client *redis.Client
}

// NewRedisSnapshotRepo 创建基于 Redis 的 SnapshotRepository
func NewRedisSnapshotRepo(client *redis.Client) SnapshotRepository {
	return &redisSnapshotRepo{client: client}
}

func (r *redisSnapshotRepo) Get(ctx context.Context, key string) (string, bool, error) {
	return r.client.GetValue(ctx, key)
}

func (r *redisSnapshotRepo) Set(ctx context.Context, key, value string) error {
	return r.client.SetValue(ctx, key, value)
}

func (r *redisSnapshotRepo) Delete(ctx context.Context, key string) error {
	return r.client.DeleteValue(ctx, key)
}
