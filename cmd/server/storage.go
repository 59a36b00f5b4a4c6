package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"course-planner/config"
	"course-planner/internal/repository"
	"course-planner/pkg/database"
	pkgerrors "course-planner/pkg/errors"
	"course-planner/pkg/redis"
)

// openSnapshotRepo 按 planner.storage_driver 构造快照存储
// 返回的 closer 在关闭服务时调用
func openSnapshotRepo(ctx context.Context, cfg *config.Config, rdb *redis.Client, logger *zap.Logger) (repository.SnapshotRepository, func(), error) {
	noop := func() {}

	switch cfg.Planner.StorageDriver {
	case "postgres":
		db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			return nil, noop, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, noop, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			sqlDB.Close()
			return nil, noop, err
		}
		return repository.NewSnapshotRepo(db), func() { sqlDB.Close() }, nil

	case "sqlite":
		repo, err := repository.NewSQLSnapshotRepo(cfg.SQLite.URL)
		if err != nil {
			return nil, noop, err
		}
		return repo, func() { repo.Close() }, nil

	case "redis":
		if rdb == nil {
			return nil, noop, pkgerrors.ErrStorageUnavailable
		}
		return repository.NewRedisSnapshotRepo(rdb), noop, nil

	case "firebase":
		repo, err := repository.NewFirebaseSnapshotRepo(ctx, cfg.Firebase.CredentialsFile, cfg.Firebase.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return repo, noop, nil

	case "memory":
		return repository.NewMemorySnapshotRepo(), noop, nil

	default:
		return nil, noop, fmt.Errorf("%w: %s", pkgerrors.ErrUnsupportedStorage, cfg.Planner.StorageDriver)
	}
}
