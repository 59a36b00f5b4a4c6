package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"course-planner/internal/model"
)

type snapshotRepo struct {
	db *gorm.DB
}

// NewSnapshotRepo 创建基于 PostgreSQL（GORM）的 SnapshotRepository
func NewSnapshotRepo(db *gorm.DB) SnapshotRepository {
	return &snapshotRepo{db: db}
}

func (r *snapshotRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var snap model.ScheduleSnapshot
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return snap.Value, true, nil
}

func (r *snapshotRepo) Set(ctx context.Context, key, value string) error {
	now := time.Now()
	snap := model.ScheduleSnapshot{
		Key:       key,
		Value:     value,
		BaseModel: model.BaseModel{CreatedAt: now, UpdatedAt: now},
	}
	// upsert：整份快照覆盖写
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&snap).Error
}

func (r *snapshotRepo) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("key = ?", key).Delete(&model.ScheduleSnapshot{}).Error
}
