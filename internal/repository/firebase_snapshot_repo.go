package repository

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"
)

const firebaseSnapshotRoot = "schedule_snapshots"

// FirebaseSnapshotRepo 基于 Firebase Realtime Database 的快照存储
type FirebaseSnapshotRepo struct {
	client *db.Client
}

// NewFirebaseSnapshotRepo 使用服务账号凭据连接 Realtime Database
func NewFirebaseSnapshotRepo(ctx context.Context, credFile, dbURL string) (*FirebaseSnapshotRepo, error) {
	conf := &firebase.Config{DatabaseURL: dbURL}

	var opts []option.ClientOption
	if credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("初始化 Firebase 应用失败: %w", err)
	}
	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("初始化 Firebase 数据库失败: %w", err)
	}
	return &FirebaseSnapshotRepo{client: client}, nil
}

// firebasePath Realtime Database 的路径不允许 . $ # [ ] /
func firebasePath(key string) string {
	r := strings.NewReplacer(".", "_", "$", "_", "#", "_", "[", "_", "]", "_", "/", "_")
	return firebaseSnapshotRoot + "/" + r.Replace(key)
}

func (r *FirebaseSnapshotRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var value *string
	if err := r.client.NewRef(firebasePath(key)).Get(ctx, &value); err != nil {
		return "", false, err
	}
	if value == nil {
		return "", false, nil
	}
	return *value, true, nil
}

func (r *FirebaseSnapshotRepo) Set(ctx context.Context, key, value string) error {
	return r.client.NewRef(firebasePath(key)).Set(ctx, value)
}

func (r *FirebaseSnapshotRepo) Delete(ctx context.Context, key string) error {
	return r.client.NewRef(firebasePath(key)).Delete(ctx)
}
