package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso 远程驱动
	_ "modernc.org/sqlite"                                // 本地 SQLite 驱动
)

// SQLSnapshotRepo 基于 database/sql 的快照存储（本地 SQLite 或 Turso libsql）
type SQLSnapshotRepo struct {
	db *sql.DB
}

// NewSQLSnapshotRepo 按 URL 选择驱动并建表
// libsql:// 或 wss:// 使用 libsql，其余走本地 sqlite
func NewSQLSnapshotRepo(dbURL string) (*SQLSnapshotRepo, error) {
	driverName := "sqlite"
	if strings.HasPrefix(dbURL, "libsql://") || strings.HasPrefix(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, fmt.Errorf("打开 %s 数据库失败: %w", driverName, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s 数据库 ping 失败: %w", driverName, err)
	}

	const ddl = `
	CREATE TABLE IF NOT EXISTS schedule_snapshots (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("创建 schedule_snapshots 表失败: %w", err)
	}

	return &SQLSnapshotRepo{db: db}, nil
}

func (r *SQLSnapshotRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM schedule_snapshots WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (r *SQLSnapshotRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO schedule_snapshots (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	return err
}

func (r *SQLSnapshotRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM schedule_snapshots WHERE key = ?`, key)
	return err
}

// Close 关闭数据库连接
func (r *SQLSnapshotRepo) Close() error {
	return r.db.Close()
}
