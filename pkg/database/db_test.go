package database

import (
	"testing"

	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogLevel(t *testing.T) {
	cases := map[string]gormlogger.LogLevel{
		"debug": gormlogger.Info,
		"warn":  gormlogger.Warn,
		"error": gormlogger.Error,
		"info":  gormlogger.Silent,
		"":      gormlogger.Silent,
	}
	for in, want := range cases {
		if got := gormLogLevel(in); got != want {
			t.Errorf("gormLogLevel(%q) = %v，期望 %v", in, got, want)
		}
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("读取嵌入迁移失败: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("期望 2 个迁移文件，实际=%d", len(entries))
	}
}
