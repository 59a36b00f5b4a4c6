package repository

import (
	"context"
	"path/filepath"
	"testing"
)

// contractCheck 所有 SnapshotRepository 实现共用的行为校验
func contractCheck(t *testing.T, repo SnapshotRepository) {
	t.Helper()
	ctx := context.Background()
	const key = "course-planner:current-schedule"

	if _, found, err := repo.Get(ctx, key); err != nil || found {
		t.Fatalf("空存储期望未找到，实际 found=%v err=%v", found, err)
	}

	if err := repo.Set(ctx, key, `[{"id":"L1"}]`); err != nil {
		t.Fatalf("Set 失败: %v", err)
	}
	if err := repo.Set(ctx, key, `[]`); err != nil {
		t.Fatalf("覆盖 Set 失败: %v", err)
	}
	value, found, err := repo.Get(ctx, key)
	if err != nil || !found || value != "[]" {
		t.Fatalf("期望读到覆盖后的值，实际 value=%q found=%v err=%v", value, found, err)
	}

	if err := repo.Delete(ctx, key); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if _, found, _ := repo.Get(ctx, key); found {
		t.Error("删除后不应再找到")
	}
	if err := repo.Delete(ctx, key); err != nil {
		t.Errorf("删除不存在的 key 应为空操作，实际 %v", err)
	}
}

func TestMemorySnapshotRepo(t *testing.T) {
	contractCheck(t, NewMemorySnapshotRepo())
}

func TestSQLSnapshotRepo_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.db")
	repo, err := NewSQLSnapshotRepo("file:" + path)
	if err != nil {
		t.Fatalf("NewSQLSnapshotRepo 失败: %v", err)
	}
	defer repo.Close()

	contractCheck(t, repo)
}

func TestSQLSnapshotRepo_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "planner.db")

	first, err := NewSQLSnapshotRepo("file:" + path)
	if err != nil {
		t.Fatalf("NewSQLSnapshotRepo 失败: %v", err)
	}
	if err := first.Set(ctx, "k", `[{"id":"M1"}]`); err != nil {
		t.Fatalf("Set 失败: %v", err)
	}
	first.Close()

	second, err := NewSQLSnapshotRepo("file:" + path)
	if err != nil {
		t.Fatalf("重新打开失败: %v", err)
	}
	defer second.Close()
	value, found, err := second.Get(ctx, "k")
	if err != nil || !found || value != `[{"id":"M1"}]` {
		t.Errorf("重新打开后应读到快照，实际 value=%q found=%v err=%v", value, found, err)
	}
}

func TestFirebasePath(t *testing.T) {
	cases := map[string]string{
		"course-planner:current-schedule": "schedule_snapshots/course-planner:current-schedule",
		"a.b#c$d[e]f/g":                   "schedule_snapshots/a_b_c_d_e_f_g",
	}
	for in, want := range cases {
		if got := firebasePath(in); got != want {
			t.Errorf("firebasePath(%q) 期望 %q，实际 %q", in, want, got)
		}
	}
}
