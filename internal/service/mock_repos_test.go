package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"course-planner/internal/catalog"
	"course-planner/internal/model"
)

const testKey = "course-planner:current-schedule"

// testLoc 固定时区，避免依赖系统 tzdata
var testLoc = time.FixedZone("IST", 2*60*60)

// 2024-03-13 是周三，展示周锚点为 2024-03-10（周日）
var testNow = time.Date(2024, 3, 13, 9, 0, 0, 0, testLoc)

var errKVDown = errors.New("kv down")

// ── Mock Clock ──

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

// ── Mock SnapshotRepository ──

type mockSnapshotRepo struct {
	mu       sync.Mutex
	data     map[string]string
	failGet  bool
	failSet  bool
	setCalls int
	delCalls int
}

func newMockSnapshotRepo() *mockSnapshotRepo {
	return &mockSnapshotRepo{data: make(map[string]string)}
}

func (m *mockSnapshotRepo) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return "", false, errKVDown
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockSnapshotRepo) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.failSet {
		return errKVDown
	}
	m.data[key] = value
	return nil
}

func (m *mockSnapshotRepo) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delCalls++
	if m.failSet {
		return errKVDown
	}
	delete(m.data, key)
	return nil
}

// ── 测试夹具 ──

func testTemplates() []model.LectureTemplate {
	return []model.LectureTemplate{
		{ID: "L1", LinkedID: "B1", Title: "CS101", Day: "Monday", StartTime: "10:00", EndTime: "12:00", Type: "lecture", Location: "A-101", Lecturer: "Dr. Levi"},
		{ID: "B1", LinkedID: "L1", Title: "CS101", Day: "Wednesday", StartTime: "14:00", EndTime: "16:00", Type: "lab", Location: "Lab 3", Lecturer: "Mr. Cohen"},
		{ID: "L2", Title: "CS101", Day: "Tuesday", StartTime: "10:00", EndTime: "12:00", Type: "lecture", Location: "A-102"},
		{ID: "E1", Title: "CS101", Day: "ה", StartTime: "16:00", EndTime: "17:00", Type: "exercise"},
		{ID: "E2", Title: "CS101", Day: "Friday", StartTime: "08:00", EndTime: "09:00", Type: "exercise"},
		{ID: "M1", Title: "Calculus", Day: "Sunday", StartTime: "08:30", EndTime: "10:30", Type: "lecture"},
		{ID: "X1", Title: "Reading Group", Day: "Thursday", StartTime: "18:00", EndTime: "19:00"},
	}
}

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	window, err := model.ParseDayWindow("08:00", "21:00")
	if err != nil {
		t.Fatalf("ParseDayWindow 失败: %v", err)
	}
	cat, err := catalog.New(testTemplates(), window)
	if err != nil {
		t.Fatalf("catalog.New 失败: %v", err)
	}
	return cat
}

func newTestProjector() (*WeekProjector, *fixedClock) {
	clock := &fixedClock{now: testNow}
	return NewWeekProjector(clock, testLoc), clock
}

type plannerFixture struct {
	svc   PlannerService
	repo  *mockSnapshotRepo
	store *ScheduleStore
	clock *fixedClock
	cat   *catalog.Catalog
	proj  *WeekProjector
}

func setupTestPlanner(t *testing.T) *plannerFixture {
	t.Helper()
	return setupTestPlannerWithRepo(t, newMockSnapshotRepo())
}

func setupTestPlannerWithRepo(t *testing.T, repo *mockSnapshotRepo) *plannerFixture {
	t.Helper()
	logger := zap.NewNop()
	cat := newTestCatalog(t)
	proj, clock := newTestProjector()
	store := NewScheduleStore(repo, testKey, cat.Window(), testLoc, logger)
	store.Load(context.Background())
	return &plannerFixture{
		svc:   NewPlannerService(cat, store, proj, false, logger),
		repo:  repo,
		store: store,
		clock: clock,
		cat:   cat,
		proj:  proj,
	}
}

func mustSelection(t *testing.T, key string) Selection {
	t.Helper()
	sel, err := ParseSelectionKey(key)
	if err != nil {
		t.Fatalf("ParseSelectionKey(%q) 失败: %v", key, err)
	}
	return sel
}

func ids(sessions []model.ScheduledSession) []string {
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.ID
	}
	return out
}
