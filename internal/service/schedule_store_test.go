package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"course-planner/internal/model"
)

var testWindow = model.DayWindow{Start: model.ClockTime{Hour: 8}, End: model.ClockTime{Hour: 21}}

func newTestStore(repo *mockSnapshotRepo) *ScheduleStore {
	s := NewScheduleStore(repo, testKey, testWindow, testLoc, zap.NewNop())
	s.Load(context.Background())
	return s
}

func timed(id, linked string, start time.Time) model.ScheduledSession {
	return model.ScheduledSession{
		ID:              id,
		Title:           "CS101",
		Type:            model.TypeLecture,
		StartDate:       start,
		EndDate:         start.Add(2 * time.Hour),
		BackgroundColor: "#4caf50",
		LinkedID:        linked,
	}
}

func TestScheduleStore_AddAndQuery(t *testing.T) {
	ctx := context.Background()
	repo := newMockSnapshotRepo()
	s := newTestStore(repo)

	if err := s.Add(ctx, timed("A", "", testNow), timed("B", "", testNow)); err != nil {
		t.Fatalf("Add 失败: %v", err)
	}
	if !s.IsPresent("A") || !s.IsPresent("B") || s.IsPresent("C") {
		t.Error("IsPresent 结果不符")
	}
	if got := ids(s.ListAll()); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("期望插入顺序 [A B]，实际 %v", got)
	}
	if repo.setCalls != 1 {
		t.Errorf("一次 Add 应只写一次快照，实际 %d", repo.setCalls)
	}
}

func TestScheduleStore_AddDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newMockSnapshotRepo())
	_ = s.Add(ctx, timed("A", "", testNow))

	err := s.Add(ctx, timed("B", "", testNow), timed("A", "", testNow))
	if !errors.Is(err, ErrSessionExists) {
		t.Fatalf("期望 ErrSessionExists，实际 %v", err)
	}
	if s.Len() != 1 || s.IsPresent("B") {
		t.Error("重复 id 时整批不应写入")
	}

	if err := s.Add(ctx, timed("C", "", testNow), timed("C", "", testNow)); !errors.Is(err, ErrSessionExists) {
		t.Errorf("批内重复应返回 ErrSessionExists，实际 %v", err)
	}
}

func TestScheduleStore_RemoveCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newMockSnapshotRepo())
	_ = s.Add(ctx, timed("L1", "B1", testNow), timed("B1", "L1", testNow), timed("E1", "", testNow))

	removed, err := s.Remove(ctx, "B1")
	if err != nil {
		t.Fatalf("Remove 失败: %v", err)
	}
	if got := ids(removed); !reflect.DeepEqual(got, []string{"L1", "B1"}) {
		t.Errorf("期望级联删除 [L1 B1]，实际 %v", got)
	}
	if got := ids(s.ListAll()); !reflect.DeepEqual(got, []string{"E1"}) {
		t.Errorf("期望剩余 [E1]，实际 %v", got)
	}
}

func TestScheduleStore_RemoveAbsentIsNoop(t *testing.T) {
	repo := newMockSnapshotRepo()
	s := newTestStore(repo)

	removed, err := s.Remove(context.Background(), "nope")
	if err != nil || len(removed) != 0 {
		t.Errorf("删除不存在的 id 应为空操作，实际 removed=%v err=%v", removed, err)
	}
	if repo.setCalls != 0 {
		t.Error("空操作不应写快照")
	}
}

func TestScheduleStore_RemoveAll(t *testing.T) {
	ctx := context.Background()
	repo := newMockSnapshotRepo()
	s := newTestStore(repo)
	_ = s.Add(ctx, timed("A", "", testNow))

	if err := s.RemoveAll(ctx); err != nil {
		t.Fatalf("RemoveAll 失败: %v", err)
	}
	if s.Len() != 0 {
		t.Error("RemoveAll 后课表应为空")
	}
	if _, ok := repo.data[testKey]; ok {
		t.Error("RemoveAll 应删除快照")
	}
}

func TestScheduleStore_Mutate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newMockSnapshotRepo())
	_ = s.Add(ctx, timed("A", "", testNow))

	color, note := "#000000", "bring laptop"
	found, err := s.Mutate(ctx, "A", model.SessionPatch{BackgroundColor: &color, CustomText: &note})
	if !found || err != nil {
		t.Fatalf("Mutate 失败: found=%v err=%v", found, err)
	}
	got, _ := s.Get("A")
	if got.BackgroundColor != color || got.CustomText != note {
		t.Errorf("修改未生效: %+v", got)
	}
	if !got.StartDate.Equal(testNow) {
		t.Error("Mutate 不应修改时间")
	}

	if found, _ := s.Mutate(ctx, "missing", model.SessionPatch{CustomText: &note}); found {
		t.Error("不存在的 id 应返回 found=false")
	}
}

func TestScheduleStore_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newMockSnapshotRepo()
	s := newTestStore(repo)

	a := timed("L1", "B1", testNow)
	a.CustomText = "note"
	a.Location = "A-101"
	a.Lecturer = "Dr. Levi"
	b := timed("B1", "L1", testNow.Add(48*time.Hour))
	b.Type = model.TypeLab
	b.Title = "CS101 实验"
	if err := s.Add(ctx, a, b); err != nil {
		t.Fatalf("Add 失败: %v", err)
	}

	reloaded := newTestStore(repo)
	want := s.ListAll()
	got := reloaded.ListAll()
	if len(got) != len(want) {
		t.Fatalf("期望恢复 %d 条，实际 %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].StartDate.Equal(want[i].StartDate) || !got[i].EndDate.Equal(want[i].EndDate) {
			t.Errorf("第 %d 条时间不一致: 期望 %v-%v，实际 %v-%v",
				i, want[i].StartDate, want[i].EndDate, got[i].StartDate, got[i].EndDate)
		}
		// 时间已用 Equal 比较，其余字段整体比较
		g, w := got[i], want[i]
		g.StartDate, g.EndDate = w.StartDate, w.EndDate
		if !reflect.DeepEqual(g, w) {
			t.Errorf("第 %d 条恢复不一致: 期望 %+v，实际 %+v", i, w, got[i])
		}
	}
}

func TestScheduleStore_LoadFailuresYieldEmpty(t *testing.T) {
	cases := []struct {
		name string
		repo func() *mockSnapshotRepo
	}{
		{"快照不存在", newMockSnapshotRepo},
		{"读取失败", func() *mockSnapshotRepo {
			r := newMockSnapshotRepo()
			r.failGet = true
			return r
		}},
		{"快照损坏", func() *mockSnapshotRepo {
			r := newMockSnapshotRepo()
			r.data[testKey] = "{not json"
			return r
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewScheduleStore(tc.repo(), testKey, testWindow, testLoc, zap.NewNop())
			if n := s.Load(context.Background()); n != 0 || s.Len() != 0 {
				t.Errorf("期望空课表，实际 %d", n)
			}
		})
	}
}

func TestScheduleStore_LoadDropsInvalidAndDuplicates(t *testing.T) {
	repo := newMockSnapshotRepo()
	saturday := time.Date(2024, 3, 16, 10, 0, 0, 0, testLoc)
	late := time.Date(2024, 3, 12, 22, 0, 0, 0, testLoc)
	early := time.Date(2024, 3, 12, 7, 0, 0, 0, testLoc)
	overnight := time.Date(2024, 3, 12, 20, 0, 0, 0, testLoc)
	raw, _ := EncodeSessions([]model.ScheduledSession{
		timed("A", "", testNow),
		timed("A", "", testNow.Add(time.Hour)),
		{ID: "bad", StartDate: testNow, EndDate: testNow},
		{ID: "", StartDate: testNow, EndDate: testNow.Add(time.Hour)},
		timed("SAT", "", saturday),
		{ID: "LATE", StartDate: late, EndDate: late.Add(time.Hour)},
		{ID: "EARLY", StartDate: early, EndDate: early.Add(2 * time.Hour)},
		{ID: "NIGHT", StartDate: overnight, EndDate: overnight.Add(6 * time.Hour)},
	})
	repo.data[testKey] = raw

	s := NewScheduleStore(repo, testKey, testWindow, testLoc, zap.NewNop())
	if n := s.Load(context.Background()); n != 1 {
		t.Fatalf("期望只恢复 1 条，实际 %d", n)
	}
	got, _ := s.Get("A")
	if !got.StartDate.Equal(testNow) {
		t.Error("重复 id 应保留第一条")
	}
}

func TestScheduleStore_WriteFailureKeepsMemory(t *testing.T) {
	repo := newMockSnapshotRepo()
	s := newTestStore(repo)
	repo.failSet = true

	err := s.Add(context.Background(), timed("A", "", testNow))
	if !errors.Is(err, ErrSnapshotWrite) {
		t.Fatalf("期望 ErrSnapshotWrite，实际 %v", err)
	}
	if !s.IsPresent("A") {
		t.Error("写入失败时内存状态应保留")
	}
}

func TestScheduleStore_Rebase(t *testing.T) {
	ctx := context.Background()
	repo := newMockSnapshotRepo()
	s := newTestStore(repo)
	proj, _ := newTestProjector()

	old := time.Date(2024, 2, 26, 10, 0, 0, 0, testLoc) // 两周前的周一
	_ = s.Add(ctx, timed("L1", "", old))
	before := repo.setCalls

	changed, err := s.Rebase(ctx, proj.Reanchor)
	if !changed || err != nil {
		t.Fatalf("期望平移成功，实际 changed=%v err=%v", changed, err)
	}
	got, _ := s.Get("L1")
	want := time.Date(2024, 3, 11, 10, 0, 0, 0, testLoc)
	if !got.StartDate.Equal(want) || got.EndDate.Sub(got.StartDate) != 2*time.Hour {
		t.Errorf("平移结果不符: %v-%v", got.StartDate, got.EndDate)
	}

	changed, _ = s.Rebase(ctx, proj.Reanchor)
	if changed {
		t.Error("已在本周时再次平移应无变化")
	}
	if repo.setCalls != before+1 {
		t.Errorf("无变化时不应写快照，写入次数 %d", repo.setCalls-before)
	}
}

func TestEncodeSessions_EmptyIsArray(t *testing.T) {
	raw, err := EncodeSessions(nil)
	if err != nil || raw != "[]" {
		t.Errorf("期望 []，实际 %q err=%v", raw, err)
	}
}

func TestEncodeSessions_FieldNames(t *testing.T) {
	raw, _ := EncodeSessions([]model.ScheduledSession{timed("L1", "B1", testNow)})
	for _, field := range []string{`"id"`, `"title"`, `"type"`, `"location"`, `"lecturer"`, `"startDate"`, `"endDate"`, `"backgroundColor"`, `"customText"`, `"linkedId"`} {
		if !strings.Contains(raw, field) {
			t.Errorf("快照缺少字段 %s: %s", field, raw)
		}
	}
}

func TestDecodeSessions_InterpretsInLocation(t *testing.T) {
	// UTC 06:30 即 testLoc 08:30，落在时间窗内
	utcStart := time.Date(2024, 3, 12, 6, 30, 0, 0, time.UTC)
	raw, _ := EncodeSessions([]model.ScheduledSession{
		{ID: "OK", StartDate: utcStart, EndDate: utcStart.Add(time.Hour)},
		{ID: "SAT", StartDate: time.Date(2024, 3, 16, 10, 0, 0, 0, testLoc), EndDate: time.Date(2024, 3, 16, 11, 0, 0, 0, testLoc)},
	})

	got, dropped, err := DecodeSessions(raw, testWindow, testLoc)
	if err != nil {
		t.Fatalf("DecodeSessions 失败: %v", err)
	}
	if len(got) != 1 || got[0].ID != "OK" || dropped != 1 {
		t.Errorf("期望保留 OK、丢弃 1 条，实际 %v dropped=%d", ids(got), dropped)
	}
}
