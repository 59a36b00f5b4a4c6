package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"course-planner/internal/model"
	"course-planner/internal/repository"
)

// ── 工作课表存储错误 ──

var (
	// ErrSessionExists 新增的课程 id 已在课表中（调用方应先用 IsPresent 过滤）
	ErrSessionExists = errors.New("课程已在课表中")
	// ErrSnapshotWrite 快照写入失败：内存状态已更新，但未能持久化
	ErrSnapshotWrite = errors.New("课表快照保存失败")
)

// ScheduleStore 工作课表：按 id 唯一、保留插入顺序
//
// 每次变更后同步全量序列化并写入快照存储，不做增量持久化。
// 本身不加锁，由 PlannerService 串行调用。
type ScheduleStore struct {
	kv       repository.SnapshotRepository
	key      string
	window   model.DayWindow
	loc      *time.Location
	sessions []model.ScheduledSession
	index    map[string]int
	logger   *zap.Logger
}

// NewScheduleStore 创建空课表，需调用 Load 从快照恢复
// window 与 loc 用于恢复时校验快照记录（星期、时间窗均按 loc 解释）
func NewScheduleStore(kv repository.SnapshotRepository, key string, window model.DayWindow, loc *time.Location, logger *zap.Logger) *ScheduleStore {
	if loc == nil {
		loc = time.Local
	}
	return &ScheduleStore{
		kv:     kv,
		key:    key,
		window: window,
		loc:    loc,
		index:  make(map[string]int),
		logger: logger,
	}
}

// Load 从快照恢复课表
//
// 快照不存在、读取失败或解析失败均视为空课表，只记日志不返回错误。
func (s *ScheduleStore) Load(ctx context.Context) int {
	s.reset(nil)

	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("读取课表快照失败，使用空课表", zap.String("key", s.key), zap.Error(err))
		return 0
	}
	if !found {
		s.logger.Info("未找到课表快照，使用空课表", zap.String("key", s.key))
		return 0
	}

	sessions, dropped, err := DecodeSessions(raw, s.window, s.loc)
	if err != nil {
		s.logger.Warn("课表快照解析失败，使用空课表", zap.String("key", s.key), zap.Error(err))
		return 0
	}
	if dropped > 0 {
		s.logger.Warn("快照中存在无效课程，已丢弃", zap.String("key", s.key), zap.Int("dropped", dropped))
	}

	// 快照中的重复 id 只保留第一条
	deduped := make([]model.ScheduledSession, 0, len(sessions))
	seen := make(map[string]bool, len(sessions))
	for _, sess := range sessions {
		if seen[sess.ID] {
			continue
		}
		seen[sess.ID] = true
		deduped = append(deduped, sess)
	}
	s.reset(deduped)

	s.logger.Info("课表快照已恢复", zap.Int("sessions", len(s.sessions)))
	return len(s.sessions)
}

// ────────────────────── 变更 ──────────────────────

// Add 一次性追加多条课程并持久化
//
// 任一 id 已存在（或批内重复）时返回 ErrSessionExists，课表不变。
func (s *ScheduleStore) Add(ctx context.Context, sessions ...model.ScheduledSession) error {
	if len(sessions) == 0 {
		return nil
	}
	batch := make(map[string]bool, len(sessions))
	for _, sess := range sessions {
		if _, ok := s.index[sess.ID]; ok || batch[sess.ID] {
			return fmt.Errorf("%w: %s", ErrSessionExists, sess.ID)
		}
		batch[sess.ID] = true
	}

	for _, sess := range sessions {
		s.index[sess.ID] = len(s.sessions)
		s.sessions = append(s.sessions, sess)
	}
	return s.persist(ctx)
}

// Remove 删除课程；若其 linkedId 指向的课程也在课表中，同一次变更中一并删除
//
// id 不存在时为幂等空操作，不写快照。返回被删除的课程。
func (s *ScheduleStore) Remove(ctx context.Context, id string) ([]model.ScheduledSession, error) {
	i, ok := s.index[id]
	if !ok {
		return nil, nil
	}

	drop := map[string]bool{id: true}
	if linked := s.sessions[i].LinkedID; linked != "" {
		drop[linked] = true
	}

	var removed []model.ScheduledSession
	kept := make([]model.ScheduledSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if drop[sess.ID] {
			removed = append(removed, sess)
			continue
		}
		kept = append(kept, sess)
	}
	s.reset(kept)

	return removed, s.persist(ctx)
}

// RemoveAll 清空课表并删除快照
func (s *ScheduleStore) RemoveAll(ctx context.Context) error {
	s.reset(nil)
	if err := s.kv.Delete(ctx, s.key); err != nil {
		s.logger.Warn("删除课表快照失败", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
	}
	return nil
}

// Mutate 就地更新颜色/备注，id 不变；不存在时返回 false 且不写快照
func (s *ScheduleStore) Mutate(ctx context.Context, id string, patch model.SessionPatch) (bool, error) {
	i, ok := s.index[id]
	if !ok {
		return false, nil
	}
	if patch.BackgroundColor != nil {
		s.sessions[i].BackgroundColor = *patch.BackgroundColor
	}
	if patch.CustomText != nil {
		s.sessions[i].CustomText = *patch.CustomText
	}
	return true, s.persist(ctx)
}

// Rebase 用 reanchor 平移每条课程的起止时间，有变化时持久化
func (s *ScheduleStore) Rebase(ctx context.Context, reanchor func(time.Time) time.Time) (bool, error) {
	changed := false
	for i := range s.sessions {
		start := reanchor(s.sessions[i].StartDate)
		if start.Equal(s.sessions[i].StartDate) {
			continue
		}
		duration := s.sessions[i].EndDate.Sub(s.sessions[i].StartDate)
		s.sessions[i].StartDate = start
		s.sessions[i].EndDate = start.Add(duration)
		changed = true
	}
	if !changed {
		return false, nil
	}
	return true, s.persist(ctx)
}

// ────────────────────── 查询 ──────────────────────

// IsPresent 课程 id 是否已在课表中
func (s *ScheduleStore) IsPresent(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Get 按 id 查询
func (s *ScheduleStore) Get(id string) (model.ScheduledSession, bool) {
	i, ok := s.index[id]
	if !ok {
		return model.ScheduledSession{}, false
	}
	return s.sessions[i], true
}

// ListAll 按插入顺序返回课表副本
func (s *ScheduleStore) ListAll() []model.ScheduledSession {
	out := make([]model.ScheduledSession, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Len 课程数量
func (s *ScheduleStore) Len() int { return len(s.sessions) }

// ── 内部辅助方法 ──

func (s *ScheduleStore) reset(sessions []model.ScheduledSession) {
	s.sessions = sessions
	s.index = make(map[string]int, len(sessions))
	for i, sess := range sessions {
		s.index[sess.ID] = i
	}
}

func (s *ScheduleStore) persist(ctx context.Context) error {
	raw, err := EncodeSessions(s.sessions)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		s.logger.Warn("写入课表快照失败", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
	}
	return nil
}

// ── 快照编解码 ──

// EncodeSessions 序列化为 JSON 数组（空课表编码为 []）
func EncodeSessions(sessions []model.ScheduledSession) (string, error) {
	if sessions == nil {
		sessions = []model.ScheduledSession{}
	}
	b, err := json.Marshal(sessions)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeSessions 反序列化快照，丢弃无效记录并返回丢弃条数
//
// 有效记录：id 非空；按 loc 解释时起止在同一天、星期为周日至周五、
// 起止时刻落在 window 内且 startDate < endDate。
func DecodeSessions(raw string, window model.DayWindow, loc *time.Location) ([]model.ScheduledSession, int, error) {
	var sessions []model.ScheduledSession
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		return nil, 0, err
	}
	valid := sessions[:0]
	for _, sess := range sessions {
		if sess.ID == "" || !fitsWeek(sess, window, loc) {
			continue
		}
		valid = append(valid, sess)
	}
	return valid, len(sessions) - len(valid), nil
}

func fitsWeek(sess model.ScheduledSession, window model.DayWindow, loc *time.Location) bool {
	start := sess.StartDate.In(loc)
	end := sess.EndDate.In(loc)

	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy != ey || sm != em || sd != ed {
		return false
	}
	if day := model.Weekday(start.Weekday()); day < model.Sunday || day > model.Friday {
		return false
	}
	return window.Contains(
		model.ClockTime{Hour: start.Hour(), Minute: start.Minute()},
		model.ClockTime{Hour: end.Hour(), Minute: end.Minute()},
	)
}
