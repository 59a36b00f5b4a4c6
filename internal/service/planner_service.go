package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"course-planner/internal/catalog"
	"course-planner/internal/model"
)

// ── 操作结果 ──

// OutcomeStatus 操作结果状态；拒绝是返回值，不是 error
type OutcomeStatus string

const (
	StatusOK               OutcomeStatus = "ok"
	StatusAlreadySelected  OutcomeStatus = "already_selected"
	StatusConflictRejected OutcomeStatus = "conflict_rejected"
	StatusNotFound         OutcomeStatus = "not_found"
	StatusInvalid          OutcomeStatus = "invalid"
)

// persistWarning 快照写入失败时附带的提示
const persistWarning = "课表已更新，但保存失败，下次打开时将看不到本次修改"

// Outcome 选课/删课/编辑等操作的结果
type Outcome struct {
	Status   OutcomeStatus            `json:"status"`
	Reason   string                   `json:"reason,omitempty"`
	Conflict *ConflictRejection       `json:"conflict,omitempty"`
	Sessions []model.ScheduledSession `json:"sessions,omitempty"`
	Warning  string                   `json:"warning,omitempty"`
}

// OK 操作是否成功
func (o Outcome) OK() bool { return o.Status == StatusOK }

func rejected(status OutcomeStatus, reason string) Outcome {
	return Outcome{Status: status, Reason: reason}
}

// ── PlannerService 接口 ──────────────────────────────────
//
// 设计说明：
//   - 选课流程：解析模板 → 按 id 过滤已存在 → 投影 → 冲突检查 → 着色 → 提交
//   - 关联对半数已存在时只补齐缺失的一半（按 id 判断存在性，而非按对）
//   - 至多一门课处于"待删除/编辑"状态，重新选中会替换而非叠加
//   - 所有公开方法由同一把互斥锁串行化，每个操作原子执行完毕
// ─────────────────────────────────────────────────────────────

// PlannerService 选课控制器
type PlannerService interface {
	// SelectTemplate 选择单个模板或关联对
	SelectTemplate(ctx context.Context, sel Selection) Outcome
	// PreviewTemplate 仅投影不提交，用于悬停预览
	PreviewTemplate(sel Selection) Outcome
	// RemoveSession 删除课程（级联删除关联课程）
	RemoveSession(ctx context.Context, id string) Outcome
	// RemoveAll 清空课表
	RemoveAll(ctx context.Context) Outcome
	// ArmForEditing 选中一门课进入待删除/编辑状态
	ArmForEditing(id string) Outcome
	// CancelArming 取消选中
	CancelArming() Outcome
	// Armed 当前选中的课程 id
	Armed() (string, bool)
	// Recolor 修改背景色
	Recolor(ctx context.Context, id, color string) Outcome
	// SetNote 修改备注
	SetNote(ctx context.Context, id, text string) Outcome
	// SaveCustomSession 保存自建课程（不做冲突检查）
	SaveCustomSession(ctx context.Context, draft model.CustomSessionDraft) Outcome
	// SetAllowConflicts 切换是否允许同课程同类型重复
	SetAllowConflicts(allow bool)
	// AllowConflicts 当前冲突容忍开关
	AllowConflicts() bool
	// ListAll 按插入顺序列出课表
	ListAll() []model.ScheduledSession
	// IsPresent 课程是否已在课表中
	IsPresent(id string) bool
	// RollWeek 将全部课程平移到当前展示周
	RollWeek(ctx context.Context) Outcome
}

type plannerService struct {
	mu             sync.Mutex
	catalog        *catalog.Catalog
	store          *ScheduleStore
	projector      *WeekProjector
	allowConflicts bool
	armedID        string
	newID          func() string
	logger         *zap.Logger
}

// NewPlannerService 创建 PlannerService 实例
// store 应已通过 Load 从快照恢复
func NewPlannerService(
	cat *catalog.Catalog,
	store *ScheduleStore,
	projector *WeekProjector,
	allowConflicts bool,
	logger *zap.Logger,
) PlannerService {
	return &plannerService{
		catalog:        cat,
		store:          store,
		projector:      projector,
		allowConflicts: allowConflicts,
		newID:          uuid.NewString,
		logger:         logger,
	}
}

// ════════════════════════════════════════════════════════════
// SelectTemplate 选课
// ════════════════════════════════════════════════════════════

func (s *plannerService) SelectTemplate(ctx context.Context, sel Selection) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. 解析模板
	templates, out := s.resolve(sel)
	if out != nil {
		return *out
	}

	// 2. 按 id 过滤已存在的模板；全部存在则视为重复选择
	missing := make([]model.LectureTemplate, 0, len(templates))
	for _, t := range templates {
		if !s.store.IsPresent(t.ID) {
			missing = append(missing, t)
		}
	}
	if len(missing) == 0 {
		return rejected(StatusAlreadySelected, "所选课程已在课表中")
	}

	// 3. 投影
	candidates, out := s.project(missing)
	if out != nil {
		return *out
	}

	// 4. 冲突检查（整批）
	if rej := CheckConflicts(candidates, s.store.ListAll(), s.allowConflicts); rej != nil {
		s.logger.Info("选课冲突被拒绝",
			zap.String("key", sel.Key()),
			zap.String("title", rej.Title),
			zap.String("type", rej.Type),
		)
		return Outcome{Status: StatusConflictRejected, Reason: rej.Reason(), Conflict: rej}
	}

	// 5. 着色并提交
	for i := range candidates {
		candidates[i].BackgroundColor = ColorFor(candidates[i].Type)
	}
	return s.commit(ctx, candidates)
}

// ════════════════════════════════════════════════════════════
// PreviewTemplate 悬停预览
// ════════════════════════════════════════════════════════════

func (s *plannerService) PreviewTemplate(sel Selection) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates, out := s.resolve(sel)
	if out != nil {
		return *out
	}
	drafts, out := s.project(templates)
	if out != nil {
		return *out
	}
	for i := range drafts {
		drafts[i].BackgroundColor = ColorFor(drafts[i].Type)
	}
	return Outcome{Status: StatusOK, Sessions: drafts}
}

// ════════════════════════════════════════════════════════════
// 删除
// ════════════════════════════════════════════════════════════

func (s *plannerService) RemoveSession(ctx context.Context, id string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.store.Remove(ctx, id)
	out := Outcome{Status: StatusOK, Sessions: removed}
	if err != nil {
		s.warnPersist("删除课程", err)
		out.Warning = persistWarning
	}

	for _, sess := range removed {
		if sess.ID == s.armedID {
			s.armedID = ""
			break
		}
	}
	return out
}

func (s *plannerService) RemoveAll(ctx context.Context) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.armedID = ""
	out := Outcome{Status: StatusOK}
	if err := s.store.RemoveAll(ctx); err != nil {
		s.warnPersist("清空课表", err)
		out.Warning = persistWarning
	}
	return out
}

// ════════════════════════════════════════════════════════════
// 选中状态机：Idle ↔ Armed(id)
// ════════════════════════════════════════════════════════════

func (s *plannerService) ArmForEditing(id string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.store.Get(id)
	if !ok {
		return rejected(StatusNotFound, "课程不在课表中")
	}
	s.armedID = id
	return Outcome{Status: StatusOK, Sessions: []model.ScheduledSession{sess}}
}

func (s *plannerService) CancelArming() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.armedID = ""
	return Outcome{Status: StatusOK}
}

func (s *plannerService) Armed() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.armedID, s.armedID != ""
}

// ════════════════════════════════════════════════════════════
// 颜色 / 备注
// ════════════════════════════════════════════════════════════

func (s *plannerService) Recolor(ctx context.Context, id, color string) Outcome {
	color = strings.TrimSpace(color)
	if color == "" {
		return rejected(StatusInvalid, "颜色不能为空")
	}
	return s.mutate(ctx, id, model.SessionPatch{BackgroundColor: &color}, "修改颜色")
}

func (s *plannerService) SetNote(ctx context.Context, id, text string) Outcome {
	return s.mutate(ctx, id, model.SessionPatch{CustomText: &text}, "修改备注")
}

func (s *plannerService) mutate(ctx context.Context, id string, patch model.SessionPatch, action string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := s.store.Mutate(ctx, id, patch)
	if !found {
		return rejected(StatusNotFound, "课程不在课表中")
	}
	sess, _ := s.store.Get(id)
	out := Outcome{Status: StatusOK, Sessions: []model.ScheduledSession{sess}}
	if err != nil {
		s.warnPersist(action, err)
		out.Warning = persistWarning
	}
	return out
}

// ════════════════════════════════════════════════════════════
// SaveCustomSession 自建课程
// ════════════════════════════════════════════════════════════

func (s *plannerService) SaveCustomSession(ctx context.Context, draft model.CustomSessionDraft) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return rejected(StatusInvalid, "课程名称不能为空")
	}
	if draft.Day < model.Sunday || draft.Day > model.Friday {
		return rejected(StatusInvalid, "星期必须在周日至周五之间")
	}
	start, err := model.ParseClock(draft.StartTime)
	if err != nil {
		return rejected(StatusInvalid, "开始时间格式无效")
	}
	end, err := model.ParseClock(draft.EndTime)
	if err != nil {
		return rejected(StatusInvalid, "结束时间格式无效")
	}
	window := s.catalog.Window()
	if !window.Contains(start, end) {
		return rejected(StatusInvalid, "时间必须在 "+window.Start.String()+"-"+window.End.String()+" 内且开始早于结束")
	}

	color := strings.TrimSpace(draft.Color)
	if color == "" {
		color = ColorFor(model.TypeCustom)
	}

	sess := model.ScheduledSession{
		ID:              s.newID(),
		Title:           title,
		Type:            model.TypeCustom,
		Location:        draft.Location,
		StartDate:       s.projector.At(draft.Day, start),
		EndDate:         s.projector.At(draft.Day, end),
		BackgroundColor: color,
		CustomText:      draft.CustomText,
	}
	return s.commit(ctx, []model.ScheduledSession{sess})
}

// ════════════════════════════════════════════════════════════
// 开关 / 查询 / 周切换
// ════════════════════════════════════════════════════════════

func (s *plannerService) SetAllowConflicts(allow bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.allowConflicts = allow
}

func (s *plannerService) AllowConflicts() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.allowConflicts
}

func (s *plannerService) ListAll() []model.ScheduledSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.ListAll()
}

func (s *plannerService) IsPresent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.IsPresent(id)
}

func (s *plannerService) RollWeek(ctx context.Context) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := s.store.Rebase(ctx, s.projector.Reanchor)
	out := Outcome{Status: StatusOK}
	if changed {
		out.Sessions = s.store.ListAll()
		s.logger.Info("课表已平移到当前周", zap.Time("week_start", s.projector.WeekStart()))
	}
	if err != nil {
		s.warnPersist("周切换", err)
		out.Warning = persistWarning
	}
	return out
}

// ── 内部辅助方法 ──

// resolve 解析选择请求对应的模板
// 单选关联模板时连同其关联模板一起返回；成对选择必须是互相关联的两个模板
func (s *plannerService) resolve(sel Selection) ([]model.LectureTemplate, *Outcome) {
	switch v := sel.(type) {
	case SingleSelection:
		t, ok := s.catalog.TemplateByID(v.ID)
		if !ok {
			out := rejected(StatusNotFound, "课程模板不存在: "+v.ID)
			return nil, &out
		}
		if !t.IsLinked() {
			return []model.LectureTemplate{t}, nil
		}
		partner, ok := s.catalog.TemplateByID(t.LinkedID)
		if !ok {
			out := rejected(StatusNotFound, "关联模板不存在: "+t.LinkedID)
			return nil, &out
		}
		return []model.LectureTemplate{t, partner}, nil

	case PairSelection:
		first, ok := s.catalog.TemplateByID(v.First)
		if !ok {
			out := rejected(StatusNotFound, "课程模板不存在: "+v.First)
			return nil, &out
		}
		second, ok := s.catalog.TemplateByID(v.Second)
		if !ok {
			out := rejected(StatusNotFound, "课程模板不存在: "+v.Second)
			return nil, &out
		}
		if first.LinkedID != second.ID {
			out := rejected(StatusInvalid, "所选模板不是关联对: "+v.Key())
			return nil, &out
		}
		return []model.LectureTemplate{first, second}, nil

	default:
		out := rejected(StatusInvalid, "无效的选择")
		return nil, &out
	}
}

func (s *plannerService) project(templates []model.LectureTemplate) ([]model.ScheduledSession, *Outcome) {
	drafts := make([]model.ScheduledSession, 0, len(templates))
	for _, t := range templates {
		d, err := s.projector.Project(t)
		if err != nil {
			// 目录加载时已校验，走到这里说明目录数据损坏
			s.logger.Error("模板投影失败", zap.String("template_id", t.ID), zap.Error(err))
			out := rejected(StatusInvalid, err.Error())
			return nil, &out
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

func (s *plannerService) commit(ctx context.Context, sessions []model.ScheduledSession) Outcome {
	err := s.store.Add(ctx, sessions...)
	switch {
	case err == nil:
		return Outcome{Status: StatusOK, Sessions: sessions}
	case errors.Is(err, ErrSessionExists):
		return rejected(StatusAlreadySelected, "所选课程已在课表中")
	default:
		s.warnPersist("新增课程", err)
		return Outcome{Status: StatusOK, Sessions: sessions, Warning: persistWarning}
	}
}

func (s *plannerService) warnPersist(action string, err error) {
	s.logger.Warn("课表快照保存失败，内存状态保留",
		zap.String("action", action),
		zap.Error(err),
	)
}
