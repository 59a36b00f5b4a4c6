package service

import (
	"fmt"
	"time"

	"course-planner/internal/catalog"
	"course-planner/internal/model"
)

// Clock 时间源，测试中注入固定时间
type Clock interface {
	Now() time.Time
}

// SystemClock 系统时钟
type SystemClock struct{}

// Now 当前时间
func (SystemClock) Now() time.Time { return time.Now() }

// WeekProjector 将每周模板投影到当前展示周的具体时刻
//
// 展示周以最近的周日 00:00（展示时区）为锚点，每次调用都从 Clock 重新推导，
// 不缓存"本周"。
type WeekProjector struct {
	clock Clock
	loc   *time.Location
}

// NewWeekProjector 创建 WeekProjector
func NewWeekProjector(clock Clock, loc *time.Location) *WeekProjector {
	if clock == nil {
		clock = SystemClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &WeekProjector{clock: clock, loc: loc}
}

// WeekStart 当前展示周的锚点（周日 00:00）
func (p *WeekProjector) WeekStart() time.Time {
	now := p.clock.Now().In(p.loc)
	y, m, d := now.Date()
	return time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, p.loc)
}

// At 本周某天某时刻
func (p *WeekProjector) At(day model.Weekday, c model.ClockTime) time.Time {
	return p.at(p.WeekStart(), day, c)
}

func (p *WeekProjector) at(anchor time.Time, day model.Weekday, c model.ClockTime) time.Time {
	y, m, d := anchor.Date()
	return time.Date(y, m, d+int(day), c.Hour, c.Minute, 0, 0, p.loc)
}

// Project 将模板投影为本周的课程草稿（未分配颜色）
//
// 星期符号不在固定表内属于目录数据错误，直接返回 ErrCatalogIntegrity，不做默认回退。
func (p *WeekProjector) Project(t model.LectureTemplate) (model.ScheduledSession, error) {
	day, ok := model.ParseWeekday(t.Day)
	if !ok {
		return model.ScheduledSession{}, fmt.Errorf("%w: 模板 %q 的星期 %q 未知", catalog.ErrCatalogIntegrity, t.ID, t.Day)
	}
	start, err := model.ParseClock(t.StartTime)
	if err != nil {
		return model.ScheduledSession{}, fmt.Errorf("%w: 模板 %q: %v", catalog.ErrCatalogIntegrity, t.ID, err)
	}
	end, err := model.ParseClock(t.EndTime)
	if err != nil {
		return model.ScheduledSession{}, fmt.Errorf("%w: 模板 %q: %v", catalog.ErrCatalogIntegrity, t.ID, err)
	}

	anchor := p.WeekStart()
	return model.ScheduledSession{
		ID:        t.ID,
		Title:     t.Title,
		Type:      model.NormalizeType(t.Type),
		Location:  t.Location,
		Lecturer:  t.Lecturer,
		StartDate: p.at(anchor, day, start),
		EndDate:   p.at(anchor, day, end),
		LinkedID:  t.LinkedID,
	}, nil
}

// Reanchor 把任意时刻平移到本周同一星期、同一时刻
func (p *WeekProjector) Reanchor(t time.Time) time.Time {
	local := t.In(p.loc)
	return p.at(p.WeekStart(), model.Weekday(local.Weekday()), model.ClockTime{Hour: local.Hour(), Minute: local.Minute()})
}
