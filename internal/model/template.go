package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ── 课程类型 ──

const (
	TypeLecture  = "lecture"
	TypeLab      = "lab"
	TypeExercise = "exercise"
	TypeSeminar  = "seminar"
	TypeCustom   = "custom"

	// TypeUnknown 目录中未标注类型的占位符，投影时归一为 lecture
	TypeUnknown = "N/A"
)

// NormalizeType 将空类型与 "N/A" 归一为 lecture，其余类型原样返回
func NormalizeType(t string) string {
	if t == "" || t == TypeUnknown {
		return TypeLecture
	}
	return t
}

// LectureTemplate 课程目录中的每周重复模板（只读）
type LectureTemplate struct {
	ID        string `yaml:"id"         json:"id"`
	LinkedID  string `yaml:"linked_id"  json:"linkedId,omitempty"`
	Title     string `yaml:"title"      json:"title"`
	Day       string `yaml:"day"        json:"day"`
	StartTime string `yaml:"start_time" json:"startTime"` // "10:00"
	EndTime   string `yaml:"end_time"   json:"endTime"`   // "12:00"
	Type      string `yaml:"type"       json:"type"`
	Location  string `yaml:"location"   json:"location"`
	Lecturer  string `yaml:"lecturer"   json:"lecturer"`
}

// IsLinked 是否与另一模板成对
func (t *LectureTemplate) IsLinked() bool { return t.LinkedID != "" }

// ── 星期 ──

// Weekday 课表可用的星期索引，0=周日 … 5=周五，周六不排课
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
)

var weekdayNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// String 返回英文星期名
func (d Weekday) String() string {
	if d < Sunday || d > Friday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// dayTable 固定星期符号表：英文名（不区分大小写）与原目录使用的希伯来字母
var dayTable = map[string]Weekday{
	"sunday":    Sunday,
	"monday":    Monday,
	"tuesday":   Tuesday,
	"wednesday": Wednesday,
	"thursday":  Thursday,
	"friday":    Friday,
	"א":         Sunday,
	"ב":         Monday,
	"ג":         Tuesday,
	"ד":         Wednesday,
	"ה":         Thursday,
	"ו":         Friday,
}

// ParseWeekday 查表解析星期符号，未知符号（含周六）返回 false
func ParseWeekday(symbol string) (Weekday, bool) {
	d, ok := dayTable[strings.ToLower(strings.TrimSpace(symbol))]
	return d, ok
}

// ── 时刻 ──

// ClockTime 不含日期的时刻
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock 解析 "HH:MM"
func ParseClock(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return ClockTime{}, fmt.Errorf("无效的时刻 %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return ClockTime{}, fmt.Errorf("无效的时刻 %q: %w", s, err)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return ClockTime{}, fmt.Errorf("无效的时刻 %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return ClockTime{}, fmt.Errorf("无效的时刻 %q", s)
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

// Minutes 自零点起的分钟数
func (c ClockTime) Minutes() int { return c.Hour*60 + c.Minute }

// String 格式化为 "HH:MM"
func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// DayWindow 每日可排课时间窗，例如 08:00–21:00
type DayWindow struct {
	Start ClockTime
	End   ClockTime
}

// Contains 判断 [start, end] 是否落在时间窗内且 start < end
func (w DayWindow) Contains(start, end ClockTime) bool {
	return start.Minutes() < end.Minutes() &&
		start.Minutes() >= w.Start.Minutes() &&
		end.Minutes() <= w.End.Minutes()
}

// ParseDayWindow 解析 "08:00" / "21:00" 形式的时间窗
func ParseDayWindow(start, end string) (DayWindow, error) {
	s, err := ParseClock(start)
	if err != nil {
		return DayWindow{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return DayWindow{}, err
	}
	if s.Minutes() >= e.Minutes() {
		return DayWindow{}, fmt.Errorf("时间窗起点 %s 必须早于终点 %s", s, e)
	}
	return DayWindow{Start: s, End: e}, nil
}
