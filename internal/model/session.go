package model

import "time"

// ScheduledSession 工作课表中的一条具体课程实例
// JSON 字段名即持久化快照格式，不可随意修改
type ScheduledSession struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Type            string    `json:"type"`
	Location        string    `json:"location"`
	Lecturer        string    `json:"lecturer"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	BackgroundColor string    `json:"backgroundColor"`
	CustomText      string    `json:"customText"`
	LinkedID        string    `json:"linkedId,omitempty"`
}

// SessionPatch 对已存在课程的局部更新，nil 字段保持不变
type SessionPatch struct {
	BackgroundColor *string
	CustomText      *string
}

// CustomSessionDraft 用户自建课程的草稿
type CustomSessionDraft struct {
	Title      string
	Day        Weekday
	StartTime  string
	EndTime    string
	Location   string
	CustomText string
	Color      string
}
