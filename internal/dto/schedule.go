package dto

import "course-planner/internal/model"

// ── 课表模块 DTO ──

// SelectionRequest 选课/预览请求，key 为 "id" 或 "idA,idB"
type SelectionRequest struct {
	Key string `json:"key" binding:"required,max=200"`
}

// CustomSessionRequest 保存自建课程请求
type CustomSessionRequest struct {
	Title      string `json:"title"       binding:"required,max=200"`
	Day        string `json:"day"         binding:"required"` // "Monday" 或 "ב"
	StartTime  string `json:"start_time"  binding:"required"` // "18:00"
	EndTime    string `json:"end_time"    binding:"required"` // "19:30"
	Location   string `json:"location"    binding:"max=200"`
	CustomText string `json:"custom_text" binding:"max=1000"`
	Color      string `json:"color"       binding:"max=32"`
}

// ColorRequest 修改背景色请求
type ColorRequest struct {
	Color string `json:"color" binding:"required,max=32"`
}

// NoteRequest 修改备注请求，空字符串表示清空
type NoteRequest struct {
	Text string `json:"text" binding:"max=1000"`
}

// ArmRequest 选中课程请求
type ArmRequest struct {
	ID string `json:"id" binding:"required"`
}

// AllowConflictsRequest 冲突开关请求
type AllowConflictsRequest struct {
	Allow *bool `json:"allow" binding:"required"`
}

// ICSExportQuery ICS 导出参数，weeks 为 0 表示不限重复次数
type ICSExportQuery struct {
	Weeks int `form:"weeks" binding:"omitempty,min=1,max=52"`
}

// ScheduleResponse 课表视图
type ScheduleResponse struct {
	Sessions       []model.ScheduledSession `json:"sessions"`
	ArmedID        string                   `json:"armed_id,omitempty"`
	AllowConflicts bool                     `json:"allow_conflicts"`
}

// PresenceResponse 课程是否在课表中
type PresenceResponse struct {
	ID      string `json:"id"`
	Present bool   `json:"present"`
}

// ArmedResponse 当前选中状态
type ArmedResponse struct {
	ID    string `json:"id,omitempty"`
	Armed bool   `json:"armed"`
}

// AllowConflictsResponse 冲突开关状态
type AllowConflictsResponse struct {
	Allow bool `json:"allow"`
}
