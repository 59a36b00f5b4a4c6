package service

import (
	"fmt"

	"course-planner/internal/model"
)

// ConflictRejection 冲突拒绝原因：同一课程已存在同类型的课
type ConflictRejection struct {
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Reason 面向用户的描述
func (r *ConflictRejection) Reason() string {
	return fmt.Sprintf("课程 %s 已选择过 %s，每门课程的 lecture/exercise/lab 各只能选一个", r.Title, r.Type)
}

// CheckConflicts 判断候选集合能否整体加入工作课表
//
// allowConflicts 为 false 时，任一候选与现有课程同名同类型，整批拒绝，
// 关联对不会只加入一半。同批候选之间不互相比较（同类型关联对可一起加入）。
// custom 类型不参与冲突分组。返回 nil 表示接受。
func CheckConflicts(candidates, existing []model.ScheduledSession, allowConflicts bool) *ConflictRejection {
	if allowConflicts {
		return nil
	}

	taken := make(map[string]map[string]bool)
	mark := func(s model.ScheduledSession) {
		if taken[s.Title] == nil {
			taken[s.Title] = make(map[string]bool)
		}
		taken[s.Title][s.Type] = true
	}

	for _, s := range existing {
		if s.Type == model.TypeCustom {
			continue
		}
		mark(s)
	}

	for _, c := range candidates {
		if c.Type == model.TypeCustom {
			continue
		}
		if taken[c.Title][c.Type] {
			return &ConflictRejection{Title: c.Title, Type: c.Type}
		}
	}
	return nil
}
