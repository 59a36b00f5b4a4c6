package service

import "course-planner/internal/model"

// DefaultColor 未知类型的背景色
const DefaultColor = "#9e9e9e"

// ColorFor 课程类型到背景色的全函数映射，未知类型返回 DefaultColor
func ColorFor(sessionType string) string {
	switch sessionType {
	case model.TypeLecture:
		return "#4caf50"
	case model.TypeLab:
		return "#ff9800"
	case model.TypeExercise:
		return "#f44336"
	case model.TypeSeminar:
		return "#2196f3"
	case model.TypeCustom:
		return "#ff5733"
	default:
		return DefaultColor
	}
}
