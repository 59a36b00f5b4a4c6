package dto

// ── 课程目录模块 DTO ──

// TitlesQuery 课程名查询参数
type TitlesQuery struct {
	Q string `form:"q" binding:"omitempty,max=100"`
}

// OptionsQuery 课程可选项查询参数
type OptionsQuery struct {
	Title string `form:"title" binding:"required,max=200"`
}

// TitlesResponse 课程名列表
type TitlesResponse struct {
	List []string `json:"list"`
}
