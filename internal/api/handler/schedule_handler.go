package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"course-planner/internal/dto"
	"course-planner/internal/model"
	"course-planner/internal/service"
	"course-planner/pkg/response"
)

// ScheduleHandler 工作课表模块 HTTP 处理器
type ScheduleHandler struct {
	plannerSvc service.PlannerService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(plannerSvc service.PlannerService) *ScheduleHandler {
	return &ScheduleHandler{plannerSvc: plannerSvc}
}

// GetSchedule 获取当前课表
// GET /api/v1/schedule
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	armedID, _ := h.plannerSvc.Armed()
	response.OK(c, dto.ScheduleResponse{
		Sessions:       h.plannerSvc.ListAll(),
		ArmedID:        armedID,
		AllowConflicts: h.plannerSvc.AllowConflicts(),
	})
}

// IsPresent 查询课程是否已在课表中
// GET /api/v1/schedule/sessions/:id/present
func (h *ScheduleHandler) IsPresent(c *gin.Context) {
	id, ok := MustGetParam(c, "id", "课程ID")
	if !ok {
		return
	}
	response.OK(c, dto.PresenceResponse{ID: id, Present: h.plannerSvc.IsPresent(id)})
}

// Select 选课
// POST /api/v1/schedule/selections
func (h *ScheduleHandler) Select(c *gin.Context) {
	sel, ok := bindSelection(c)
	if !ok {
		return
	}
	respondOutcome(c, h.plannerSvc.SelectTemplate(c.Request.Context(), sel))
}

// Preview 悬停预览
// POST /api/v1/schedule/preview
func (h *ScheduleHandler) Preview(c *gin.Context) {
	sel, ok := bindSelection(c)
	if !ok {
		return
	}
	respondOutcome(c, h.plannerSvc.PreviewTemplate(sel))
}

// SaveCustom 保存自建课程
// POST /api/v1/schedule/custom
func (h *ScheduleHandler) SaveCustom(c *gin.Context) {
	var req dto.CustomSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	day, ok := model.ParseWeekday(req.Day)
	if !ok {
		response.BadRequest(c, 10001, "星期无效")
		return
	}

	out := h.plannerSvc.SaveCustomSession(c.Request.Context(), model.CustomSessionDraft{
		Title:      req.Title,
		Day:        day,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Location:   req.Location,
		CustomText: req.CustomText,
		Color:      req.Color,
	})
	if out.OK() {
		response.Created(c, out)
		return
	}
	respondOutcome(c, out)
}

// RemoveSession 删除课程（级联删除关联课程）
// DELETE /api/v1/schedule/sessions/:id
func (h *ScheduleHandler) RemoveSession(c *gin.Context) {
	id, ok := MustGetParam(c, "id", "课程ID")
	if !ok {
		return
	}
	respondOutcome(c, h.plannerSvc.RemoveSession(c.Request.Context(), id))
}

// RemoveAll 清空课表
// DELETE /api/v1/schedule
func (h *ScheduleHandler) RemoveAll(c *gin.Context) {
	respondOutcome(c, h.plannerSvc.RemoveAll(c.Request.Context()))
}

// Recolor 修改背景色
// PUT /api/v1/schedule/sessions/:id/color
func (h *ScheduleHandler) Recolor(c *gin.Context) {
	id, ok := MustGetParam(c, "id", "课程ID")
	if !ok {
		return
	}
	var req dto.ColorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	respondOutcome(c, h.plannerSvc.Recolor(c.Request.Context(), id, req.Color))
}

// SetNote 修改备注
// PUT /api/v1/schedule/sessions/:id/note
func (h *ScheduleHandler) SetNote(c *gin.Context) {
	id, ok := MustGetParam(c, "id", "课程ID")
	if !ok {
		return
	}
	var req dto.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	respondOutcome(c, h.plannerSvc.SetNote(c.Request.Context(), id, req.Text))
}

// GetArmed 获取当前选中课程
// GET /api/v1/schedule/armed
func (h *ScheduleHandler) GetArmed(c *gin.Context) {
	id, armed := h.plannerSvc.Armed()
	response.OK(c, dto.ArmedResponse{ID: id, Armed: armed})
}

// Arm 选中课程进入删除/编辑状态
// PUT /api/v1/schedule/armed
func (h *ScheduleHandler) Arm(c *gin.Context) {
	var req dto.ArmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	respondOutcome(c, h.plannerSvc.ArmForEditing(req.ID))
}

// CancelArming 取消选中
// DELETE /api/v1/schedule/armed
func (h *ScheduleHandler) CancelArming(c *gin.Context) {
	respondOutcome(c, h.plannerSvc.CancelArming())
}

// GetAllowConflicts 获取冲突开关
// GET /api/v1/schedule/allow-conflicts
func (h *ScheduleHandler) GetAllowConflicts(c *gin.Context) {
	response.OK(c, dto.AllowConflictsResponse{Allow: h.plannerSvc.AllowConflicts()})
}

// SetAllowConflicts 切换冲突开关
// PUT /api/v1/schedule/allow-conflicts
func (h *ScheduleHandler) SetAllowConflicts(c *gin.Context) {
	var req dto.AllowConflictsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	h.plannerSvc.SetAllowConflicts(*req.Allow)
	response.OK(c, dto.AllowConflictsResponse{Allow: *req.Allow})
}

// bindSelection 解析请求体中的选择键
func bindSelection(c *gin.Context) (service.Selection, bool) {
	var req dto.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return nil, false
	}
	sel, err := service.ParseSelectionKey(req.Key)
	if err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "选择键格式无效", "key 应为 \"id\" 或 \"idA,idB\"")
		return nil, false
	}
	return sel, true
}
