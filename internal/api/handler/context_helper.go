package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"course-planner/internal/service"
	"course-planner/pkg/response"
)

// MustGetParam 从路径中安全提取非空参数。
// 参数为空时写入 400 响应并返回 false，调用方应直接 return。
func MustGetParam(c *gin.Context, name, label string) (string, bool) {
	v := strings.TrimSpace(c.Param(name))
	if v == "" {
		response.BadRequest(c, 10001, label+"不能为空")
		return "", false
	}
	return v, true
}

// respondOutcome 将课表操作结果映射为 HTTP 响应
// 被拒绝的操作同样携带 Outcome，便于前端展示冲突详情
func respondOutcome(c *gin.Context, out service.Outcome) {
	switch out.Status {
	case service.StatusOK:
		response.OK(c, out)
	case service.StatusAlreadySelected:
		response.ErrorWithData(c, http.StatusConflict, 20001, out.Reason, out)
	case service.StatusConflictRejected:
		response.ErrorWithData(c, http.StatusConflict, 20002, out.Reason, out)
	case service.StatusNotFound:
		response.ErrorWithData(c, http.StatusNotFound, 20003, out.Reason, out)
	case service.StatusInvalid:
		response.ErrorWithData(c, http.StatusBadRequest, 20004, out.Reason, out)
	default:
		response.InternalError(c)
	}
}
