package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"course-planner/internal/dto"
	"course-planner/internal/service"
	"course-planner/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportExcel 导出课表为 Excel
// GET /api/v1/export/excel
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportExcel()
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	writeAttachment(c, filename, contentTypeXLSX, buf.Bytes())
}

// ExportICS 导出课表为 iCalendar
// GET /api/v1/export/ics?weeks=13
func (h *ExportHandler) ExportICS(c *gin.Context) {
	var req dto.ICSExportQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "weeks 必须在 1-52 之间")
		return
	}

	buf, filename, err := h.exportSvc.ExportICS(req.Weeks)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	writeAttachment(c, filename, contentTypeICS, buf.Bytes())
}

func writeAttachment(c *gin.Context, filename, contentType string, body []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, body)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportEmpty):
		response.NotFound(c, 22001, "课表为空，无可导出内容")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
