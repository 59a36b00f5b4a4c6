package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"course-planner/internal/dto"
	"course-planner/internal/service"
	"course-planner/pkg/response"
)

// CatalogHandler 课程目录模块 HTTP 处理器
type CatalogHandler struct {
	catalogSvc service.CatalogService
}

// NewCatalogHandler 创建 CatalogHandler
func NewCatalogHandler(catalogSvc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// ListTitles 获取课程名列表（支持搜索）
// GET /api/v1/catalog/titles?q=
func (h *CatalogHandler) ListTitles(c *gin.Context) {
	var req dto.TitlesQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	response.OK(c, dto.TitlesResponse{List: h.catalogSvc.Titles(req.Q)})
}

// ListOptions 获取某门课程的可选项
// GET /api/v1/catalog/options?title=
func (h *CatalogHandler) ListOptions(c *gin.Context) {
	var req dto.OptionsQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "title 不能为空")
		return
	}

	options, err := h.catalogSvc.Options(req.Title)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.OK(c, gin.H{"list": options})
}

// GetTemplate 获取课程模板详情
// GET /api/v1/catalog/templates/:id
func (h *CatalogHandler) GetTemplate(c *gin.Context) {
	id, ok := MustGetParam(c, "id", "模板ID")
	if !ok {
		return
	}

	tpl, err := h.catalogSvc.Template(id)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.OK(c, tpl)
}

func (h *CatalogHandler) handleCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound):
		response.NotFound(c, 21001, "课程模板不存在")
	case errors.Is(err, service.ErrTitleNotFound):
		response.NotFound(c, 21002, "课程不存在")
	default:
		response.InternalError(c)
	}
}
