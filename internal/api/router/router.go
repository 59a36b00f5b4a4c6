package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"course-planner/config"
	"course-planner/internal/api/handler"
	"course-planner/internal/api/middleware"
	"course-planner/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时限流中间件降级放行
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// 配置已在加载时校验
	rateWindow, _ := time.ParseDuration(cfg.Server.RateWindow)

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(rdb, cfg.Server.RateLimit, rateWindow, logger))
	{
		// 课程目录模块
		catalog := v1.Group("/catalog")
		{
			catalog.GET("/titles", h.Catalog.ListTitles)
			catalog.GET("/options", h.Catalog.ListOptions)
			catalog.GET("/templates/:id", h.Catalog.GetTemplate)
		}

		// 工作课表模块
		schedule := v1.Group("/schedule")
		{
			schedule.GET("", h.Schedule.GetSchedule)
			schedule.DELETE("", h.Schedule.RemoveAll)

			schedule.POST("/selections", h.Schedule.Select)
			schedule.POST("/preview", h.Schedule.Preview)
			schedule.POST("/custom", h.Schedule.SaveCustom)

			schedule.GET("/sessions/:id/present", h.Schedule.IsPresent)
			schedule.DELETE("/sessions/:id", h.Schedule.RemoveSession)
			schedule.PUT("/sessions/:id/color", h.Schedule.Recolor)
			schedule.PUT("/sessions/:id/note", h.Schedule.SetNote)

			schedule.GET("/armed", h.Schedule.GetArmed)
			schedule.PUT("/armed", h.Schedule.Arm)
			schedule.DELETE("/armed", h.Schedule.CancelArming)

			schedule.GET("/allow-conflicts", h.Schedule.GetAllowConflicts)
			schedule.PUT("/allow-conflicts", h.Schedule.SetAllowConflicts)
		}

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/excel", h.Export.ExportExcel)
			export.GET("/ics", h.Export.ExportICS)
		}
	}

	return r
}
