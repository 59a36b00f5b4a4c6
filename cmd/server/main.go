package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"course-planner/config"
	"course-planner/internal/api/handler"
	"course-planner/internal/api/router"
	"course-planner/internal/catalog"
	"course-planner/internal/model"
	"course-planner/internal/service"
	applogger "course-planner/pkg/logger"
	"course-planner/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("PLANNER_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log, applogger.PlannerFields(&cfg.Planner)...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 加载课程目录（目录损坏时直接退出）
	window, err := model.ParseDayWindow(cfg.Planner.DayStart, cfg.Planner.DayEnd)
	if err != nil {
		logger.Fatal("时间窗配置无效", zap.Error(err))
	}
	cat, err := catalog.LoadFile(cfg.Planner.CatalogPath, window)
	if err != nil {
		logger.Fatal("课程目录加载失败", zap.String("path", cfg.Planner.CatalogPath), zap.Error(err))
	}
	logger.Info("课程目录已加载", zap.Int("templates", cat.Len()))

	// 4. 连接 Redis（可选：仅限流时连接失败降级运行）
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，接口限流将不可用", zap.Error(err))
			rdb = nil
		}
	}

	// 5. 打开快照存储并恢复课表
	ctx := context.Background()
	repo, closeRepo, err := openSnapshotRepo(ctx, cfg, rdb, logger)
	if err != nil {
		logger.Fatal("课表存储初始化失败", zap.Error(err))
	}
	store := service.NewScheduleStore(repo, cfg.Planner.StorageKey, cat.Window(), cfg.Planner.Location(), logger.Named("store"))
	restored := store.Load(ctx)
	logger.Info("课表已恢复", zap.Int("sessions", restored))

	// 6. 依赖注入: Store → Service → Handler
	svc := service.NewService(cfg, cat, store, nil, logger)
	if out := svc.Planner.RollWeek(ctx); out.Warning != "" {
		logger.Warn("启动时周切换未能持久化", zap.String("warning", out.Warning))
	}
	h := handler.NewHandler(svc)

	// 7. 周切换定时任务
	rollover, err := service.StartWeekRollover(cfg.Planner.RolloverCron, cfg.Planner.Location(), svc.Planner, logger.Named("rollover"))
	if err != nil {
		logger.Fatal("周切换任务启动失败", zap.Error(err))
	}

	// 8. 初始化路由
	engine := router.Setup(cfg, h, rdb, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownWait)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 停止定时任务，等待正在执行的周切换结束
	if rollover != nil {
		<-rollover.Stop().Done()
	}

	closeRepo()

	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
