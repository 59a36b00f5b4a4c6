package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartWeekRollover 按 cron 表达式定期把课表平移到当前周
// expr 为空时不启动，返回 nil。调用方负责 Stop。
func StartWeekRollover(expr string, loc *time.Location, planner PlannerService, logger *zap.Logger) (*cron.Cron, error) {
	if expr == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}

	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		out := planner.RollWeek(ctx)
		if out.Warning != "" {
			logger.Warn("定时周切换未能持久化", zap.String("warning", out.Warning))
			return
		}
		logger.Info("定时周切换完成", zap.Int("moved", len(out.Sessions)))
	})
	if err != nil {
		return nil, fmt.Errorf("无效的 rollover_cron %q: %w", expr, err)
	}

	c.Start()
	return c, nil
}
