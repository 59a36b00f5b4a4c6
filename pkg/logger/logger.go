package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"course-planner/config"
)

// serviceName 写入每条日志的 service 字段
const serviceName = "course-planner"

// NewLogger 根据配置初始化 Zap 日志实例
//
// 每条日志固定携带 service 字段，fields 追加为进程级字段（如存储驱动、展示时区）。
// 时间戳使用 ISO8601。
func NewLogger(cfg *config.LogConfig, fields ...zap.Field) (*zap.Logger, error) {
	var zapCfg zap.Config

	switch cfg.Format {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "time"
	}
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.InitialFields = map[string]interface{}{"service": serviceName}

	// 解析日志级别
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", cfg.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("初始化日志器失败: %w", err)
	}

	return logger.Named("planner").With(fields...), nil
}

// PlannerFields 课表进程的公共日志字段
func PlannerFields(cfg *config.PlannerConfig) []zap.Field {
	return []zap.Field{
		zap.String("storage_driver", cfg.StorageDriver),
		zap.String("timezone", cfg.Timezone),
	}
}
