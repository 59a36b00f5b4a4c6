package errors

import "errors"

// ErrUnsupportedStorage 配置了未实现的快照存储驱动
var ErrUnsupportedStorage = errors.New("不支持的课表存储驱动")

// ErrStorageUnavailable 存储驱动依赖的外部服务未就绪（如 Redis 未连接）
var ErrStorageUnavailable = errors.New("课表存储不可用")
