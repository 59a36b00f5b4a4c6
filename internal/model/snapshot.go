package model

// ScheduleSnapshot 课表快照表 对应 schedule_snapshots
// 整个工作课表序列化后作为单个 value 存储，key 为固定命名空间标识
type ScheduleSnapshot struct {
	Key   string `gorm:"type:varchar(128);primaryKey" json:"key"`
	Value string `gorm:"type:text;not null"           json:"value"`
	BaseModel
}

// TableName 指定表名
func (ScheduleSnapshot) TableName() string { return "schedule_snapshots" }
