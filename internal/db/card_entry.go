package db

import "gorm.io/gorm"

// CardEntry 以键值对形式存储每日记录的 JSON 快照。
// Key 形如 sadhana_2024-05-01，此格式需跨版本保持稳定；
// Value 中缺失的字段在读取时逐项回填默认值，而不是整体拒绝。
type CardEntry struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (CardEntry) TableName() string {
	return "card_entries"
}
