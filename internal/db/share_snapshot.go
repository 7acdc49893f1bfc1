package db

import "gorm.io/gorm"

// ShareSnapshot 保存一次分享动作生成的报告文本。
// Token 为对外访问用的随机标识，CardDate 记录来源日期便于后台排查。
type ShareSnapshot struct {
	gorm.Model
	Token    string `gorm:"size:36;uniqueIndex;not null"`
	CardDate string `gorm:"size:10;index"`
	Body     string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (ShareSnapshot) TableName() string {
	return "share_snapshots"
}
