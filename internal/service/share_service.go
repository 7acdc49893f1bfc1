package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sadhanacard/internal/db"
	"github.com/sadhanacard/internal/record"
	"github.com/sadhanacard/internal/report"
	"github.com/sadhanacard/internal/scoring"
	"gorm.io/gorm"
)

// ErrShareSnapshotNotFound 在分享快照不存在时返回
var ErrShareSnapshotNotFound = errors.New("share snapshot not found")

// ShareReport 是一次分享动作需要的全部载荷：
// 文本先写剪贴板，成功后再打开深链，顺序由前端保证。
type ShareReport struct {
	Date        string
	Text        string
	WhatsAppURL string
}

// ShareService 负责生成分享文本并持久化分享快照。
type ShareService struct {
	db *gorm.DB
}

// NewShareService 构造 ShareService。
func NewShareService(gdb *gorm.DB) *ShareService {
	return &ShareService{db: gdb}
}

// BuildReport 根据记录生成分享载荷。纯计算，不落库。
func (s *ShareService) BuildReport(date string, rec record.DailyRecord) ShareReport {
	text := report.Text(rec, scoring.Evaluate(rec))
	return ShareReport{
		Date:        date,
		Text:        text,
		WhatsAppURL: report.WhatsAppURL(text),
	}
}

// CreateSnapshot 生成报告文本并以随机 Token 持久化，供外部链接访问。
func (s *ShareService) CreateSnapshot(date string, rec record.DailyRecord) (*db.ShareSnapshot, error) {
	rep := s.BuildReport(date, rec)

	snapshot := db.ShareSnapshot{
		Token:    uuid.NewString(),
		CardDate: date,
		Body:     rep.Text,
	}

	if err := s.db.Create(&snapshot).Error; err != nil {
		return nil, fmt.Errorf("create share snapshot: %w", err)
	}
	return &snapshot, nil
}

// GetSnapshot 根据 Token 查询快照。
func (s *ShareService) GetSnapshot(token string) (*db.ShareSnapshot, error) {
	var snapshot db.ShareSnapshot
	if err := s.db.Where("token = ?", token).First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShareSnapshotNotFound
		}
		return nil, fmt.Errorf("get share snapshot: %w", err)
	}
	return &snapshot, nil
}
