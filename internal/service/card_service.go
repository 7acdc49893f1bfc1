package service

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sadhanacard/internal/db"
	"github.com/sadhanacard/internal/record"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInvalidCardDate 在日期键不是合法的 YYYY-MM-DD 时返回
	ErrInvalidCardDate = errors.New("invalid card date")
	// ErrInvalidCardPatch 在字段补丁无法解析时返回
	ErrInvalidCardPatch = errors.New("invalid card patch")
)

// defaultSaveDelay 是编辑后的落库安静期。
const defaultSaveDelay = time.Second

// CardService 管理每日记录的生命周期：按日期读取（缺失即默认值）、
// 字段级修改产生完整的新记录值、去抖后写入键值存储。
// 内存态始终是权威数据，落库失败只记录状态不阻塞后续编辑。
type CardService struct {
	db        *gorm.DB
	scheduler *SaveScheduler

	mu      sync.Mutex
	cache   map[string]record.DailyRecord
	dirty   map[string]bool
	saveErr map[string]string
}

// CardStatus 描述某个日期的持久化状态，供前端展示保存提示。
type CardStatus struct {
	Dirty     bool
	LastError string
}

// NewCardService 以默认安静期构造 CardService。
func NewCardService(gdb *gorm.DB) *CardService {
	return NewCardServiceWithDelay(gdb, defaultSaveDelay)
}

// NewCardServiceWithDelay 允许注入安静期时长，主要面向测试场景。
func NewCardServiceWithDelay(gdb *gorm.DB, delay time.Duration) *CardService {
	return &CardService{
		db:        gdb,
		scheduler: NewSaveScheduler(delay),
		cache:     make(map[string]record.DailyRecord),
		dirty:     make(map[string]bool),
		saveErr:   make(map[string]string),
	}
}

// Get 返回指定日期的记录。没有存储记录时返回默认记录；
// 存储内容损坏时记录日志并回退默认值，不向上抛错。
func (s *CardService) Get(date string) (record.DailyRecord, error) {
	if !record.ValidDate(date) {
		return record.Default(), fmt.Errorf("%w: %s", ErrInvalidCardDate, date)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.cache[date]; ok {
		return cached, nil
	}

	rec := s.loadStored(date)
	s.cache[date] = rec
	return rec, nil
}

// loadStored 从键值存储读取并合并默认值，调用方需持有锁。
func (s *CardService) loadStored(date string) record.DailyRecord {
	var entry db.CardEntry
	err := s.db.Where("key = ?", record.Key(date)).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return record.Default()
	}
	if err != nil {
		log.Printf("load card %s: %v", date, err)
		return record.Default()
	}

	rec, decodeErr := record.Decode([]byte(entry.Value))
	if decodeErr != nil {
		log.Printf("decode card %s: %v", date, decodeErr)
		return record.Default()
	}
	return rec
}

// Replace 用一个完整的新记录值替换指定日期的内存态，并调度去抖保存。
func (s *CardService) Replace(date string, rec record.DailyRecord) (record.DailyRecord, error) {
	if !record.ValidDate(date) {
		return record.Default(), fmt.Errorf("%w: %s", ErrInvalidCardDate, date)
	}

	rec = record.Normalized(rec)

	s.mu.Lock()
	s.cache[date] = rec
	s.dirty[date] = true
	s.mu.Unlock()

	// 调度时即捕获日期键与记录值：之后切换日期或继续编辑
	// 都不会让这次保存写错槽位或携带中间状态
	s.scheduler.Schedule(date, func() {
		if err := s.persist(date, rec); err != nil {
			log.Printf("save card %s: %v", date, err)
		}
	})

	return rec, nil
}

// Apply 把一段 JSON 补丁叠加到当前记录之上：以当前值的完整拷贝为底，
// 只有补丁中出现的字段被覆盖，结果作为全新记录写回。
func (s *CardService) Apply(date string, patch []byte) (record.DailyRecord, error) {
	current, err := s.Get(date)
	if err != nil {
		return record.Default(), err
	}

	next, err := record.Overlay(current, patch)
	if err != nil {
		return current, fmt.Errorf("%w: %v", ErrInvalidCardPatch, err)
	}

	return s.Replace(date, next)
}

// SaveNow 取消未触发的去抖任务并立即落库，返回写入错误供调用方呈现。
func (s *CardService) SaveNow(date string) error {
	if !record.ValidDate(date) {
		return fmt.Errorf("%w: %s", ErrInvalidCardDate, date)
	}

	s.scheduler.Cancel(date)

	s.mu.Lock()
	rec, ok := s.cache[date]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	return s.persist(date, rec)
}

// Status 返回指定日期的脏标记与最近一次写入错误。
func (s *CardService) Status(date string) CardStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CardStatus{
		Dirty:     s.dirty[date],
		LastError: s.saveErr[date],
	}
}

// persist 把记录序列化后按 Key 幂等写入；成功清除脏标记与错误状态，
// 失败只更新错误状态，内存态保持权威，下一次编辑会重新尝试。
func (s *CardService) persist(date string, rec record.DailyRecord) error {
	blob, err := record.Encode(rec)
	if err != nil {
		s.noteSaveResult(date, err)
		return err
	}

	entry := db.CardEntry{Key: record.Key(date), Value: string(blob)}
	err = s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      entry.Value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&entry).Error
	if err != nil {
		err = fmt.Errorf("upsert card %s: %w", date, err)
	}

	s.noteSaveResult(date, err)
	return err
}

func (s *CardService) noteSaveResult(date string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.saveErr[date] = err.Error()
		return
	}
	delete(s.saveErr, date)
	delete(s.dirty, date)
}
