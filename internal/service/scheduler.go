package service

import (
	"sync"
	"time"
)

// SaveScheduler 是按 key 去抖的单槽延迟任务调度器：
// 对同一 key 再次调度会原子地取消尚未触发的任务并重新计时，
// 一串连续编辑只会在安静期结束后落一次库。
type SaveScheduler struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[string]*time.Timer
}

// NewSaveScheduler 构造调度器，delay 非正时使用 1 秒。
func NewSaveScheduler(delay time.Duration) *SaveScheduler {
	if delay <= 0 {
		delay = time.Second
	}
	return &SaveScheduler{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule 在安静期结束后执行 task；同 key 的未触发任务会被先取消。
// task 在计时器自己的 goroutine 中执行，不持有调度器锁。
func (s *SaveScheduler) Schedule(key string, task func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pending, ok := s.timers[key]; ok {
		pending.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		if s.timers[key] == timer {
			delete(s.timers, key)
		}
		s.mu.Unlock()
		task()
	})
	s.timers[key] = timer
}

// Cancel 取消指定 key 的未触发任务，返回是否确有任务被取消。
func (s *SaveScheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.timers[key]
	if !ok {
		return false
	}
	delete(s.timers, key)
	return timer.Stop()
}

// Pending 报告指定 key 是否仍有待触发的任务。
func (s *SaveScheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[key]
	return ok
}
