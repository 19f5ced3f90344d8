package utils

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Timer 在固定延迟后执行回调。Stop 与 Reset 会使尚未执行的回调失效，
// 即使底层定时器已经触发。
type Timer struct {
	name     string
	duration time.Duration
	callback func()
	timer    *time.Timer
	gen      uint64
	pending  bool
	mu       sync.Mutex
	logger   *zap.Logger
}

func NewTimer(name string, duration time.Duration, callback func(), logger *zap.Logger) *Timer {
	return &Timer{
		name:     name,
		duration: duration,
		callback: callback,
		logger:   logger,
	}
}

// Start 启动定时器；已在计时中则重新计时
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	t.pending = true
	gen := t.gen
	t.timer = time.AfterFunc(t.duration, func() { t.fire(gen) })
}

func (t *Timer) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || !t.pending {
		t.mu.Unlock()
		return
	}
	t.pending = false
	t.mu.Unlock()

	t.logger.Debug("Timer expired", zap.String("timer", t.name), zap.Duration("duration", t.duration))
	t.callback()
}

// Stop 取消尚未执行的回调，返回是否确实取消了一次计时
func (t *Timer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.pending {
		return false
	}
	t.timer.Stop()
	t.gen++
	t.pending = false
	t.logger.Debug("Timer stopped", zap.String("timer", t.name))
	return true
}

// Reset 重新开始计时
func (t *Timer) Reset() {
	t.Start()
	t.logger.Debug("Timer reset", zap.String("timer", t.name), zap.Duration("duration", t.duration))
}

func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}
