// Package readtime 统计页面可见期间的阅读时长，并按批次累加上报
//
// 上报成功后立即清零，失败则保留待下次一并上报，因此只会少报不会多报。
package readtime

import (
	"context"
	log "log/slog"
	"sync"
	"time"
)

const (
	// DefaultMinFlush 不足该时长不上报
	DefaultMinFlush = time.Second
	// DefaultFlushInterval 周期上报间隔，防止崩溃或跳转丢失
	DefaultFlushInterval = 30 * time.Second
	// DefaultMaxFlush 单次上报上限，超出部分丢弃
	DefaultMaxFlush = time.Hour
)

// FlushFunc 将一段阅读时长累加到存储
type FlushFunc func(ctx context.Context, d time.Duration) error

type Option func(*Accumulator)

// WithClock 替换时钟，测试使用
func WithClock(now func() time.Time) Option {
	return func(a *Accumulator) {
		a.now = now
	}
}

func WithMinFlush(d time.Duration) Option {
	return func(a *Accumulator) {
		a.minFlush = d
	}
}

func WithMaxFlush(d time.Duration) Option {
	return func(a *Accumulator) {
		a.maxFlush = d
	}
}

// Accumulator 非零的 sessionStart 表示当前可见
type Accumulator struct {
	mu           sync.Mutex
	now          func() time.Time
	flush        FlushFunc
	minFlush     time.Duration
	maxFlush     time.Duration
	sessionStart time.Time
	accumulated  time.Duration
	closed       bool
}

func New(flush FlushFunc, opts ...Option) *Accumulator {
	a := &Accumulator{
		now:      time.Now,
		flush:    flush,
		minFlush: DefaultMinFlush,
		maxFlush: DefaultMaxFlush,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start 开始计时，等价于页面变为可见
func (a *Accumulator) Start() {
	a.Show()
}

// Show 页面重新可见
func (a *Accumulator) Show() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || !a.sessionStart.IsZero() {
		return
	}
	a.sessionStart = a.now()
}

// Hide 页面隐藏：结算当前会话并尝试上报
func (a *Accumulator) Hide(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.foldLocked()
	return a.flushLocked(ctx)
}

// Tick 周期上报，包含尚未结算的当前会话
func (a *Accumulator) Tick(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	return a.flushLocked(ctx)
}

// Close 卸载时的最后一次上报，尽力而为，之后不再计时
func (a *Accumulator) Close(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.foldLocked()
	a.closed = true
	return a.flushLocked(ctx)
}

// Pending 已结算未上报的时长加上当前会话
func (a *Accumulator) Pending() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()

	total := a.accumulated
	if !a.sessionStart.IsZero() {
		total += a.now().Sub(a.sessionStart)
	}
	return total
}

// Visible 当前是否处于可见状态
func (a *Accumulator) Visible() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.sessionStart.IsZero()
}

// Run 按 interval 周期调用 Tick，直到 ctx 结束
func (a *Accumulator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.Tick(ctx); err != nil {
				log.WarnContext(ctx, "periodic read time flush failed", "err", err)
			}
		}
	}
}

func (a *Accumulator) foldLocked() {
	if a.sessionStart.IsZero() {
		return
	}
	a.accumulated += a.now().Sub(a.sessionStart)
	a.sessionStart = time.Time{}
}

// flushLocked 成功后清零，可见状态下会话从本次计算的时刻重新开始
// 长时间上报失败积压的时长按上限截断，否则存储端会一直拒收
func (a *Accumulator) flushLocked(ctx context.Context) error {
	at := a.now()
	total := a.accumulated
	if !a.sessionStart.IsZero() {
		total += at.Sub(a.sessionStart)
	}
	if total <= a.minFlush {
		return nil
	}
	if a.maxFlush > 0 && total > a.maxFlush {
		log.WarnContext(ctx, "pending read time over cap, excess dropped", "pending", total, "cap", a.maxFlush)
		total = a.maxFlush
	}

	if err := a.flush(ctx, total); err != nil {
		return err
	}

	a.accumulated = 0
	if !a.sessionStart.IsZero() {
		a.sessionStart = at
	}
	return nil
}
