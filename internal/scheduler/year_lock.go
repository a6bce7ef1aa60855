package scheduler

import (
	"context"
	"sync"
)

// YearLocker 进程内按学年加锁，同一学年的生成串行执行，不同学年互不影响
type YearLocker struct {
	mu    sync.Mutex
	years map[string]*yearSlot
}

type yearSlot struct {
	sem  chan struct{}
	refs int
}

// NewYearLocker 创建 YearLocker
func NewYearLocker() *YearLocker {
	return &YearLocker{years: make(map[string]*yearSlot)}
}

// Lock 获取学年锁，阻塞直至成功或 ctx 结束；返回的释放函数可重复调用
func (l *YearLocker) Lock(ctx context.Context, year string) (func(), error) {
	l.mu.Lock()
	s, ok := l.years[year]
	if !ok {
		s = &yearSlot{sem: make(chan struct{}, 1)}
		l.years[year] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(year, s, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(year, s, true) })
	}, nil
}

func (l *YearLocker) release(year string, s *yearSlot, held bool) {
	if held {
		<-s.sem
	}
	l.mu.Lock()
	s.refs--
	if s.refs == 0 {
		delete(l.years, year)
	}
	l.mu.Unlock()
}

