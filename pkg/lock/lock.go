package lock

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrLockTimeout 等待锁超时或上下文被取消
var ErrLockTimeout = errors.New("获取锁超时，请稍后重试")

// Unlock 释放锁
type Unlock func()

// Locker 按键互斥，用于串行化同一教师 / 同一培养方案的读改写流程
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// LockAll 按字典序依次获取多个键的锁，避免交叉等待造成死锁；
// 任一获取失败时释放已持有的锁
func LockAll(ctx context.Context, l Locker, keys ...string) (Unlock, error) {
	uniq := make(map[string]struct{}, len(keys))
	sorted := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := uniq[k]; ok || k == "" {
			continue
		}
		uniq[k] = struct{}{}
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	held := make([]Unlock, 0, len(sorted))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i]()
		}
	}
	for _, k := range sorted {
		u, err := l.Lock(ctx, k)
		if err != nil {
			release()
			return nil, err
		}
		held = append(held, u)
	}
	return release, nil
}

// ── 进程内实现 ──

// KeyedMutex 进程内按键互斥锁，支持上下文取消
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex 创建进程内锁
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*entry)}
}

var _ Locker = (*KeyedMutex)(nil)

// Lock 获取 key 对应的锁，ctx 结束时放弃等待
func (m *KeyedMutex) Lock(ctx context.Context, key string) (Unlock, error) {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e)
		return nil, errors.Join(ErrLockTimeout, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			m.release(key, e)
		})
	}, nil
}

func (m *KeyedMutex) release(key string, e *entry) {
	m.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
	m.mu.Unlock()
}
