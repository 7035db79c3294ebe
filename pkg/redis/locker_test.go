package redis

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeepAlive_RenewsUntilStopped(t *testing.T) {
	stop := make(chan struct{})
	var renewals int32
	done := make(chan struct{})

	go func() {
		defer close(done)
		keepAlive(stop, 5*time.Millisecond, func() (bool, error) {
			atomic.AddInt32(&renewals, 1)
			return true, nil
		}, func(err error) { t.Errorf("不应告警: %v", err) })
	}()

	time.Sleep(40 * time.Millisecond)
	close(stop)
	<-done

	if n := atomic.LoadInt32(&renewals); n < 2 {
		t.Errorf("持有期间应多次续期，实际 %d 次", n)
	}
}

func TestKeepAlive_StopsWhenLockLost(t *testing.T) {
	var mu sync.Mutex
	var warned []error
	done := make(chan struct{})

	go func() {
		defer close(done)
		calls := 0
		keepAlive(make(chan struct{}), time.Millisecond, func() (bool, error) {
			calls++
			if calls == 1 {
				return false, errors.New("连接超时")
			}
			return false, nil
		}, func(err error) {
			mu.Lock()
			warned = append(warned, err)
			mu.Unlock()
		})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("锁丢失后续期应停止")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(warned) != 2 || !errors.Is(warned[1], errLockLost) {
		t.Errorf("期望先告警续期错误再告警锁丢失，实际 %v", warned)
	}
}
