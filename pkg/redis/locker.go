package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bem-planning/backend/pkg/lock"
)

const lockPrefix = "lock:"

// 仅当值仍为本持有者的令牌时才删除，防止误删他人续上的锁
var unlockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// 仅当值仍为本持有者的令牌时才续期
var renewScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Locker 基于 SET NX PX 的分布式锁，多实例部署时替代进程内锁。
// 持有期间每 ttl/3 续期一次，进程崩溃后锁在 ttl 内自动释放。
type Locker struct {
	client *Client
	ttl    time.Duration
	retry  time.Duration
}

var _ lock.Locker = (*Locker)(nil)

// NewLocker 创建分布式锁；ttl 为未续期时的自动过期时间
func NewLocker(client *Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Locker{client: client, ttl: ttl, retry: 50 * time.Millisecond}
}

// Lock 轮询获取锁，直到成功或 ctx 结束
func (l *Locker) Lock(ctx context.Context, key string) (lock.Unlock, error) {
	token := uuid.NewString()
	fullKey := lockPrefix + key

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.rdb.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if ok {
			return l.hold(key, fullKey, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(lock.ErrLockTimeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

// hold 启动续期并返回释放函数
func (l *Locker) hold(key, fullKey, token string) lock.Unlock {
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		keepAlive(stop, l.ttl/3, func() (bool, error) {
			rctx, cancel := context.WithTimeout(context.Background(), l.ttl/3)
			defer cancel()
			n, err := renewScript.Run(rctx, l.client.rdb, []string{fullKey}, token, l.ttl.Milliseconds()).Int64()
			return n == 1, err
		}, func(err error) {
			l.client.logger.Warn("分布式锁续期失败", zap.String("key", key), zap.Error(err))
		})
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// 使用独立上下文释放，请求上下文可能已取消
			rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := unlockScript.Run(rctx, l.client.rdb, []string{fullKey}, token).Err(); err != nil {
				l.client.logger.Warn("释放分布式锁失败", zap.String("key", key), zap.Error(err))
			}
		})
	}
}

// errLockLost 锁已过期或被他人持有
var errLockLost = errors.New("分布式锁已丢失")

// keepAlive 每 interval 调用一次 renew，直到 stop 关闭或锁已不属于本持有者。
// 单次续期出错时告警并继续重试。
func keepAlive(stop <-chan struct{}, interval time.Duration, renew func() (bool, error), warn func(error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		held, err := renew()
		if err != nil {
			warn(err)
			continue
		}
		if !held {
			warn(errLockLost)
			return
		}
	}
}
