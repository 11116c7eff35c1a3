package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// 仅当令牌匹配时删除，避免误删他人持有的锁
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock 已获取的互斥锁
type Lock struct {
	key   string
	token string
}

// Key 锁键（不含前缀）
func (l *Lock) Key() string {
	if l == nil {
		return ""
	}
	return l.key
}

// localLocks Redis 未启用时的进程内锁表
var localLocks = struct {
	sync.Mutex
	entries map[string]localLockEntry
}{entries: map[string]localLockEntry{}}

type localLockEntry struct {
	token     string
	expiresAt time.Time
}

func claimLockKey(claimID string) string {
	return fmt.Sprintf("lock:claim:%s", strings.ToLower(strings.TrimSpace(claimID)))
}

func settlementLockKey(agentID string, year, month int) string {
	return fmt.Sprintf("lock:settlement:%s:%d-%02d", strings.ToLower(strings.TrimSpace(agentID)), year, month)
}

// AcquireClaimLock 获取领取凭证锁，返回 nil 表示已被占用
func AcquireClaimLock(ctx context.Context, claimID string, ttl time.Duration) (*Lock, error) {
	return acquireLock(ctx, claimLockKey(claimID), ttl)
}

// AcquireSettlementLock 获取月度收益结算锁
func AcquireSettlementLock(ctx context.Context, agentID string, year, month int, ttl time.Duration) (*Lock, error) {
	return acquireLock(ctx, settlementLockKey(agentID, year, month), ttl)
}

// ReleaseLock 释放锁
func ReleaseLock(ctx context.Context, lock *Lock) error {
	if lock == nil {
		return nil
	}
	if Enabled() {
		return releaseLockScript.Run(ctx, redisClient, []string{buildKey(lock.key)}, lock.token).Err()
	}
	localLocks.Lock()
	defer localLocks.Unlock()
	if entry, ok := localLocks.entries[lock.key]; ok && entry.token == lock.token {
		delete(localLocks.entries, lock.key)
	}
	return nil
}

func acquireLock(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	token := uuid.NewString()
	if Enabled() {
		ok, err := redisClient.SetNX(ctx, buildKey(key), token, ttl).Result()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return &Lock{key: key, token: token}, nil
	}

	now := time.Now()
	localLocks.Lock()
	defer localLocks.Unlock()
	if entry, ok := localLocks.entries[key]; ok && now.Before(entry.expiresAt) {
		return nil, nil
	}
	localLocks.entries[key] = localLockEntry{token: token, expiresAt: now.Add(ttl)}
	return &Lock{key: key, token: token}, nil
}
