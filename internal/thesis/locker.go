package thesis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// lockTTL bounds how long a crashed run can hold a project's lock.
const lockTTL = 2 * time.Minute

// RedisLocker implements per-project mutual exclusion with SET NX EX.
type RedisLocker struct {
	rdb *redis.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb}
}

// Acquire takes the project's generation lock. Returns false when another
// run already holds it.
func (l *RedisLocker) Acquire(ctx context.Context, projectID string) (bool, error) {
	return l.rdb.SetNX(ctx, "genlock:"+projectID, "1", lockTTL).Result()
}

// Release frees the lock. Callers pass a context that is not canceled on
// client abort; the TTL remains the backstop for a crashed process.
func (l *RedisLocker) Release(ctx context.Context, projectID string) {
	l.rdb.Del(ctx, "genlock:"+projectID)
}
