package quota

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrQuotaExceeded = errors.New("daily generation quota exceeded")

// Checker caps how many quizzes one client may generate per day. Keys are
// redis counters per client and UTC date, expired automatically.
type Checker struct {
	rdb   *redis.Client
	limit int
}

func NewChecker(rdb *redis.Client, limit int) *Checker {
	return &Checker{rdb: rdb, limit: limit}
}

func dayKey(clientKey string) string {
	return "quota:gen:" + clientKey + ":" + time.Now().UTC().Format("20060102")
}

// Consume takes one unit of today's quota for the client, or returns
// ErrQuotaExceeded. A zero or negative limit disables the quota.
func (c *Checker) Consume(ctx context.Context, clientKey string) error {
	if c.limit <= 0 {
		return nil
	}
	key := dayKey(clientKey)
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		// quota must not take the service down with redis
		return nil
	}
	if n == 1 {
		_ = c.rdb.Expire(ctx, key, 24*time.Hour).Err()
	}
	if n > int64(c.limit) {
		return ErrQuotaExceeded
	}
	return nil
}

// Refund gives one unit back after a request that produced nothing for the
// client. Best effort, like Consume.
func (c *Checker) Refund(ctx context.Context, clientKey string) {
	if c.limit <= 0 {
		return
	}
	key := dayKey(clientKey)
	_ = c.rdb.Decr(ctx, key).Err()
}

// Used reports how much of today's quota the client has spent.
func (c *Checker) Used(ctx context.Context, clientKey string) int {
	key := dayKey(clientKey)
	n, err := c.rdb.Get(ctx, key).Int()
	if err != nil {
		return 0
	}
	return n
}
