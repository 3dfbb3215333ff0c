package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/domain"
)

// LimitRepository keeps the attempt log in a Redis sorted set per key,
// scored by attempt time. Counting the trailing window is a ZCOUNT; stale
// members are pruned on read.
type LimitRepository struct {
	rdb       *redis.Client
	retention time.Duration
}

// retention bounds how long attempt members and their keys live; it must be
// at least the largest configured rate-limit window.
func NewLimitRepository(rdb *redis.Client, retention time.Duration) *LimitRepository {
	return &LimitRepository{
		rdb:       rdb,
		retention: retention,
	}
}

func limitKey(key domain.LimitKey) string {
	return fmt.Sprintf("limits:%s:%s:%s", key.IP, key.Login, key.Endpoint)
}

func (r *LimitRepository) CountSince(ctx context.Context, key domain.LimitKey, from time.Time) (int, error) {
	k := limitKey(key)

	if err := r.rdb.ZRemRangeByScore(ctx, k, "-inf",
		fmt.Sprintf("(%d", from.UnixMilli())).Err(); err != nil {
		return 0, fmt.Errorf("failed to prune attempts: %w", err)
	}

	count, err := r.rdb.ZCount(ctx, k, fmt.Sprintf("%d", from.UnixMilli()), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}

	return int(count), nil
}

func (r *LimitRepository) Record(ctx context.Context, attempt *domain.LimitAttempt) error {
	k := limitKey(domain.LimitKey{
		IP:       attempt.IPAddress,
		Login:    attempt.Login,
		Endpoint: attempt.Endpoint,
	})

	pipe := r.rdb.TxPipeline()
	pipe.ZAdd(ctx, k, redis.Z{
		Score:  float64(attempt.AttemptAt.UnixMilli()),
		Member: uuid.NewString(),
	})
	pipe.Expire(ctx, k, r.retention)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	return nil
}
