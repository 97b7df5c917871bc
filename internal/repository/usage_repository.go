package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/xiajason/jobfirst-future/internal/domain"
)

// redisUsageStatsRepository keeps per-owner usage counters in a redis hash,
// one field per service:data-type pair.
type redisUsageStatsRepository struct {
	client *redis.Client
}

func NewUsageStatsRepository(client *redis.Client) domain.UsageStatsRepository {
	return &redisUsageStatsRepository{client: client}
}

func usageStatsKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("usage:stats:%s", ownerID)
}

func (r *redisUsageStatsRepository) IncrementUsage(ctx context.Context, ownerID uuid.UUID, serviceType, dataType string) error {
	field := serviceType + ":" + dataType
	return withRetry(ctx, func() error {
		return r.client.HIncrBy(ctx, usageStatsKey(ownerID), field, 1).Err()
	})
}

func (r *redisUsageStatsRepository) GetUsage(ctx context.Context, ownerID uuid.UUID) (map[string]int64, error) {
	var raw map[string]string
	err := withRetry(ctx, func() error {
		var err error
		raw, err = r.client.HGetAll(ctx, usageStatsKey(ownerID)).Result()
		return err
	})
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int64, len(raw))
	for field, value := range raw {
		var n int64
		if _, err := fmt.Sscan(value, &n); err == nil {
			stats[field] = n
		}
	}
	return stats, nil
}
