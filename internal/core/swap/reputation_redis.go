// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package swap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/taibuivan/tomeswap/internal/platform/constants"
)

// RedisReputation implements [ReputationUpdater] on volatile counters.
//
// # Model
//
// Per member it keeps a hash of running totals: feedback count, star sum,
// and recommendation count. Consumers derive an average from count and
// sum; no score formula is baked in here.
type RedisReputation struct {
	client *redis.Client
}

// NewRedisReputation constructs a Redis backed reputation sink.
func NewRedisReputation(client *redis.Client) *RedisReputation {
	return &RedisReputation{client: client}
}

/*
Apply folds one feedback into the rated member's counters.

Parameters:
  - context: context.Context
  - userID: string (The rated member, not the author)
  - feedback: *Feedback

Returns:
  - error: Redis command failures
*/
func (reputation *RedisReputation) Apply(context context.Context, userID string, feedback *Feedback) error {
	key := constants.RedisPrefixReputation + userID

	pipe := reputation.client.Pipeline()
	pipe.HIncrBy(context, key, "feedback_count", 1)
	pipe.HIncrBy(context, key, "star_sum", int64(feedback.Stars))
	if feedback.Recommend {
		pipe.HIncrBy(context, key, "recommend_count", 1)
	}

	if _, err := pipe.Exec(context); err != nil {
		return fmt.Errorf("apply reputation for %s: %w", userID, err)
	}
	return nil
}
