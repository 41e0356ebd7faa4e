// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/taibuivan/tomeswap/internal/platform/apperr"
	"github.com/taibuivan/tomeswap/internal/platform/constants"
)

// RedisRefreshTokenStore implements [RefreshTokenStore] using Redis.
type RedisRefreshTokenStore struct {
	client *redis.Client
}

// NewRedisRefreshTokenStore constructs a Redis backed live-token store.
func NewRedisRefreshTokenStore(client *redis.Client) *RedisRefreshTokenStore {
	return &RedisRefreshTokenStore{client: client}
}

/*
Set binds a token digest to a member for the given TTL.

Parameters:
  - context: context.Context
  - tokenHash, userID: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (store *RedisRefreshTokenStore) Set(context context.Context, tokenHash, userID string, ttl time.Duration) error {
	key := constants.RedisPrefixRefreshToken + tokenHash

	if err := store.client.Set(context, key, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_refresh_token_set_failed: %w", err)
	}
	return nil
}

/*
Get resolves a token digest to its member.

Description: Returns apperr.NotFound if the token is absent or expired.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - string: Member UUID
  - error: apperr.NotFound or execution errors
*/
func (store *RedisRefreshTokenStore) Get(context context.Context, tokenHash string) (string, error) {
	key := constants.RedisPrefixRefreshToken + tokenHash

	userID, err := store.client.Get(context, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperr.NotFound("Refresh token")
	}
	if err != nil {
		return "", fmt.Errorf("redis_refresh_token_get_failed: %w", err)
	}
	return userID, nil
}

/*
Delete revokes a live token immediately.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - error: Execution errors
*/
func (store *RedisRefreshTokenStore) Delete(context context.Context, tokenHash string) error {
	key := constants.RedisPrefixRefreshToken + tokenHash

	if err := store.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_refresh_token_delete_failed: %w", err)
	}
	return nil
}
