// Package cache holds the Redis-backed hot paths: play-count buffering
// and per-user recently-played lists.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	listenKeyPrefix = "masta:listens:"
	recentKeyPrefix = "masta:recent:"
	recentMaxLen    = 50
)

// ListenCache buffers play counts in Redis so that every play does not
// hit the database; counts are flushed to the tracks table periodically.
type ListenCache struct {
	rdb *redis.Client
}

// NewListenCache creates a ListenCache on the given client.
func NewListenCache(rdb *redis.Client) *ListenCache {
	return &ListenCache{rdb: rdb}
}

// IncrementPlay buffers one play of a track.
func (c *ListenCache) IncrementPlay(ctx context.Context, trackID int64) error {
	key := listenKeyPrefix + strconv.FormatInt(trackID, 10)
	if err := c.rdb.Incr(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to increment play count for track %d: %w", trackID, err)
	}
	return nil
}

// FlushListens drains all buffered play counts, calling apply for each
// track. A count that fails to apply is re-buffered.
func (c *ListenCache) FlushListens(ctx context.Context, apply func(trackID int64, count int) error) error {
	iter := c.rdb.Scan(ctx, 0, listenKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		val, err := c.rdb.GetDel(ctx, key).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to drain %s: %w", key, err)
		}

		trackID, err := strconv.ParseInt(strings.TrimPrefix(key, listenKeyPrefix), 10, 64)
		if err != nil {
			continue
		}
		count, err := strconv.Atoi(val)
		if err != nil || count <= 0 {
			continue
		}

		if err := apply(trackID, count); err != nil {
			c.rdb.IncrBy(ctx, key, int64(count))
			return fmt.Errorf("failed to apply play count for track %d: %w", trackID, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan play counts: %w", err)
	}
	return nil
}

// PushRecent records a track at the head of the user's recently-played
// list, trimmed to a fixed length.
func (c *ListenCache) PushRecent(ctx context.Context, userID, trackID int64) error {
	key := recentKeyPrefix + strconv.FormatInt(userID, 10)
	pipe := c.rdb.Pipeline()
	pipe.LPush(ctx, key, trackID)
	pipe.LTrim(ctx, key, 0, recentMaxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push recent track for user %d: %w", userID, err)
	}
	return nil
}

// Recent returns up to n recently played track ids for the user, newest
// first.
func (c *ListenCache) Recent(ctx context.Context, userID int64, n int) ([]int64, error) {
	key := recentKeyPrefix + strconv.FormatInt(userID, 10)
	vals, err := c.rdb.LRange(ctx, key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load recent tracks for user %d: %w", userID, err)
	}

	ids := make([]int64, 0, len(vals))
	for _, v := range vals {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
