package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // Error inspection
	"fmt"           // Key formatting
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
)

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeletePrefix deletes every key starting with prefix
func DeletePrefix(ctx context.Context, rdb *redis.Client, prefix string) error {
	iter := rdb.Scan(ctx, 0, prefix+"*", 100).Iterator() // Walk matching keys in batches
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err()
}

// Cache is a per-user read-through cache. A nil Cache, or one without a
// client, misses every lookup and ignores writes.
//
// Entries live under a per-user generation. A write bumps the generation,
// which makes every earlier entry unreachable at once, including one that a
// concurrent reader stores after the bump.
type Cache struct {
	rdb *redis.Client // Redis client, nil disables caching
	ttl time.Duration // Entry lifetime
}

// NewCache wraps rdb; rdb may be nil
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func (c *Cache) enabled() bool { return c != nil && c.rdb != nil }

// UserKey builds a cache key scoped to one user
func UserKey(userID uint, parts ...any) string {
	return userPrefix(userID) + joinParts(parts)
}

func joinParts(parts []any) string {
	key := ""
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += fmt.Sprint(p)
	}
	return key
}

func userPrefix(userID uint) string {
	return fmt.Sprintf("user:%d:", userID)
}

func generationKey(userID uint) string {
	return UserKey(userID, "gen")
}

func generationPrefix(userID uint, gen int64) string {
	return UserKey(userID, fmt.Sprintf("g%d", gen)) + ":"
}

// Key returns the key of parts under the user's current generation. Take
// the key before reading the store so a write in between invalidates it.
func (c *Cache) Key(ctx context.Context, userID uint, parts ...any) string {
	var gen int64
	if c.enabled() {
		n, err := c.rdb.Get(ctx, generationKey(userID)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("Cache generation read failed")
		}
		gen = n
	}
	return generationPrefix(userID, gen) + joinParts(parts)
}

// Get loads key into dest and reports a hit. Redis failures count as a miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if !c.enabled() {
		return false
	}
	found, err := GetCache(ctx, c.rdb, key, dest)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache read failed")
		return false
	}
	return found
}

// Set stores value under key; failures are logged and otherwise ignored
func (c *Cache) Set(ctx context.Context, key string, value any) {
	if !c.enabled() {
		return
	}
	if err := SetCache(ctx, c.rdb, key, value, c.ttl); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache write failed")
	}
}

// InvalidateUser retires every cached entry of userID by moving to a new
// generation, then deletes the entries of the previous one
func (c *Cache) InvalidateUser(ctx context.Context, userID uint) {
	if !c.enabled() {
		return
	}
	gen, err := c.rdb.Incr(ctx, generationKey(userID)).Result()
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("Cache invalidation failed")
		return
	}
	if err := DeletePrefix(ctx, c.rdb, generationPrefix(userID, gen-1)); err != nil {
		logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("Cache cleanup failed")
	}
}
