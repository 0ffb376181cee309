package ratelimit

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// slidingWindowScript runs the prune/count/record sequence atomically
// on a sorted set scored by request time in microseconds. Entries
// strictly older than the cutoff are pruned; one exactly an interval
// old still counts. Returns {allowed, remaining, oldestSurvivingScore}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]
local cutoff = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, 0, '(' .. cutoff)
local count = redis.call('ZCARD', key)
if count >= limit then
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	return {0, 0, oldest[2]}
end

redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, math.ceil(window / 1000))
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
return {1, limit - count - 1, oldest[2]}
`)

// RedisStore is the distributed Store implementation for multi-process
// deployments; per-key atomicity comes from the Lua script.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

func (s *RedisStore) Take(ctx context.Context, key string, limit int, interval time.Duration) (Result, error) {
	now := time.Now()
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + strconv.Itoa(rand.Int())

	raw, err := slidingWindowScript.Run(ctx, s.client,
		[]string{s.prefix + key},
		now.UnixMicro(),
		interval.Microseconds(),
		limit,
		member,
		strconv.FormatInt(now.Add(-interval).UnixMicro(), 10),
	).Result()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit redis store: %w", err)
	}

	reply, ok := raw.([]interface{})
	if !ok || len(reply) != 3 {
		return Result{}, fmt.Errorf("ratelimit redis store: unexpected reply %v", raw)
	}

	allowed, _ := reply[0].(int64)
	remaining, _ := reply[1].(int64)
	resetAt := now.Add(interval)
	if scoreStr, ok := reply[2].(string); ok {
		if oldest, err := strconv.ParseFloat(scoreStr, 64); err == nil {
			resetAt = time.UnixMicro(int64(oldest)).Add(interval)
		}
	}

	return Result{
		Allowed:   allowed == 1,
		Limit:     limit,
		Remaining: int(remaining),
		ResetAt:   resetAt,
	}, nil
}
