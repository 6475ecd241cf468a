package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// slidingWindow prunes, counts and conditionally records in one atomic
// unit, so two requests from the same identity racing each other cannot
// both observe the last free slot.
//
// KEYS[1] = identity key
// ARGV[1] = now (ms), ARGV[2] = window (ms), ARGV[3] = max, ARGV[4] = member
//
// Returns {allowed, remaining, resetAt(ms)}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local count = redis.call('ZCARD', key)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local reset = now + window
if oldest[2] then
  reset = tonumber(oldest[2]) + window
end

if count >= max then
  return {0, 0, reset}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, max - count - 1, reset}
`)

// Redis is a sliding-window limiter backed by a Redis sorted set per
// identity, for deployments where multiple instances must share quota.
// Scores are request timestamps in milliseconds.
//
// A Redis failure admits the request: protecting the write path is
// best-effort and must not take the intake down with it.
type Redis struct {
	client *redis.Client
	cfg    Config
	prefix string
}

// NewRedis creates a Redis-backed limiter with the given policy.
func NewRedis(client *redis.Client, cfg Config) *Redis {
	return &Redis{
		client: client,
		cfg:    cfg,
		prefix: "ratelimit:",
	}
}

// Check implements Limiter.
func (r *Redis) Check(ctx context.Context, identity string) Decision {
	now := time.Now()
	key := r.prefix + identity

	res, err := slidingWindow.Run(ctx, r.client, []string{key},
		now.UnixMilli(),
		r.cfg.Window.Milliseconds(),
		r.cfg.MaxRequests,
		strconv.FormatInt(now.UnixNano(), 10),
	).Int64Slice()
	if err != nil || len(res) != 3 {
		return r.failOpen(identity, now, err)
	}

	resetAt := time.UnixMilli(res[2])
	if res[0] != 1 {
		return Decision{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}
	}

	return Decision{
		Allowed:   true,
		Remaining: int(res[1]),
		ResetAt:   resetAt,
	}
}

func (r *Redis) failOpen(identity string, now time.Time, err error) Decision {
	log.Warn().Err(err).Str("identity", identity).Msg("Rate limit backend unavailable, admitting request")
	return Decision{
		Allowed:   true,
		Remaining: r.cfg.MaxRequests - 1,
		ResetAt:   now.Add(r.cfg.Window),
	}
}
