package redis

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

// voteRateLimitScript implements a token bucket. The bucket state lives in a
// hash per user; the script refills lazily based on elapsed time and consumes
// one token per call. Returns 1 when the vote is allowed, 0 when limited.
var voteRateLimitScript = goredis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])

local bucket = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(bucket[1])
local ts = tonumber(bucket[2])
if tokens == nil then
  tokens = capacity
  ts = now
end

local elapsed = now - ts
if elapsed < 0 then
  elapsed = 0
end
tokens = tokens + elapsed * rate / 60000
if tokens > capacity then
  tokens = capacity
end

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call('HSET', key, 'tokens', tokens, 'ts', now)
redis.call('PEXPIRE', key, 120000)
return allowed
`)

// VoteRateLimiter implements token bucket rate limiting for votes.
type VoteRateLimiter struct {
	rdb      *goredis.Client
	clock    clockwork.Clock
	capacity int
	rate     int // tokens per minute
}

// NewVoteRateLimiter creates a new vote rate limiter.
// capacity: maximum burst size (tokens)
// rate: sustained rate (tokens per minute)
func NewVoteRateLimiter(rdb *goredis.Client, clock clockwork.Clock, capacity, rate int) *VoteRateLimiter {
	return &VoteRateLimiter{
		rdb:      rdb,
		clock:    clock,
		capacity: capacity,
		rate:     rate,
	}
}

// Allow checks if a vote is allowed for the user.
// Returns true if allowed (token consumed), false if rate limited.
func (v *VoteRateLimiter) Allow(ctx context.Context, userID int64) (bool, error) {
	key := fmt.Sprintf("rate_limit:votes:%d", userID)

	result := voteRateLimitScript.Run(ctx, v.rdb,
		[]string{key},
		v.clock.Now().UnixMilli(),
		v.capacity,
		v.rate,
	)

	if err := result.Err(); err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	allowed, err := result.Int()
	if err != nil {
		return false, fmt.Errorf("failed to parse rate limit result: %w", err)
	}

	return allowed == 1, nil
}
