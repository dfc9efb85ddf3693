package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var failureScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// RedisLimiter shares failure counts across instances.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
	policy Policy
}

func NewRedisLimiter(client redis.UniversalClient, prefix string, policy Policy) *RedisLimiter {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "banking:attempts"
	}
	return &RedisLimiter{client: client, prefix: prefix, policy: policy}
}

func (r *RedisLimiter) Check(ctx context.Context, scope, subject string) (Status, error) {
	k := key(r.prefix, scope, subject)

	pipe := r.client.Pipeline()
	get := pipe.Get(ctx, k)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return Status{}, err
	}

	failures, err := get.Int()
	if errors.Is(err, redis.Nil) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, err
	}
	return r.policy.status(failures, ttl.Val()), nil
}

func (r *RedisLimiter) Fail(ctx context.Context, scope, subject string) (Status, error) {
	windowMs := r.policy.Window.Milliseconds()
	if windowMs < 1000 {
		windowMs = 1000
	}

	raw, err := failureScript.Run(ctx, r.client, []string{key(r.prefix, scope, subject)}, windowMs).Result()
	if err != nil {
		return Status{}, err
	}
	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return Status{}, fmt.Errorf("unexpected limiter response shape: %T", raw)
	}
	count, ok := values[0].(int64)
	if !ok {
		return Status{}, fmt.Errorf("unexpected limiter count type: %T", values[0])
	}
	ttlMs, ok := values[1].(int64)
	if !ok {
		return Status{}, fmt.Errorf("unexpected limiter ttl type: %T", values[1])
	}
	return r.policy.status(int(count), time.Duration(ttlMs)*time.Millisecond), nil
}

func (r *RedisLimiter) Reset(ctx context.Context, scope, subject string) error {
	return r.client.Del(ctx, key(r.prefix, scope, subject)).Err()
}
