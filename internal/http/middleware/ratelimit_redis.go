package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// takeScript counts one attempt and returns {allowed, pttl}.
const takeScript = `
local attempts = redis.call("INCR", KEYS[1])
if attempts == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if attempts > tonumber(ARGV[2]) then
  return {0, ttl}
end
return {1, ttl}
`

const redisTakeTimeout = 250 * time.Millisecond

// SharedLoginThrottle keeps login attempt windows in Redis so every console
// process sees the same counts. When Redis does not answer the attempt is
// let through.
type SharedLoginThrottle struct {
	client *redis.Client
	prefix string
	script *redis.Script
	logger *slog.Logger
}

func NewSharedLoginThrottle(client *redis.Client, prefix string, logger *slog.Logger) *SharedLoginThrottle {
	if logger == nil {
		logger = slog.Default()
	}
	return &SharedLoginThrottle{
		client: client,
		prefix: prefix,
		script: redis.NewScript(takeScript),
		logger: logger,
	}
}

func (t *SharedLoginThrottle) Take(ctx context.Context, key string, limit int, window time.Duration) Verdict {
	open := Verdict{Allowed: true, RetryAfter: window}
	if t == nil || t.client == nil || key == "" || limit <= 0 || window <= 0 {
		return open
	}
	if t.prefix != "" {
		key = t.prefix + ":" + key
	}
	ctx, cancel := context.WithTimeout(ctx, redisTakeTimeout)
	defer cancel()
	reply, err := t.script.Run(ctx, t.client, []string{key}, max(window.Milliseconds(), 1), limit).Int64Slice()
	if err != nil || len(reply) != 2 {
		t.logger.Warn("login throttle unavailable", slog.Any("error", err))
		return open
	}
	retry := time.Duration(reply[1]) * time.Millisecond
	if retry <= 0 {
		retry = window
	}
	return Verdict{Allowed: reply[0] == 1, RetryAfter: retry}
}
