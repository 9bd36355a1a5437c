package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func stateKey(matchID string) string { return "match:" + matchID + ":state" }
func lockKey(matchID string) string  { return "match:" + matchID + ":lock" }

// releaseScript deletes the lock only if it is still held by the caller.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SetMatchState stores the live match state JSON. A zero ttl keeps it forever.
func (c *Client) SetMatchState(ctx context.Context, matchID string, state json.RawMessage, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, stateKey(matchID), []byte(state), ttl).Err(); err != nil {
		return fmt.Errorf("set match state: %w", err)
	}
	return nil
}

// GetMatchState retrieves the live match state JSON, or nil if it is not cached.
func (c *Client) GetMatchState(ctx context.Context, matchID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, stateKey(matchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get match state: %w", err)
	}
	return json.RawMessage(data), nil
}

// DeleteMatchState removes the cached state and any lock for a match.
func (c *Client) DeleteMatchState(ctx context.Context, matchID string) error {
	return c.rdb.Del(ctx, stateKey(matchID), lockKey(matchID)).Err()
}

// AcquireLock takes the per-match write lock with SET NX. It reports false
// when another owner holds it.
func (c *Client) AcquireLock(ctx context.Context, matchID, owner string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, lockKey(matchID), owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire match lock: %w", err)
	}
	return ok, nil
}

// ReleaseLock drops the lock if owner still holds it.
func (c *Client) ReleaseLock(ctx context.Context, matchID, owner string) error {
	if err := releaseScript.Run(ctx, c.rdb, []string{lockKey(matchID)}, owner).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release match lock: %w", err)
	}
	return nil
}
