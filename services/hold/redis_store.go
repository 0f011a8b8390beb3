package hold

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Lua makes each operation a single atomic round trip: the ownership check
// and the mutation cannot interleave with a competing acquire.
var (
	acquireScript = redis.NewScript(`
		local v = redis.call('GET', KEYS[1])
		if not v or v == ARGV[1] then
			redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
			return 1
		end
		return 0
	`)
	releaseScript = redis.NewScript(`
		if redis.call('GET', KEYS[1]) == ARGV[1] then
			redis.call('DEL', KEYS[1])
			return 1
		end
		return 0
	`)
	renewScript = redis.NewScript(`
		if redis.call('GET', KEYS[1]) == ARGV[1] then
			redis.call('PEXPIRE', KEYS[1], ARGV[2])
			return 1
		end
		return 0
	`)
)

// RedisStore keeps hold state in Redis so every server instance sees the
// same holds. Expiry is Redis key TTL; an abandoned checkout frees its slot
// without any sweep.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Acquire(ctx context.Context, key, sessionID string, ttl time.Duration) (bool, error) {
	res, err := acquireScript.Run(ctx, s.client, []string{key}, sessionID, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("hold acquire failed: %w", err)
	}
	return res == 1, nil
}

func (s *RedisStore) Release(ctx context.Context, key, sessionID string) (bool, error) {
	res, err := releaseScript.Run(ctx, s.client, []string{key}, sessionID).Int()
	if err != nil {
		return false, fmt.Errorf("hold release failed: %w", err)
	}
	return res == 1, nil
}

func (s *RedisStore) Renew(ctx context.Context, key, sessionID string, ttl time.Duration) (bool, error) {
	res, err := renewScript.Run(ctx, s.client, []string{key}, sessionID, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("hold renew failed: %w", err)
	}
	return res == 1, nil
}

func (s *RedisStore) Owner(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("hold lookup failed: %w", err)
	}
	return v, nil
}
