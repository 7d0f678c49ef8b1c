package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// rotateScript swaps the slot only when it still holds the presented
// token. Running it server-side makes the compare-and-set atomic.
var rotateScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
end
return 0
`)

// RedisStore keeps the refresh-token slot in Redis with the refresh TTL
// as key expiry, for deployments that do not want token churn on the
// users table.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "refresh:",
		ttl:    ttl,
	}
}

func (r *RedisStore) key(userID string) string {
	return r.prefix + userID
}

func (r *RedisStore) Set(ctx context.Context, userID, token string) error {
	return r.client.Set(ctx, r.key(userID), token, r.ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, userID string) (string, error) {
	val, err := r.client.Get(ctx, r.key(userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *RedisStore) Rotate(ctx context.Context, userID, oldToken, newToken string) (bool, error) {
	res, err := rotateScript.Run(
		ctx,
		r.client,
		[]string{r.key(userID)},
		oldToken,
		newToken,
		r.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (r *RedisStore) Clear(ctx context.Context, userID string) error {
	return r.client.Del(ctx, r.key(userID)).Err()
}
