package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is nil when Redis is not configured; every helper degrades to a
// no-op so the API keeps working without the cache.
var Client *redis.Client

func Connect(addr string) error {
	c := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		return err
	}

	Client = c
	return nil
}

func Close() error {
	if Client == nil {
		return nil
	}
	return Client.Close()
}

func SetOrderStatus(ctx context.Context, orderID string, payload []byte) {
	if Client == nil {
		return
	}
	key := fmt.Sprintf(KeyOrderStatus, orderID)
	_ = Client.Set(ctx, key, payload, TTLStatusCache).Err()
}

func GetOrderStatus(ctx context.Context, orderID string) (string, bool) {
	if Client == nil {
		return "", false
	}
	key := fmt.Sprintf(KeyOrderStatus, orderID)
	s, err := Client.Get(ctx, key).Result()
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

func InvalidateOrderStatus(ctx context.Context, orderID string) {
	if Client == nil {
		return
	}
	_ = Client.Del(ctx, fmt.Sprintf(KeyOrderStatus, orderID)).Err()
}

// DenyToken blacklists an access token until it would have expired anyway.
func DenyToken(ctx context.Context, token string, ttl time.Duration) {
	if Client == nil || ttl <= 0 {
		return
	}
	key := fmt.Sprintf(KeyTokenDenied, tokenDigest(token))
	_ = Client.Set(ctx, key, "1", ttl).Err()
}

func IsTokenDenied(ctx context.Context, token string) bool {
	if Client == nil {
		return false
	}
	key := fmt.Sprintf(KeyTokenDenied, tokenDigest(token))
	n, err := Client.Exists(ctx, key).Result()
	return err == nil && n > 0
}

// tokenDigest keeps raw JWTs out of Redis keys.
func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
