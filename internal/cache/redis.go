package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const signedURLPrefix = "signed-url:"

// SignedURL is a cached presigned URL and the moment the URL itself expires.
type SignedURL struct {
	URL       string
	ExpiresAt time.Time
}

// URLCache stores short-lived presigned URLs keyed by object path.
type URLCache interface {
	GetURL(ctx context.Context, objectPath string) (SignedURL, bool, error)
	// SetURL keeps entry for ttl, which should end before entry.ExpiresAt.
	SetURL(ctx context.Context, objectPath string, entry SignedURL, ttl time.Duration) error
	Invalidate(ctx context.Context, objectPath string) error
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Connect opens a client and pings it once.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (r *RedisCache) GetURL(ctx context.Context, objectPath string) (SignedURL, bool, error) {
	fields, err := r.client.HGetAll(ctx, signedURLPrefix+objectPath).Result()
	if err != nil {
		return SignedURL{}, false, err
	}
	url, ok := fields["url"]
	if !ok || url == "" {
		return SignedURL{}, false, nil
	}
	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		// Unreadable entries are treated as a miss and overwritten.
		return SignedURL{}, false, nil
	}
	return SignedURL{URL: url, ExpiresAt: time.Unix(expiresAt, 0)}, true, nil
}

func (r *RedisCache) SetURL(ctx context.Context, objectPath string, entry SignedURL, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	key := signedURLPrefix + objectPath
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "url", entry.URL, "expires_at", entry.ExpiresAt.Unix())
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

// Invalidate drops any cached URL for objectPath.
func (r *RedisCache) Invalidate(ctx context.Context, objectPath string) error {
	return r.client.Del(ctx, signedURLPrefix+objectPath).Err()
}
