package caching

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "portal"

type CacheService interface {
	// Session lookups, keyed by the SHA-256 of the session token
	SetSession(ctx context.Context, tokenHash string, customerID uuid.UUID, ttl time.Duration) error
	GetSession(ctx context.Context, tokenHash string) (uuid.UUID, bool, error)
	DeleteSession(ctx context.Context, tokenHash string) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisClient builds a client, accepting addresses with or without a redis:// scheme
func NewRedisClient(addr, password string, db int) *redis.Client {
	parsedAddr := addr
	for _, scheme := range []string{"rediss://", "redis://"} {
		if strings.HasPrefix(addr, scheme) {
			parsedAddr = strings.TrimPrefix(addr, scheme)
			break
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", err, parsedAddr)
	} else {
		log.Printf("Redis connection established")
	}

	return client
}

func NewRedisCacheService(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func sessionKey(tokenHash string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, tokenHash)
}

func rateLimitKey(key string) string {
	return fmt.Sprintf("%s:ratelimit:%s", keyPrefix, key)
}

func (r *redisCacheService) SetSession(ctx context.Context, tokenHash string, customerID uuid.UUID, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, sessionKey(tokenHash), customerID.String(), ttl).Err()
}

func (r *redisCacheService) GetSession(ctx context.Context, tokenHash string) (uuid.UUID, bool, error) {
	val, err := r.client.Get(ctx, sessionKey(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, err
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("corrupt session cache entry: %w", err)
	}
	return id, true, nil
}

func (r *redisCacheService) DeleteSession(ctx context.Context, tokenHash string) error {
	return r.client.Del(ctx, sessionKey(tokenHash)).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := rateLimitKey(key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return false, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
