package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

type RedisStore struct {
	rdb *redis.Client
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisStore(cfg RedisConfig) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	id, err := newID()

	if err != nil {
		return "", err
	}

	err = s.rdb.Set(ctx, keyPrefix+id, userID, ttl).Err()

	if err != nil {
		return "", err
	}

	return id, nil
}

func (s *RedisStore) Resolve(ctx context.Context, id string) (string, error) {
	userID, err := s.rdb.Get(ctx, keyPrefix+id).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}

		return "", err
	}

	return userID, nil
}

func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, keyPrefix+id).Err()
}

// Ping checks redis connectivity, used at startup and by the readiness probe.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
