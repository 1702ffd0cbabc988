package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "pos:"

// Redis is a Backing for terminals that keep their state in a local Redis.
type Redis struct {
	client *redis.Client
}

// ConnectRedis dials Redis and checks it answers.
func ConnectRedis(addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("database: redis ping: %w", err)
	}
	return NewRedis(client), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(key string) ([]byte, error) {
	value, err := r.client.Get(context.Background(), redisPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database: redis get %s: %w", key, err)
	}
	return value, nil
}

func (r *Redis) Put(key string, value []byte) error {
	if err := r.client.Set(context.Background(), redisPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("database: redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(key string) error {
	if err := r.client.Del(context.Background(), redisPrefix+key).Err(); err != nil {
		return fmt.Errorf("database: redis del %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Keys() ([]string, error) {
	ctx := context.Background()
	var keys []string
	iter := r.client.Scan(ctx, 0, redisPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(redisPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("database: redis scan: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *Redis) Clear() error {
	keys, err := r.Keys()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = redisPrefix + k
	}
	if err := r.client.Del(context.Background(), full...).Err(); err != nil {
		return fmt.Errorf("database: redis clear: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
