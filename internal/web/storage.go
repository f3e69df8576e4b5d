package web

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// redisStorage is a fiber.Storage on Redis. Sessions and admin tokens of
// the web front live here when Redis is configured, so they survive a
// restart and are shared between replicas.
type redisStorage struct {
	rdb    redis.Cmdable
	prefix string
}

// NewRedisStorage returns a fiber.Storage keeping keys under prefix.
func NewRedisStorage(rdb redis.Cmdable, prefix string) fiber.Storage {
	return &redisStorage{rdb: rdb, prefix: prefix}
}

func (s *redisStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	val, err := s.rdb.Get(context.Background(), s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (s *redisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return s.rdb.Set(context.Background(), s.prefix+key, val, exp).Err()
}

func (s *redisStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	return s.rdb.Del(context.Background(), s.prefix+key).Err()
}

func (s *redisStorage) Reset() error {
	ctx := context.Background()
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *redisStorage) Close() error {
	return nil
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// memoryStorage is the fallback fiber.Storage when Redis is not configured.
type memoryStorage struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemoryStorage returns an in-process fiber.Storage.
func NewMemoryStorage() fiber.Storage {
	return &memoryStorage{entries: make(map[string]memoryEntry)}
}

func (s *memoryStorage) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		delete(s.entries, key)
		return nil, nil
	}
	return e.data, nil
}

func (s *memoryStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	e := memoryEntry{data: append([]byte(nil), val...)}
	if exp > 0 {
		e.expires = time.Now().Add(exp)
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

func (s *memoryStorage) Delete(key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (s *memoryStorage) Reset() error {
	s.mu.Lock()
	s.entries = make(map[string]memoryEntry)
	s.mu.Unlock()
	return nil
}

func (s *memoryStorage) Close() error {
	return nil
}
