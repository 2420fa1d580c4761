package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/redis.v5"
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

// Cache: JSON поверх redis. Промах не ошибка.
type Cache struct {
	client *redis.Client
}

func New(opts Options) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     20,
	})
	if err := client.Ping().Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &Cache{client: client}, nil
}

// FromClient для тестов и готовых клиентов.
func FromClient(c *redis.Client) *Cache { return &Cache{client: c} }

func (c *Cache) Ping() error { return c.client.Ping().Err() }

// GetJSON: false без ошибки при промахе.
func (c *Cache) GetJSON(key string, v interface{}) (bool, error) {
	raw, err := c.client.Get(key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("cache %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) SetJSON(key string, v interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(key, raw, ttl).Err()
}

func (c *Cache) Del(keys ...string) error {
	return c.client.Del(keys...).Err()
}

func (c *Cache) Close() error { return c.client.Close() }
