package cache

import (
	"time"

	"github.com/go-redis/redis"
)

const keyPrefix = "page:"

// Redis is the PageCache used in production.
type Redis struct {
	client *redis.Client
}

func NewRedis(rawURL string) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if _, err := client.Ping().Result(); err != nil {
		return nil, err
	}
	return &Redis{client: client}, nil
}

func (c *Redis) Get(key string) ([]byte, bool) {
	body, err := c.client.Get(keyPrefix + key).Bytes()
	if err != nil {
		// redis.Nil is an ordinary miss; any other failure is
		// treated the same and the page is rebuilt.
		return nil, false
	}
	return body, true
}

func (c *Redis) Set(key string, body []byte, ttl time.Duration) {
	c.client.Set(keyPrefix+key, body, ttl)
}

func (c *Redis) Clear() {
	keys, err := c.client.Keys(keyPrefix + "*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	c.client.Del(keys...)
}

func (c *Redis) Close() error {
	return c.client.Close()
}
