package cache

import (
	"time"

	redisCache "github.com/go-redis/cache"
	"github.com/go-redis/redis"
	"github.com/vmihailenco/msgpack"
)

// RedisCacheAdapter shares cached weights between engine replicas.
// Entries expire on their own after `expiration` so a dead replica's
// stale weights age out without coordination.
type RedisCacheAdapter struct {
	store      *redisCache.Codec
	expiration time.Duration
}

type RedisRingOptions redis.RingOptions

func NewRedisCacheAdapter(opt *RedisRingOptions, expiration time.Duration) *RedisCacheAdapter {
	ropt := redis.RingOptions(*opt)
	a := &RedisCacheAdapter{
		store: &redisCache.Codec{
			Redis: redis.NewRing(&ropt),
			Marshal: func(v interface{}) ([]byte, error) {
				return msgpack.Marshal(v)
			},
			Unmarshal: func(b []byte, v interface{}) error {
				return msgpack.Unmarshal(b, v)
			},
		},
		expiration: expiration,
	}
	return a
}

func (a *RedisCacheAdapter) Get(key string) (*Entry, bool) {
	var entry Entry
	if err := a.store.Get(key, &entry); err != nil {
		return nil, false
	}
	return &entry, true
}

func (a *RedisCacheAdapter) Set(key string, entry *Entry) {
	a.store.Set(&redisCache.Item{
		Key:        key,
		Object:     entry,
		Expiration: a.expiration,
	})
}

func (a *RedisCacheAdapter) Remove(key string) {
	a.store.Delete(key)
}
