package cache

import (
	"github.com/hashicorp/golang-lru"
)

type MemCacheAdapter struct {
	lruCache *lru.Cache
}

func NewMemCacheAdapter(size int) *MemCacheAdapter {
	lruCache, err := lru.New(size)
	if err != nil {
		panic(err)
	}

	a := &MemCacheAdapter{
		lruCache: lruCache,
	}
	return a
}

func (a *MemCacheAdapter) Get(key string) (*Entry, bool) {
	value, ok := a.lruCache.Get(key)
	if ok {
		entry, ok := value.(*Entry)
		return entry, ok
	}
	return nil, ok
}

func (a *MemCacheAdapter) Set(key string, entry *Entry) {
	a.lruCache.Add(key, entry)
}

func (a *MemCacheAdapter) Remove(key string) {
	a.lruCache.Remove(key)
}
