package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/coocood/freecache"
)

const megabyte = 1024 * 1024

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Del(key string)
}

var _ Cache = (*FreeCache)(nil)

// FreeCache is an in-process byte cache with per-entry expiry.
type FreeCache struct {
	cache *freecache.Cache
}

// NewFreeCache creates the cache with sizeMB megabytes preallocated.
// freecache enforces a 512KB minimum.
func NewFreeCache(sizeMB int) *FreeCache {
	if sizeMB <= 0 {
		sizeMB = 1
	}
	return &FreeCache{
		cache: freecache.NewCache(sizeMB * megabyte),
	}
}

func (c *FreeCache) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores value for ttl; a zero or negative ttl means no expiry.
func (c *FreeCache) Set(key string, value []byte, ttl time.Duration) error {
	expireSec := 0
	if ttl > 0 {
		expireSec = int(ttl.Seconds())
		if expireSec == 0 {
			expireSec = 1
		}
	}
	if err := c.cache.Set([]byte(key), value, expireSec); err != nil {
		if errors.Is(err, freecache.ErrLargeEntry) {
			return fmt.Errorf("cache entry [%s] too large: %w", key, err)
		}
		return fmt.Errorf("cache set [%s]: %w", key, err)
	}
	return nil
}

func (c *FreeCache) Del(key string) {
	c.cache.Del([]byte(key))
}

func (c *FreeCache) EntryCount() int64 {
	return c.cache.EntryCount()
}
