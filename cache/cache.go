// Package cache holds the page cache the feed listing is served
// through. Entries live until their TTL passes or the cache is
// cleared; nothing invalidates them on writes.
package cache

import "time"

type PageCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, body []byte, ttl time.Duration)
	Clear()
}
