package cron

import (
	"context"
	"time"
)

// ExpiringCache is satisfied by cache.Registry.
type ExpiringCache interface {
	DeleteExpired(ctx context.Context) error
}

// RegisterCacheJanitor evicts expired cache entries every interval.
func RegisterCacheJanitor(scheduler *Scheduler, caches ExpiringCache, interval time.Duration) {
	scheduler.AddJob("cache_janitor", interval, caches.DeleteExpired)
}
