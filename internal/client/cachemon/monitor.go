// Package cachemon polls the cache statistics endpoint.
package cachemon

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/pkg/cache"
)

const (
	DefaultInterval = 5 * time.Second
	DefaultTimeout  = 10 * time.Second
)

type Fetcher interface {
	CacheStats(ctx context.Context) (cache.Snapshot, error)
	ClearAllCaches(ctx context.Context) error
	ClearCache(ctx context.Context, name string) error
}

type Monitor struct {
	fetcher  Fetcher
	interval time.Duration
	timeout  time.Duration
	onUpdate func(cache.Snapshot, error)

	mu      sync.Mutex
	last    *cache.Snapshot
	lastErr error
	cancel  context.CancelFunc
	done    chan struct{}
}

type Option func(*Monitor)

func WithInterval(d time.Duration) Option {
	return func(m *Monitor) { m.interval = d }
}

func WithTimeout(d time.Duration) Option {
	return func(m *Monitor) { m.timeout = d }
}

// OnUpdate is called after every fetch, from the goroutine that fetched.
func OnUpdate(fn func(cache.Snapshot, error)) Option {
	return func(m *Monitor) { m.onUpdate = fn }
}

func New(fetcher Fetcher, opts ...Option) *Monitor {
	m := &Monitor{
		fetcher:  fetcher,
		interval: DefaultInterval,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Last returns the most recent snapshot, nil before the first successful fetch.
func (m *Monitor) Last() (*cache.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.lastErr
}

// Refresh fetches once, bounded by the monitor timeout. A failed fetch keeps the
// previous snapshot.
func (m *Monitor) Refresh(ctx context.Context) (cache.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	snap, err := m.fetcher.CacheStats(ctx)

	m.mu.Lock()
	m.lastErr = err
	if err == nil {
		m.last = &snap
	}
	m.mu.Unlock()

	if m.onUpdate != nil {
		m.onUpdate(snap, err)
	}
	return snap, err
}

func (m *Monitor) AutoRefresh() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// SetAutoRefresh starts or stops polling. Enabling fetches immediately and then
// every interval; disabling waits for the polling goroutine to exit.
func (m *Monitor) SetAutoRefresh(on bool) {
	if !on {
		m.stop()
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.poll(ctx, m.done)
}

func (m *Monitor) poll(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	_, _ = m.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = m.Refresh(ctx)
		}
	}
}

func (m *Monitor) stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Monitor) ClearAll(ctx context.Context) error {
	if err := m.fetcher.ClearAllCaches(ctx); err != nil {
		return err
	}
	_, err := m.Refresh(ctx)
	return err
}

func (m *Monitor) ClearOne(ctx context.Context, name string) error {
	if err := m.fetcher.ClearCache(ctx, name); err != nil {
		return err
	}
	_, err := m.Refresh(ctx)
	return err
}

func (m *Monitor) Close() {
	m.stop()
}

type Health string

const (
	Good Health = "good"
	Fair Health = "fair"
	Poor Health = "poor"
)

// Rating buckets a hit-rate percentage.
func Rating(hitRate float64) Health {
	switch {
	case hitRate >= 70:
		return Good
	case hitRate >= 50:
		return Fair
	default:
		return Poor
	}
}

// ParseRate reads a hit rate such as "72.50" or "72.50%". Garbage reads as 0.
func ParseRate(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if err != nil {
		return 0
	}
	return v
}
