package cachemon

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	fetches  atomic.Int32
	fail     atomic.Bool
	hang     bool
	mu       sync.Mutex
	cleared  []string
	clearErr error
}

func (f *fakeFetcher) CacheStats(ctx context.Context) (cache.Snapshot, error) {
	f.fetches.Add(1)
	if f.hang {
		<-ctx.Done()
		return cache.Snapshot{}, ctx.Err()
	}
	if f.fail.Load() {
		return cache.Snapshot{}, errors.New("unavailable")
	}
	return cache.Snapshot{Overall: cache.Overall{TotalHits: 7, TotalMisses: 3, HitRate: "70.00"}}, nil
}

func (f *fakeFetcher) ClearAllCaches(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, "*")
	return f.clearErr
}

func (f *fakeFetcher) ClearCache(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, name)
	return f.clearErr
}

func TestAutoRefreshOffSchedulesNoFurtherFetch(t *testing.T) {
	f := &fakeFetcher{}
	m := New(f, WithInterval(5*time.Millisecond))
	defer m.Close()

	m.SetAutoRefresh(true)
	require.Eventually(t, func() bool { return f.fetches.Load() >= 3 }, time.Second, time.Millisecond)

	m.SetAutoRefresh(false)
	assert.False(t, m.AutoRefresh())
	after := f.fetches.Load()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, f.fetches.Load())
}

func TestNeverEnabledNeverPolls(t *testing.T) {
	f := &fakeFetcher{}
	m := New(f, WithInterval(time.Millisecond))
	time.Sleep(20 * time.Millisecond)
	m.Close()
	assert.Equal(t, int32(0), f.fetches.Load())
}

func TestSetAutoRefreshTwiceRunsOnePoller(t *testing.T) {
	f := &fakeFetcher{}
	m := New(f, WithInterval(time.Hour))
	m.SetAutoRefresh(true)
	m.SetAutoRefresh(true)
	require.Eventually(t, func() bool { return f.fetches.Load() == 1 }, time.Second, time.Millisecond)
	m.Close()
	assert.Equal(t, int32(1), f.fetches.Load())
}

func TestRefreshKeepsLastGoodSnapshot(t *testing.T) {
	f := &fakeFetcher{}
	var updates int
	m := New(f, OnUpdate(func(cache.Snapshot, error) { updates++ }))

	_, err := m.Refresh(context.Background())
	require.NoError(t, err)

	f.fail.Store(true)
	_, err = m.Refresh(context.Background())
	require.Error(t, err)

	last, lastErr := m.Last()
	require.NotNil(t, last)
	assert.Equal(t, "70.00", last.Overall.HitRate)
	assert.Error(t, lastErr)
	assert.Equal(t, 2, updates)
}

func TestRefreshIsBoundedByTimeout(t *testing.T) {
	m := New(&fakeFetcher{hang: true}, WithTimeout(10*time.Millisecond))
	start := time.Now()
	_, err := m.Refresh(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClearRefetchesOnlyOnSuccess(t *testing.T) {
	f := &fakeFetcher{}
	m := New(f)

	require.NoError(t, m.ClearOne(context.Background(), "employee"))
	require.NoError(t, m.ClearAll(context.Background()))
	assert.Equal(t, int32(2), f.fetches.Load())
	assert.Equal(t, []string{"employee", "*"}, f.cleared)

	f.clearErr = errors.New("forbidden")
	assert.Error(t, m.ClearAll(context.Background()))
	assert.Equal(t, int32(2), f.fetches.Load())
}

func TestRating(t *testing.T) {
	assert.Equal(t, Good, Rating(70))
	assert.Equal(t, Good, Rating(99.5))
	assert.Equal(t, Fair, Rating(50))
	assert.Equal(t, Fair, Rating(69.99))
	assert.Equal(t, Poor, Rating(49.99))
	assert.Equal(t, Poor, Rating(0))
}

func TestParseRate(t *testing.T) {
	assert.Equal(t, 72.5, ParseRate("72.50"))
	assert.Equal(t, 70.0, ParseRate("70.00%"))
	assert.Equal(t, 0.0, ParseRate("n/a"))
}
