package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(ttl time.Duration) (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)}
	c := New("test", "Test Cache", ttl)
	c.now = clock.now
	return c, clock
}

func TestFormatHitRate(t *testing.T) {
	assert.Equal(t, "0.00%", FormatHitRate(0, 0))
	assert.Equal(t, "70.00%", FormatHitRate(7, 3))
	assert.Equal(t, "100.00%", FormatHitRate(5, 0))
	assert.Equal(t, "33.33%", FormatHitRate(1, 2))
}

func TestGetCountsHitsAndMisses(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Set("k", 42)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	s := c.Stats()
	assert.Equal(t, "Test Cache", s.Name)
	assert.Equal(t, int64(1), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.Equal(t, 1, s.Keys)
	assert.Equal(t, "50.00", s.HitRate)
}

func TestEntriesExpire(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	c.Set("short", "a")
	c.SetWithTTL("long", "b", time.Hour)
	c.SetWithTTL("forever", "c", 0)

	clock.advance(2 * time.Minute)

	_, ok := c.Get("short")
	assert.False(t, ok)
	assert.Equal(t, []string{"forever", "long"}, c.Keys())

	assert.Equal(t, 1, c.DeleteExpired())
	assert.Equal(t, 0, c.DeleteExpired())
}

func TestFlushKeepsCounters(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Set("a", 1)
	c.Get("a")
	c.Flush()

	assert.Empty(t, c.Keys())
	assert.Equal(t, int64(1), c.Stats().Hits)
}

func TestGetOrLoadDeduplicatesConcurrentLoads(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})

	load := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "value", nil
	}

	var wg sync.WaitGroup
	results := make([]any, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrLoad(context.Background(), "k", time.Minute, load)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, "value", v)
	}
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	boom := errors.New("boom")

	_, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(context.Context) (any, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, c.Keys())
}

func TestLoadTyped(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"Annual", "Sick"}, nil
	}

	first, err := Load(context.Background(), c, "types", time.Minute, load)
	require.NoError(t, err)
	second, err := Load(context.Background(), c, "types", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestRegistryClearCompany(t *testing.T) {
	r := NewRegistry(nil)
	r.MustGet(Company).Set("access:c1:hr:payroll", true)
	r.MustGet(Company).Set("access:c10:hr:payroll", true)
	r.MustGet(App).Set("employees:list:c1", 1)
	r.MustGet(App).Set("employees:list:c10", 1)
	r.MustGet(User).Set("user:c1", 1)

	removed := r.ClearCompany("c1")

	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"access:c10:hr:payroll"}, r.MustGet(Company).Keys())
	assert.Equal(t, []string{"employees:list:c10"}, r.MustGet(App).Keys())
	assert.Len(t, r.MustGet(User).Keys(), 1, "user cache is not company-scoped")
}

func TestRegistryClearEmployee(t *testing.T) {
	r := NewRegistry(nil)
	r.MustGet(Employee).Set("employee:e1", 1)
	r.MustGet(Salary).Set("salary:e1:structure", 1)
	r.MustGet(App).Set("attendance:e1:2025-01", 1)
	r.MustGet(App).Set("payroll:e1:payslips", 1)
	r.MustGet(App).Set("payroll:e2:payslips", 1)

	assert.Equal(t, 4, r.ClearEmployee("e1"))
	assert.Equal(t, []string{"payroll:e2:payslips"}, r.MustGet(App).Keys())
}

func TestRegistryStats(t *testing.T) {
	r := NewRegistry(nil)
	assert.Equal(t, "0.00", r.Stats().Overall.HitRate)

	emp := r.MustGet(Employee)
	emp.Set("employee:e1", 1)
	for i := 0; i < 7; i++ {
		emp.Get("employee:e1")
	}
	for i := 0; i < 3; i++ {
		emp.Get("missing")
	}

	snap := r.Stats()
	assert.Equal(t, int64(7), snap.Overall.TotalHits)
	assert.Equal(t, int64(3), snap.Overall.TotalMisses)
	assert.Equal(t, 1, snap.Overall.TotalKeys)
	assert.Equal(t, "70.00", snap.Overall.HitRate)
	assert.Len(t, snap.Caches, 6)
	assert.Equal(t, "Employee Cache", snap.Caches[Employee].Name)
}

func TestRegistryUnknownCache(t *testing.T) {
	r := NewRegistry(nil)
	assert.ErrorIs(t, r.Clear("nope"), ErrUnknownCache)
	assert.Equal(t, []string{User, Employee, Salary, LeaveType, Company, App}, r.Names())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(NewMetrics(reg))

	c := r.MustGet(User)
	c.Set("user:u1", 1)
	c.Get("user:u1")
	c.Get("user:u2")

	m := c.metrics
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hits.WithLabelValues(User)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.misses.WithLabelValues(User)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.keys.WithLabelValues(User)))
}
