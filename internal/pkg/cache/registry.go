package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// Names of the built-in caches.
const (
	User      = "user"
	Employee  = "employee"
	Salary    = "salary"
	LeaveType = "leaveType"
	Company   = "company"
	App       = "app"
)

var ErrUnknownCache = errors.New("unknown cache name")

type definition struct {
	name        string
	displayName string
	ttl         time.Duration
}

var builtin = []definition{
	{User, "User Cache", 10 * time.Minute},
	{Employee, "Employee Cache", 5 * time.Minute},
	{Salary, "Salary Cache", time.Hour},
	{LeaveType, "Leave Type Cache", 2 * time.Hour},
	{Company, "Company Cache", 30 * time.Minute},
	{App, "Application Cache", 5 * time.Minute},
}

// Registry owns the named caches of the process.
type Registry struct {
	caches map[string]*Cache
	order  []string
	now    func() time.Time
}

// Snapshot is the body of the cache statistics endpoint.
type Snapshot struct {
	Timestamp time.Time        `json:"timestamp"`
	Overall   Overall          `json:"overall"`
	Caches    map[string]Stats `json:"caches"`
}

type Overall struct {
	TotalHits   int64  `json:"totalHits"`
	TotalMisses int64  `json:"totalMisses"`
	TotalKeys   int    `json:"totalKeys"`
	HitRate     string `json:"hitRate"`
}

// NewRegistry builds the built-in caches. metrics may be nil.
func NewRegistry(metrics *Metrics) *Registry {
	r := &Registry{caches: make(map[string]*Cache, len(builtin)), now: time.Now}
	for _, s := range builtin {
		c := New(s.name, s.displayName, s.ttl)
		c.metrics = metrics
		r.caches[s.name] = c
		r.order = append(r.order, s.name)
	}
	return r
}

// SetClock replaces the time source of the registry and every cache in it.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
	for _, c := range r.caches {
		c.now = now
	}
}

// Names returns the cache names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) Get(name string) (*Cache, error) {
	c, ok := r.caches[name]
	if !ok {
		return nil, ErrUnknownCache
	}
	return c, nil
}

// MustGet is for the built-in names only.
func (r *Registry) MustGet(name string) *Cache {
	c, err := r.Get(name)
	if err != nil {
		panic("cache: " + name + ": " + err.Error())
	}
	return c
}

func (r *Registry) ClearAll() {
	for _, name := range r.order {
		r.caches[name].Flush()
	}
	slog.Info("all caches cleared")
}

// Clear flushes one cache by name.
func (r *Registry) Clear(name string) error {
	c, err := r.Get(name)
	if err != nil {
		return err
	}
	c.Flush()
	slog.Info("cache cleared", "cache", name)
	return nil
}

// ClearCompany drops company-scoped keys, i.e. keys with a ":<id>:" segment or a ":<id>" suffix.
func (r *Registry) ClearCompany(companyID string) int {
	inner, suffix := ":"+companyID+":", ":"+companyID
	removed := 0
	for _, name := range []string{App, Employee, Salary, Company} {
		removed += r.caches[name].DeleteFunc(func(key string) bool {
			return strings.Contains(key, inner) || strings.HasSuffix(key, suffix)
		})
	}
	slog.Info("company cache cleared", "company_id", companyID, "keys", removed)
	return removed
}

// ClearEmployee drops every key that belongs to one employee.
func (r *Registry) ClearEmployee(employeeID string) int {
	prefixes := []string{
		"employee:" + employeeID,
		"salary:" + employeeID,
		"attendance:" + employeeID,
		"payroll:" + employeeID,
	}
	removed := 0
	for _, name := range []string{Employee, Salary, App} {
		removed += r.caches[name].DeleteFunc(func(key string) bool {
			for _, p := range prefixes {
				if strings.HasPrefix(key, p) {
					return true
				}
			}
			return false
		})
	}
	slog.Debug("employee cache cleared", "employee_id", employeeID, "keys", removed)
	return removed
}

// DeleteExpired runs expiry across every cache.
func (r *Registry) DeleteExpired(ctx context.Context) error {
	total := 0
	for _, name := range r.order {
		if err := ctx.Err(); err != nil {
			return err
		}
		total += r.caches[name].DeleteExpired()
	}
	if total > 0 {
		slog.Debug("expired cache keys evicted", "keys", total)
	}
	return nil
}

func (r *Registry) Stats() Snapshot {
	snap := Snapshot{
		Timestamp: r.now().UTC(),
		Caches:    make(map[string]Stats, len(r.order)),
	}
	for _, name := range r.order {
		s := r.caches[name].Stats()
		snap.Caches[name] = s
		snap.Overall.TotalHits += s.Hits
		snap.Overall.TotalMisses += s.Misses
		snap.Overall.TotalKeys += s.Keys
	}
	snap.Overall.HitRate = strings.TrimSuffix(FormatHitRate(snap.Overall.TotalHits, snap.Overall.TotalMisses), "%")
	return snap
}
