package main

import (
	"fmt"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/client/board"
	"github.com/hrx-hr/hrx-backend-go/internal/client/cachemon"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/cache"
	"github.com/spf13/cobra"
)

func cacheTable(s styles, snap cache.Snapshot) board.Table {
	names := make([]string, 0, len(snap.Caches))
	for name := range snap.Caches {
		names = append(names, name)
	}
	sort.Strings(names)

	t := board.Table{Headers: []string{"Cache", "Hits", "Misses", "Keys", "Hit Rate", "Health"}}
	for _, name := range names {
		c := snap.Caches[name]
		t.Rows = append(t.Rows, []string{
			name,
			strconv.FormatInt(c.Hits, 10),
			strconv.FormatInt(c.Misses, 10),
			strconv.Itoa(c.Keys),
			c.HitRate + "%",
			s.health(cachemon.Rating(cachemon.ParseRate(c.HitRate))),
		})
	}
	return t
}

func printSnapshot(a *app, snap cache.Snapshot) {
	a.styles.render(a.out, "Caches at "+snap.Timestamp.Local().Format("15:04:05"), cacheTable(a.styles, snap))
	o := snap.Overall
	fmt.Fprintf(a.out, "Overall: %d hits, %d misses, %d keys, hit rate %s%% (%s)\n",
		o.TotalHits, o.TotalMisses, o.TotalKeys, o.HitRate,
		a.styles.health(cachemon.Rating(cachemon.ParseRate(o.HitRate))))
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	a, err := mustSession(cmd, routeCache)
	if err != nil {
		return err
	}
	mon := cachemon.New(a.api)
	snap, err := mon.Refresh(cmd.Context())
	if err != nil {
		return a.handleAuthError(err)
	}
	printSnapshot(a, snap)
	return nil
}

func runCacheWatch(cmd *cobra.Command, args []string) error {
	a, err := mustSession(cmd, routeCache)
	if err != nil {
		return err
	}
	interval, err := time.ParseDuration(watchInterval)
	if err != nil || interval <= 0 {
		return fmt.Errorf("invalid --interval %q", watchInterval)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mon := cachemon.New(a.api,
		cachemon.WithInterval(interval),
		cachemon.OnUpdate(func(snap cache.Snapshot, err error) {
			if err != nil {
				fmt.Fprintln(a.out, a.styles.Error.Render("Refresh failed: "+err.Error()))
				return
			}
			printSnapshot(a, snap)
		}),
	)
	mon.SetAutoRefresh(true)
	<-ctx.Done()
	mon.SetAutoRefresh(false)
	mon.Close()
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	a, err := mustSession(cmd, routeCache)
	if err != nil {
		return err
	}
	mon := cachemon.New(a.api)
	if len(args) == 1 {
		if err := mon.ClearOne(cmd.Context(), args[0]); err != nil {
			return a.handleAuthError(err)
		}
		a.styles.ok(a.out, "Cleared %s.", args[0])
	} else {
		if err := mon.ClearAll(cmd.Context()); err != nil {
			return a.handleAuthError(err)
		}
		a.styles.ok(a.out, "Cleared all caches.")
	}
	if snap, _ := mon.Last(); snap != nil {
		printSnapshot(a, *snap)
	}
	return nil
}
