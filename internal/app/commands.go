package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rbrandt/copilot-usage-tui/internal/logger"
	"github.com/rbrandt/copilot-usage-tui/internal/models"
	"github.com/rbrandt/copilot-usage-tui/internal/services"
	"github.com/rbrandt/copilot-usage-tui/internal/stats"
)

// tickCmd returns a command that sends a TickMsg after the given interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// watchCacheCmd subscribes to cache-file changes. The watcher lives until
// ctx is cancelled; failure to watch degrades to a dashboard that only
// updates on explicit refresh.
func watchCacheCmd(ctx context.Context, mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ch, err := mgr.Watch(ctx)
		if err != nil {
			logger.Warn("cache watch unavailable", "error", err)
			return nil
		}
		return cacheWatchMsg{changes: ch}
	}
}

// waitForCacheChangeCmd blocks on the watcher channel and surfaces the next
// change as a message.
func waitForCacheChangeCmd(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return CacheChangedMsg{}
	}
}

// reloadCachedStatsCmd re-aggregates stats from the cache if it is fresh.
// Anything other than a fresh cache is ignored: a deleted or expired file is
// not a reason to disturb the dashboard.
func reloadCachedStatsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		status := mgr.Store().Status()
		if status.State != models.CacheFresh {
			return nil
		}
		return StatsReloadedMsg{Stats: stats.Aggregate(status.Snapshot, stats.PlanLimit)}
	}
}
