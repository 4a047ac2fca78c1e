package app

import (
	"time"

	"github.com/rbrandt/copilot-usage-tui/internal/models"
)

// TickMsg drives the adaptive frame loop. Each tick drains the result
// channel and re-arms itself with the interval for the current mode.
type TickMsg struct {
	Time time.Time
}

// cacheWatchMsg delivers the watcher channel once the cache subscription is
// established.
type cacheWatchMsg struct {
	changes <-chan struct{}
}

// CacheChangedMsg signals that the cache file was rewritten by another
// process, for example a waybar invocation running on its own timer.
type CacheChangedMsg struct{}

// StatsReloadedMsg carries stats re-aggregated from a freshly written cache.
type StatsReloadedMsg struct {
	Stats models.UsageStats
}
