// Package services runs the slow work (network fetch, cache inspection,
// config persistence) off the render goroutine and hands results back
// through a channel.
package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/gen2brain/beeep"

	"github.com/rbrandt/copilot-usage-tui/internal/api"
	"github.com/rbrandt/copilot-usage-tui/internal/cache"
	"github.com/rbrandt/copilot-usage-tui/internal/config"
	"github.com/rbrandt/copilot-usage-tui/internal/logger"
	"github.com/rbrandt/copilot-usage-tui/internal/models"
	"github.com/rbrandt/copilot-usage-tui/internal/stats"
)

// ResultKind identifies the background operation a Result came from.
type ResultKind int

const (
	// RefreshComplete carries fresh stats or the fetch failure.
	RefreshComplete ResultKind = iota
	// CacheInfoReady carries the cache display projection.
	CacheInfoReady
	// ThemeSaved reports theme persistence; failures are informational only.
	ThemeSaved
)

// String returns the string representation of a ResultKind.
func (k ResultKind) String() string {
	switch k {
	case RefreshComplete:
		return "refresh"
	case CacheInfoReady:
		return "cache-info"
	case ThemeSaved:
		return "theme-saved"
	default:
		return "unknown"
	}
}

// Result is published exactly once per spawned operation. Gen stamps the
// generation that spawned it; consumers discard results whose generation is
// no longer current.
type Result struct {
	Kind  ResultKind
	Gen   uint64
	Stats *models.UsageStats
	Info  models.CacheInfo
	Err   error

	// Message is the short user-facing text for a failure; Debug carries
	// the full diagnostics behind the toggle.
	Message string
	Debug   string
}

// Fetcher is the external usage collaborator.
type Fetcher interface {
	FetchUsage(ctx context.Context, username string) (*models.UsageSnapshot, error)
	ResolveUser(ctx context.Context) (string, error)
}

const (
	resultBuffer = 16

	// Desktop notification threshold, percent of plan limit.
	notifyThreshold = 90.0
)

// Manager owns the result channel and the generation counter. All spawned
// work publishes here; only the UI goroutine consumes.
type Manager struct {
	cfg     *config.Manager
	store   *cache.Store
	fetcher Fetcher
	limit   float64

	results chan Result
	gen     atomic.Uint64

	notifyFn func(title, message, icon string) error
}

// NewManager wires the orchestrator to its collaborators. Dependencies are
// passed explicitly so tests can run against temp paths and a fake fetcher.
func NewManager(cfg *config.Manager, store *cache.Store, fetcher Fetcher) *Manager {
	return &Manager{
		cfg:      cfg,
		store:    store,
		fetcher:  fetcher,
		limit:    stats.PlanLimit,
		results:  make(chan Result, resultBuffer),
		notifyFn: func(title, message, icon string) error {
			return beeep.Notify(title, message, icon)
		},
	}
}

// Store exposes the cache store for read-only use by the CLI shell.
func (m *Manager) Store() *cache.Store {
	return m.store
}

// CurrentGen returns the generation the next applied result must carry.
func (m *Manager) CurrentGen() uint64 {
	return m.gen.Load()
}

// Cancel bumps the generation without spawning, so any in-flight result is
// discarded when it eventually arrives. The background task itself is not
// aborted.
func (m *Manager) Cancel() {
	m.gen.Add(1)
}

// TryRecv drains at most one result without blocking.
func (m *Manager) TryRecv() (Result, bool) {
	select {
	case r := <-m.results:
		return r, true
	default:
		return Result{}, false
	}
}

func (m *Manager) publish(r Result) {
	select {
	case m.results <- r:
	default:
		// Channel full, drop oldest
		select {
		case <-m.results:
		default:
		}
		select {
		case m.results <- r:
		default:
		}
	}
}

// SpawnRefresh invalidates the cache and fetches a fresh snapshot in the
// background, publishing RefreshComplete either way.
func (m *Manager) SpawnRefresh() {
	gen := m.gen.Add(1)

	go func() {
		s, err := m.refresh(context.Background())
		r := Result{Kind: RefreshComplete, Gen: gen, Err: err}
		if err != nil {
			r.Message = api.UserMessage(err)
			r.Debug = err.Error()
			logger.Error("refresh failed", "error", err)
		} else {
			r.Stats = &s
			m.maybeNotify(s)
		}
		m.publish(r)
	}()
}

// SpawnCacheInfo builds the cache projection in the background.
func (m *Manager) SpawnCacheInfo() {
	gen := m.gen.Add(1)

	go func() {
		m.publish(Result{Kind: CacheInfoReady, Gen: gen, Info: m.store.Info()})
	}()
}

// SpawnSaveTheme persists the theme preference in the background. The visual
// change was already applied optimistically, so a save failure only costs the
// preference on next launch and is swallowed.
func (m *Manager) SpawnSaveTheme(name string) {
	gen := m.gen.Add(1)

	go func() {
		err := m.saveTheme(name)
		if err != nil {
			logger.Warn("failed to save theme preference", "theme", name, "error", err)
		}
		m.publish(Result{Kind: ThemeSaved, Gen: gen, Err: err})
	}()
}

func (m *Manager) saveTheme(name string) error {
	cfg, err := m.cfg.Load()
	if err != nil {
		return err
	}
	if cfg == nil {
		return fmt.Errorf("no configuration to update")
	}
	cfg.Theme = name
	return m.cfg.Save(cfg)
}

// refresh performs the full refresh cycle: invalidate, resolve the account,
// fetch, persist, aggregate.
func (m *Manager) refresh(ctx context.Context) (models.UsageStats, error) {
	if err := m.store.Invalidate(); err != nil {
		return models.UsageStats{}, err
	}

	username, err := m.resolveAccount(ctx)
	if err != nil {
		return models.UsageStats{}, err
	}

	snapshot, err := m.fetcher.FetchUsage(ctx, username)
	if err != nil {
		return models.UsageStats{}, err
	}

	if err := m.store.Set(snapshot); err != nil {
		return models.UsageStats{}, err
	}

	return stats.Aggregate(snapshot, m.limit), nil
}

// LoadStats is the synchronous path used by the CLI shell: serve from a
// fresh cache, otherwise fetch and persist. Cache corruption or absence is
// recovered silently by fetching.
func (m *Manager) LoadStats(ctx context.Context, force bool) (models.UsageStats, error) {
	if force {
		if err := m.store.Invalidate(); err != nil {
			return models.UsageStats{}, err
		}
	}

	if status := m.store.Status(); status.State == models.CacheFresh {
		return stats.Aggregate(status.Snapshot, m.limit), nil
	}

	username, err := m.resolveAccount(ctx)
	if err != nil {
		return models.UsageStats{}, err
	}

	snapshot, err := m.fetcher.FetchUsage(ctx, username)
	if err != nil {
		return models.UsageStats{}, err
	}

	if err := m.store.Set(snapshot); err != nil {
		return models.UsageStats{}, err
	}

	return stats.Aggregate(snapshot, m.limit), nil
}

// resolveAccount prefers the username cached in the config and falls back to
// asking the API. A freshly resolved name is written back best-effort.
func (m *Manager) resolveAccount(ctx context.Context) (string, error) {
	cfg, err := m.cfg.Load()
	if err != nil {
		return "", err
	}
	if cfg != nil && cfg.Username != "" {
		return cfg.Username, nil
	}

	username, err := m.fetcher.ResolveUser(ctx)
	if err != nil {
		return "", err
	}

	if cfg != nil {
		cfg.Username = username
		if err := m.cfg.Save(cfg); err != nil {
			logger.Warn("failed to cache username", "error", err)
		}
	}

	return username, nil
}

func (m *Manager) maybeNotify(s models.UsageStats) {
	if s.Percentage < notifyThreshold {
		return
	}
	msg := fmt.Sprintf("Copilot premium requests at %.0f%% of the plan limit", s.Percentage)
	if err := m.notifyFn("Copilot usage", msg, ""); err != nil {
		logger.Debug("desktop notification failed", "error", err)
	}
}

// Watch reports writes to the cache file, so a snapshot persisted by another
// process (waybar mode) refreshes the dashboard. The returned channel closes
// when ctx is done.
func (m *Manager) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create cache watcher: %w", err)
	}

	// Watch the directory: the file itself disappears on invalidate and is
	// recreated by rename on every Set.
	if err := watcher.Add(filepath.Dir(m.store.Path())); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch cache directory: %w", err)
	}

	changes := make(chan struct{}, 1)

	go func() {
		defer watcher.Close()
		defer close(changes)

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != m.store.Path() {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("cache watcher error", "error", err)
			}
		}
	}()

	return changes, nil
}
