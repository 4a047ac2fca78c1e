package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rbrandt/copilot-usage-tui/internal/cache"
	"github.com/rbrandt/copilot-usage-tui/internal/config"
	"github.com/rbrandt/copilot-usage-tui/internal/models"
)

type fakeFetcher struct {
	snapshot   *models.UsageSnapshot
	fetchErr   error
	resolveErr error
	username   string
	fetchCalls int
}

func (f *fakeFetcher) FetchUsage(_ context.Context, _ string) (*models.UsageSnapshot, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.snapshot, nil
}

func (f *fakeFetcher) ResolveUser(_ context.Context) (string, error) {
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return f.username, nil
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

func testSnapshot(gross float64) *models.UsageSnapshot {
	return &models.UsageSnapshot{
		TimePeriod: models.TimePeriod{Year: 2026},
		User:       "octocat",
		UsageItems: []models.UsageRecord{
			{Model: "gpt-4o", GrossQuantity: gross},
		},
	}
}

func testManager(t *testing.T, f *fakeFetcher) *Manager {
	t.Helper()
	dir := t.TempDir()

	cfgMgr := config.NewManagerWithPath(filepath.Join(dir, "config.yaml"))
	cfg := config.Default()
	cfg.Token = "ghp_test"
	cfg.Username = "octocat"
	if err := cfgMgr.Save(cfg); err != nil {
		t.Fatal(err)
	}

	store := cache.NewWithPath(filepath.Join(dir, "usage.json"), 5)
	m := NewManager(cfgMgr, store, f)
	m.notifyFn = func(_, _, _ string) error { return nil }
	return m
}

// recv waits for the next result, failing the test if none arrives.
func recv(t *testing.T, m *Manager) Result {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if r, ok := m.TryRecv(); ok {
			return r
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for result")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestTryRecv_Empty(t *testing.T) {
	m := testManager(t, &fakeFetcher{})
	if _, ok := m.TryRecv(); ok {
		t.Error("TryRecv on empty channel should report nothing")
	}
}

func TestSpawnRefresh_Success(t *testing.T) {
	m := testManager(t, &fakeFetcher{snapshot: testSnapshot(120)})

	m.SpawnRefresh()
	r := recv(t, m)

	if r.Kind != RefreshComplete {
		t.Fatalf("Kind = %v, want refresh", r.Kind)
	}
	if r.Err != nil {
		t.Fatalf("Err = %v", r.Err)
	}
	if r.Gen != m.CurrentGen() {
		t.Errorf("Gen = %d, want current %d", r.Gen, m.CurrentGen())
	}
	if r.Stats == nil || r.Stats.TotalUsed != 120 {
		t.Errorf("Stats = %+v, want TotalUsed 120", r.Stats)
	}

	// The snapshot must have been persisted.
	if got := m.Store().Status(); got.State != models.CacheFresh {
		t.Errorf("cache state after refresh = %v, want fresh", got.State)
	}
}

func TestSpawnRefresh_Failure(t *testing.T) {
	m := testManager(t, &fakeFetcher{fetchErr: errors.New("dial tcp: refused")})

	m.SpawnRefresh()
	r := recv(t, m)

	if r.Err == nil {
		t.Fatal("expected an error result")
	}
	if r.Message == "" || r.Debug == "" {
		t.Errorf("failure result must carry Message and Debug, got %+v", r)
	}
	if r.Stats != nil {
		t.Error("failed refresh must not carry stats")
	}
}

func TestCancel_MakesResultStale(t *testing.T) {
	m := testManager(t, &fakeFetcher{snapshot: testSnapshot(10)})

	m.SpawnRefresh()
	m.Cancel()

	r := recv(t, m)
	if r.Gen == m.CurrentGen() {
		t.Error("result spawned before Cancel must carry a stale generation")
	}
}

func TestSpawnRefresh_SupersedesPrevious(t *testing.T) {
	m := testManager(t, &fakeFetcher{snapshot: testSnapshot(10)})

	m.SpawnRefresh()
	first := recv(t, m)
	m.SpawnRefresh()
	second := recv(t, m)

	if first.Gen == second.Gen {
		t.Error("each spawn must get its own generation")
	}
	if second.Gen != m.CurrentGen() {
		t.Error("latest spawn must match the current generation")
	}
}

func TestSpawnCacheInfo(t *testing.T) {
	f := &fakeFetcher{snapshot: testSnapshot(10)}
	m := testManager(t, f)
	if err := m.Store().Set(f.snapshot); err != nil {
		t.Fatal(err)
	}

	m.SpawnCacheInfo()
	r := recv(t, m)

	if r.Kind != CacheInfoReady {
		t.Fatalf("Kind = %v, want cache-info", r.Kind)
	}
	if !r.Info.IsFresh || r.Info.LastUpdated == nil {
		t.Errorf("Info = %+v, want fresh with timestamp", r.Info)
	}
	if r.Info.TTLMinutes != 5 {
		t.Errorf("TTLMinutes = %d, want 5", r.Info.TTLMinutes)
	}
}

func TestSpawnSaveTheme(t *testing.T) {
	m := testManager(t, &fakeFetcher{})

	m.SpawnSaveTheme("nord")
	r := recv(t, m)

	if r.Kind != ThemeSaved {
		t.Fatalf("Kind = %v, want theme-saved", r.Kind)
	}
	if r.Err != nil {
		t.Fatalf("Err = %v", r.Err)
	}

	cfg, err := m.cfg.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Theme != "nord" {
		t.Errorf("persisted theme = %q, want nord", cfg.Theme)
	}
}

func TestSpawnSaveTheme_FailureIsSwallowed(t *testing.T) {
	m := testManager(t, &fakeFetcher{})
	// Point the config manager at an unwritable location.
	m.cfg = config.NewManagerWithPath(filepath.Join(t.TempDir(), "missing-dir", "config.yaml"))

	m.SpawnSaveTheme("nord")
	r := recv(t, m)

	if r.Kind != ThemeSaved {
		t.Fatalf("Kind = %v, want theme-saved", r.Kind)
	}
	if r.Err == nil {
		t.Error("expected the save error to be reported on the result")
	}
}

func TestLoadStats_ServesFreshCache(t *testing.T) {
	f := &fakeFetcher{snapshot: testSnapshot(50)}
	m := testManager(t, f)
	if err := m.Store().Set(f.snapshot); err != nil {
		t.Fatal(err)
	}

	s, err := m.LoadStats(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalUsed != 50 {
		t.Errorf("TotalUsed = %v, want 50", s.TotalUsed)
	}
	if f.fetchCalls != 0 {
		t.Errorf("fetchCalls = %d, fresh cache must not hit the network", f.fetchCalls)
	}
}

func TestLoadStats_ForceBypassesCache(t *testing.T) {
	f := &fakeFetcher{snapshot: testSnapshot(50)}
	m := testManager(t, f)
	if err := m.Store().Set(f.snapshot); err != nil {
		t.Fatal(err)
	}

	if _, err := m.LoadStats(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	if f.fetchCalls != 1 {
		t.Errorf("fetchCalls = %d, force must refetch", f.fetchCalls)
	}
}

func TestLoadStats_RecoversFromCorruption(t *testing.T) {
	f := &fakeFetcher{snapshot: testSnapshot(50)}
	m := testManager(t, f)
	if err := writeFile(m.Store().Path(), "{garbage"); err != nil {
		t.Fatal(err)
	}

	s, err := m.LoadStats(context.Background(), false)
	if err != nil {
		t.Fatalf("corrupted cache must fall through to fetch, got %v", err)
	}
	if s.TotalUsed != 50 {
		t.Errorf("TotalUsed = %v, want 50", s.TotalUsed)
	}
}

func TestResolveAccount_CachesResolvedName(t *testing.T) {
	f := &fakeFetcher{snapshot: testSnapshot(10), username: "resolved"}
	m := testManager(t, f)

	// Drop the preset username so resolution goes to the API.
	cfg, _ := m.cfg.Load()
	cfg.Username = ""
	if err := m.cfg.Save(cfg); err != nil {
		t.Fatal(err)
	}

	if _, err := m.LoadStats(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	cfg, _ = m.cfg.Load()
	if cfg.Username != "resolved" {
		t.Errorf("cached username = %q, want resolved", cfg.Username)
	}
}

func TestNotify_FiresAtThreshold(t *testing.T) {
	var fired bool
	m := testManager(t, &fakeFetcher{snapshot: testSnapshot(290)})
	m.notifyFn = func(_, _, _ string) error {
		fired = true
		return nil
	}

	m.SpawnRefresh()
	recv(t, m)

	// 290/300 ≈ 96.7% is past the 90% threshold.
	if !fired {
		t.Error("notification should fire above the threshold")
	}

	fired = false
	m2 := testManager(t, &fakeFetcher{snapshot: testSnapshot(30)})
	m2.notifyFn = func(_, _, _ string) error {
		fired = true
		return nil
	}
	m2.SpawnRefresh()
	recv(t, m2)
	if fired {
		t.Error("notification must not fire below the threshold")
	}
}

func TestWatch_ReportsCacheWrites(t *testing.T) {
	f := &fakeFetcher{snapshot: testSnapshot(10)}
	m := testManager(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := m.Watch(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Store().Set(f.snapshot); err != nil {
		t.Fatal(err)
	}

	select {
	case _, ok := <-changes:
		if !ok {
			t.Fatal("watch channel closed unexpectedly")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for cache change event")
	}
}
