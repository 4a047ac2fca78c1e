// Package cache persists a single usage snapshot on disk and evaluates its
// freshness against a configurable TTL.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rbrandt/copilot-usage-tui/internal/models"
)

// Store owns the single persisted cache entry. Freshness is computed on
// every read, never stored, so TTL changes take effect immediately.
type Store struct {
	path string
	ttl  time.Duration
}

// New resolves the default cache location and ensures its directory exists.
// COPILOT_USAGE_CACHE overrides the path.
func New(ttlMinutes int) (*Store, error) {
	path := os.Getenv("COPILOT_USAGE_CACHE")
	if path == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine cache directory: %w", err)
		}
		path = filepath.Join(dir, "copilot-usage", "usage.json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return NewWithPath(path, ttlMinutes), nil
}

// NewWithPath creates a Store for a specific file, used in tests.
func NewWithPath(path string, ttlMinutes int) *Store {
	return &Store{
		path: path,
		ttl:  time.Duration(ttlMinutes) * time.Minute,
	}
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

// TTLMinutes returns the configured TTL in whole minutes.
func (s *Store) TTLMinutes() int {
	return int(s.ttl / time.Minute)
}

// Status reads the persisted entry and classifies it. It never returns an
// error: a missing file is Missing, anything unreadable or undecodable is
// Corrupted, and an entry older than the TTL is Expired.
func (s *Store) Status() models.CacheStatus {
	content, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return models.CacheStatus{State: models.CacheMissing}
	}
	if err != nil {
		return models.CacheStatus{State: models.CacheCorrupted}
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(content, &entry); err != nil {
		return models.CacheStatus{State: models.CacheCorrupted}
	}

	if time.Since(entry.Timestamp) > s.ttl {
		return models.CacheStatus{State: models.CacheExpired}
	}

	return models.CacheStatus{State: models.CacheFresh, Snapshot: &entry.Data}
}

// Set replaces the persisted entry with the snapshot, timestamped now. The
// write goes through a temp file and rename so readers never observe a
// partial entry.
func (s *Store) Set(snapshot *models.UsageSnapshot) error {
	entry := models.CacheEntry{
		Data:      *snapshot,
		Timestamp: time.Now().UTC(),
	}

	content, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o600); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace cache entry: %w", err)
	}

	return nil
}

// Invalidate removes the persisted entry. Removing an already-missing entry
// is not an error.
func (s *Store) Invalidate() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache entry: %w", err)
	}
	return nil
}

// LastUpdated returns the timestamp of the persisted entry regardless of
// freshness. The second return value is false when no readable entry exists.
func (s *Store) LastUpdated() (time.Time, bool) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		return time.Time{}, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(content, &entry); err != nil {
		return time.Time{}, false
	}

	return entry.Timestamp, true
}

// Info builds the display projection of the cache state.
func (s *Store) Info() models.CacheInfo {
	info := models.CacheInfo{
		TTLMinutes: s.TTLMinutes(),
		IsFresh:    s.Status().State == models.CacheFresh,
	}
	if ts, ok := s.LastUpdated(); ok {
		info.LastUpdated = &ts
	}
	return info
}
