package models

import "time"

// CacheEntry is the persisted form of a snapshot, written wholesale on every
// successful fetch.
type CacheEntry struct {
	Data      UsageSnapshot `json:"data"`
	Timestamp time.Time     `json:"timestamp"`
}

// CacheState classifies the persisted cache entry.
type CacheState int

const (
	// CacheFresh means the entry exists and its age is within the TTL.
	CacheFresh CacheState = iota
	// CacheExpired means the entry exists but its age exceeds the TTL.
	CacheExpired
	// CacheMissing means no entry is persisted.
	CacheMissing
	// CacheCorrupted means the entry exists but could not be read or decoded.
	CacheCorrupted
)

// String returns the string representation of a CacheState.
func (s CacheState) String() string {
	switch s {
	case CacheFresh:
		return "fresh"
	case CacheExpired:
		return "expired"
	case CacheMissing:
		return "missing"
	case CacheCorrupted:
		return "corrupted"
	default:
		return "unknown"
	}
}

// CacheStatus is the freshness verdict derived on demand from the persisted
// entry. Snapshot is set only when State is CacheFresh.
type CacheStatus struct {
	State    CacheState
	Snapshot *UsageSnapshot
}

// CacheInfo is a read-only projection of cache state built for display.
type CacheInfo struct {
	LastUpdated *time.Time
	IsFresh     bool
	TTLMinutes  int
}
