package stats

import (
	"math"
	"testing"
	"time"

	"github.com/rbrandt/copilot-usage-tui/internal/models"
)

func record(model string, gross, net float64) models.UsageRecord {
	return models.UsageRecord{
		Product:       "copilot",
		Model:         model,
		GrossQuantity: gross,
		NetQuantity:   net,
	}
}

func snapshot(items ...models.UsageRecord) *models.UsageSnapshot {
	return &models.UsageSnapshot{
		TimePeriod: models.TimePeriod{Year: 2026},
		User:       "octocat",
		UsageItems: items,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregate_GroupsAndSorts(t *testing.T) {
	s := Aggregate(snapshot(
		record("A", 100, 0),
		record("B", 50, 0),
		record("A", 25, 0),
	), PlanLimit)

	if s.TotalUsed != 175 {
		t.Errorf("TotalUsed = %v, want 175", s.TotalUsed)
	}
	if len(s.Models) != 2 {
		t.Fatalf("Models len = %d, want 2", len(s.Models))
	}
	if s.Models[0].Name != "A" || s.Models[0].Used != 125 {
		t.Errorf("Models[0] = %s/%v, want A/125", s.Models[0].Name, s.Models[0].Used)
	}
	if s.Models[1].Name != "B" || s.Models[1].Used != 50 {
		t.Errorf("Models[1] = %s/%v, want B/50", s.Models[1].Name, s.Models[1].Used)
	}
	if s.Username != "octocat" {
		t.Errorf("Username = %q, want octocat", s.Username)
	}
}

func TestAggregate_StableTies(t *testing.T) {
	s := Aggregate(snapshot(
		record("first", 10, 0),
		record("second", 10, 0),
		record("third", 10, 0),
	), PlanLimit)

	want := []string{"first", "second", "third"}
	for i, name := range want {
		if s.Models[i].Name != name {
			t.Errorf("Models[%d].Name = %q, want %q", i, s.Models[i].Name, name)
		}
	}
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(snapshot(), PlanLimit)

	if s.TotalUsed != 0 || s.Percentage != 0 || s.EstimatedCost != 0 {
		t.Errorf("empty snapshot: used=%v pct=%v cost=%v, want zeros",
			s.TotalUsed, s.Percentage, s.EstimatedCost)
	}
	if len(s.Models) != 0 {
		t.Errorf("Models len = %d, want 0", len(s.Models))
	}
}

func TestAggregate_NilSnapshot(t *testing.T) {
	s := Aggregate(nil, PlanLimit)
	if s.TotalUsed != 0 || len(s.Models) != 0 {
		t.Error("nil snapshot should aggregate to zeros")
	}
}

func TestAggregate_ZeroLimit(t *testing.T) {
	s := Aggregate(snapshot(record("A", 10, 0)), 0)
	if s.Percentage != 0 {
		t.Errorf("Percentage with zero limit = %v, want 0", s.Percentage)
	}
}

func TestAggregate_OverLimit(t *testing.T) {
	s := Aggregate(snapshot(
		record("A", 200, 0),
		record("B", 150, 50),
	), 300)

	if !almostEqual(s.TotalUsed, 350) {
		t.Errorf("TotalUsed = %v, want 350", s.TotalUsed)
	}
	// No clamping past 100%.
	if !almostEqual(s.Percentage, 350.0/300.0*100) {
		t.Errorf("Percentage = %v, want ~116.67", s.Percentage)
	}
	if !almostEqual(s.EstimatedCost, 2.0) {
		t.Errorf("EstimatedCost = %v, want 2.0", s.EstimatedCost)
	}
}

func TestAggregate_NoBilledNoCost(t *testing.T) {
	// Heavy gross usage, nothing billed: cost stays zero.
	s := Aggregate(snapshot(record("A", 500, 0)), 300)
	if s.EstimatedCost != 0 {
		t.Errorf("EstimatedCost = %v, want 0", s.EstimatedCost)
	}
}

func TestNextResetDate(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			"mid month",
			time.Date(2026, time.August, 23, 14, 30, 0, 0, time.UTC),
			time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"december wraps to january",
			time.Date(2026, time.December, 31, 23, 59, 59, 0, time.UTC),
			time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"first of month",
			time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextResetDate(tt.now); !got.Equal(tt.want) {
				t.Errorf("nextResetDate(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestAggregateAt_UsesGivenClock(t *testing.T) {
	now := time.Date(2026, time.December, 5, 0, 0, 0, 0, time.UTC)
	s := aggregateAt(snapshot(), PlanLimit, now)
	want := time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !s.ResetDate.Equal(want) {
		t.Errorf("ResetDate = %v, want %v", s.ResetDate, want)
	}
}
