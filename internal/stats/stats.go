// Package stats derives aggregate usage statistics from a snapshot.
package stats

import (
	"sort"
	"time"

	"github.com/rbrandt/copilot-usage-tui/internal/models"
)

const (
	// PlanLimit is the monthly premium-request allowance of the Copilot Pro plan.
	PlanLimit = 300.0

	// OverageRate is the per-request price for billed usage beyond the plan.
	OverageRate = 0.04
)

// Aggregate reduces a snapshot to the statistics the dashboard renders.
func Aggregate(snapshot *models.UsageSnapshot, limit float64) models.UsageStats {
	return aggregateAt(snapshot, limit, time.Now().UTC())
}

func aggregateAt(snapshot *models.UsageSnapshot, limit float64, now time.Time) models.UsageStats {
	s := models.UsageStats{
		TotalLimit: limit,
		ResetDate:  nextResetDate(now),
		Models:     []models.ModelUsage{},
	}
	if snapshot == nil {
		return s
	}
	s.Username = snapshot.User

	var billed float64
	used := make(map[string]float64)
	var order []string

	for _, item := range snapshot.UsageItems {
		s.TotalUsed += item.GrossQuantity
		billed += item.NetQuantity

		if _, seen := used[item.Model]; !seen {
			order = append(order, item.Model)
		}
		used[item.Model] += item.GrossQuantity
	}

	if limit > 0 {
		s.Percentage = s.TotalUsed / limit * 100
	}

	// Billed quantity is already net of the plan allowance, so any billed
	// usage is overage.
	if billed > 0 {
		s.EstimatedCost = billed * OverageRate
	}

	for _, name := range order {
		mu := models.ModelUsage{
			Name:  name,
			Used:  used[name],
			Limit: limit,
		}
		if limit > 0 {
			mu.Percentage = mu.Used / limit * 100
		}
		s.Models = append(s.Models, mu)
	}

	// Descending by usage; SliceStable keeps first-seen order for ties.
	sort.SliceStable(s.Models, func(i, j int) bool {
		return s.Models[i].Used > s.Models[j].Used
	})

	return s
}

// nextResetDate returns the first instant of the next calendar month in UTC.
func nextResetDate(now time.Time) time.Time {
	year, month := now.Year(), now.Month()
	if month == time.December {
		year, month = year+1, time.January
	} else {
		month++
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}
