// Package models defines data structures and domain types.
package models

import "time"

// TimePeriod identifies the billing period a snapshot covers.
type TimePeriod struct {
	Year  int  `json:"year"`
	Month *int `json:"month,omitempty"`
	Day   *int `json:"day,omitempty"`
}

// UsageRecord is a single billing line as returned by the usage API.
// Records are immutable once fetched.
type UsageRecord struct {
	Product          string  `json:"product"`
	SKU              string  `json:"sku"`
	Model            string  `json:"model"`
	UnitType         string  `json:"unitType"`
	PricePerUnit     float64 `json:"pricePerUnit"`
	GrossQuantity    float64 `json:"grossQuantity"`
	GrossAmount      float64 `json:"grossAmount"`
	DiscountQuantity float64 `json:"discountQuantity"`
	DiscountAmount   float64 `json:"discountAmount"`
	NetQuantity      float64 `json:"netQuantity"`
	NetAmount        float64 `json:"netAmount"`
}

// UsageSnapshot is one fetched copy of usage records as of a point in time.
type UsageSnapshot struct {
	TimePeriod TimePeriod    `json:"timePeriod"`
	User       string        `json:"user"`
	UsageItems []UsageRecord `json:"usageItems"`
}

// ModelUsage is the per-model breakdown inside UsageStats.
type ModelUsage struct {
	Name       string
	Used       float64
	Limit      float64
	Percentage float64
}

// UsageStats is the derived, non-persisted aggregate rendered by the
// dashboard. Models is sorted by Used descending, ties in first-seen order.
type UsageStats struct {
	TotalUsed     float64
	TotalLimit    float64
	Percentage    float64
	ResetDate     time.Time
	Models        []ModelUsage
	EstimatedCost float64
	Username      string
}
