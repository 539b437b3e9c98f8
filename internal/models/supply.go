package models

import "time"

// Stock levels as reported by operators during a stay checklist. The wire
// values are kept as the mobile clients send them.
const (
	LevelOK         = "OK"
	LevelRunningLow = "IN_ESAURIMENTO"
	LevelOut        = "ESAURITO"
)

// SupplyItem is a catalog entry for a consumable stocked at properties.
type SupplyItem struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	QtyStandard  int       `json:"qty_standard"`  // full restock quantity
	LowThreshold int       `json:"low_threshold"` // at or below this, the item counts as running low
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LevelToQty maps a coarse operator-reported level to a concrete quantity.
// Unknown levels map to 0 rather than failing; operators report from old
// app builds.
func LevelToQty(level string, qtyStandard, lowThreshold int) int {
	switch level {
	case LevelOK:
		return qtyStandard
	case LevelRunningLow:
		return lowThreshold
	default:
		return 0
	}
}

// DeriveLevel is the inverse of LevelToQty. The low boundary is inclusive:
// a quantity exactly at the threshold is running low, not OK.
func DeriveLevel(qtyCurrent, lowThreshold int) string {
	switch {
	case qtyCurrent <= 0:
		return LevelOut
	case qtyCurrent <= lowThreshold:
		return LevelRunningLow
	default:
		return LevelOK
	}
}

// TaskSupplyUsage is one row per (task, supply item): what the checklist
// template expected and what the operator reported using. Consumed by the
// inventory ledger when the task is approved.
type TaskSupplyUsage struct {
	ID           int       `json:"id"`
	TaskID       int       `json:"task_id"`
	SupplyItemID int       `json:"supply_item_id"`
	ExpectedQty  int       `json:"expected_qty"`
	QtyUsed      int       `json:"qty_used"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateSupplyItemRequest represents the request body for creating a supply item
type CreateSupplyItemRequest struct {
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	QtyStandard  int    `json:"qty_standard"`
	LowThreshold int    `json:"low_threshold"`
}
