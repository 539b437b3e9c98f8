package models

import "time"

// InventoryTxnType represents the type of ledger transaction
type InventoryTxnType string

const (
	TxnConsumptionOut InventoryTxnType = "CONSUMPTION_OUT" // posted when a task is approved
	TxnAdjustment     InventoryTxnType = "ADJUSTMENT"      // manual stock correction
	TxnPurchaseIn     InventoryTxnType = "PURCHASE_IN"     // goods received
)

// InventoryTransaction is one row of the append-only stock ledger. Rows are
// never updated or deleted; the balance is re-derivable by summing Qty
// over an item's history (floored at zero where consumption was clamped).
type InventoryTransaction struct {
	ID              int              `json:"id"`
	SupplyItemID    int              `json:"supply_item_id"`
	Type            InventoryTxnType `json:"type"`
	Qty             int              `json:"qty"` // signed delta; negative for CONSUMPTION_OUT
	ReferenceID     *int             `json:"reference_id,omitempty"` // task id, purchase order id, ...
	Notes           string           `json:"notes,omitempty"`
	CreatedByUserID int              `json:"created_by_user_id"`
	CreatedAt       time.Time        `json:"created_at"`
}

// InventoryBalance is the persisted current stock of one supply item. It is
// maintained for fast reads, not as a second source of truth; every change
// goes through the ledger first.
type InventoryBalance struct {
	SupplyItemID int       `json:"supply_item_id"`
	QtyOnHand    int       `json:"qty_on_hand"` // never negative
	ReorderPoint int       `json:"reorder_point"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BalanceView is a balance joined with its catalog item for list endpoints.
type BalanceView struct {
	SupplyItemID int    `json:"supply_item_id"`
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	QtyOnHand    int    `json:"qty_on_hand"`
	ReorderPoint int    `json:"reorder_point"`
	Level        string `json:"level"`         // derived via DeriveLevel against the item's low threshold
	NeedsReorder bool   `json:"needs_reorder"` // on hand at or below the reorder point
}

// AdjustStockRequest represents a manual stock correction
type AdjustStockRequest struct {
	SupplyItemID int    `json:"supply_item_id"`
	Qty          int    `json:"qty"` // signed
	Notes        string `json:"notes"`
}

// PurchaseInRequest represents a goods receipt
type PurchaseInRequest struct {
	SupplyItemID int    `json:"supply_item_id"`
	Qty          int    `json:"qty"`
	ReferenceID  *int   `json:"reference_id"`
	Notes        string `json:"notes"`
}
