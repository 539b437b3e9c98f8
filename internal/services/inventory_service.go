package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"stayops-backend/internal/apperr"
	"stayops-backend/internal/models"
	"stayops-backend/internal/repositories"
)

// BalanceCache caches the joined balance listing. Implemented by the
// redis cache; every method tolerates a nil receiver so the service runs
// unchanged when redis is down or unconfigured.
type BalanceCache interface {
	GetBalances(ctx context.Context) ([]*models.BalanceView, bool)
	SetBalances(ctx context.Context, balances []*models.BalanceView)
	Invalidate(ctx context.Context)
}

// SnapshotUploader stores an inventory snapshot in object storage and
// returns the stored key or URL.
type SnapshotUploader interface {
	Upload(ctx context.Context, key string, body []byte) (string, error)
}

// PostTaskConsumption posts one CONSUMPTION_OUT ledger row per supply the
// task reported using and moves the balances. It runs inside the caller's
// transaction: the task approval and its stock postings commit together
// or not at all.
//
// Consumption never fails on shortage. When reported usage exceeds stock
// the balance clamps at zero and the ledger row carries a note, so the
// approval still lands and the discrepancy stays auditable.
func PostTaskConsumption(ctx context.Context, s repositories.Store, taskID, actorID int) error {
	usages, err := s.SupplyUsages().ListByTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("list supply usages for task %d: %w", taskID, err)
	}

	for _, usage := range usages {
		if usage.QtyUsed <= 0 {
			continue
		}

		onHand := 0
		balance, err := s.Inventory().GetBalance(ctx, usage.SupplyItemID)
		if err != nil {
			return fmt.Errorf("get balance for item %d: %w", usage.SupplyItemID, err)
		}
		if balance != nil {
			onHand = balance.QtyOnHand
		}

		refID := taskID
		txn := &models.InventoryTransaction{
			SupplyItemID:    usage.SupplyItemID,
			Type:            models.TxnConsumptionOut,
			Qty:             -usage.QtyUsed,
			ReferenceID:     &refID,
			CreatedByUserID: actorID,
		}
		if usage.QtyUsed > onHand {
			txn.Notes = fmt.Sprintf("clamped: reported %d used with %d on hand", usage.QtyUsed, onHand)
		}
		if err := s.Inventory().AppendTransaction(ctx, txn); err != nil {
			return fmt.Errorf("append consumption for item %d: %w", usage.SupplyItemID, err)
		}

		newQty := onHand - usage.QtyUsed
		if newQty < 0 {
			newQty = 0
		}
		if err := s.Inventory().UpsertBalance(ctx, usage.SupplyItemID, newQty); err != nil {
			return fmt.Errorf("update balance for item %d: %w", usage.SupplyItemID, err)
		}
	}
	return nil
}

// InventoryService covers manual stock movements, balance reads and the
// snapshot export.
type InventoryService struct {
	store    repositories.Store
	cache    BalanceCache
	uploader SnapshotUploader
}

func NewInventoryService(store repositories.Store, cache BalanceCache, uploader SnapshotUploader) *InventoryService {
	return &InventoryService{store: store, cache: cache, uploader: uploader}
}

func (s *InventoryService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

// Adjust posts a manual correction with a signed quantity. The balance
// floors at zero like every other movement.
func (s *InventoryService) Adjust(ctx context.Context, actor models.Actor, req *models.AdjustStockRequest) (*models.InventoryTransaction, error) {
	if !actor.IsManager() {
		return nil, apperr.Forbidden("only managers can adjust stock")
	}
	if req.Qty == 0 {
		return nil, apperr.Validation("adjustment quantity cannot be zero")
	}
	if _, err := s.store.SupplyItems().Get(ctx, req.SupplyItemID); err != nil {
		return nil, err
	}

	txn := &models.InventoryTransaction{
		SupplyItemID:    req.SupplyItemID,
		Type:            models.TxnAdjustment,
		Qty:             req.Qty,
		Notes:           req.Notes,
		CreatedByUserID: actor.UserID,
	}
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.Inventory().AppendTransaction(ctx, txn); err != nil {
			return err
		}
		return s.moveBalance(ctx, tx, req.SupplyItemID, req.Qty)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return txn, nil
}

// ReceivePurchase records a goods receipt.
func (s *InventoryService) ReceivePurchase(ctx context.Context, actor models.Actor, req *models.PurchaseInRequest) (*models.InventoryTransaction, error) {
	if !actor.IsManager() {
		return nil, apperr.Forbidden("only managers can receive stock")
	}
	if req.Qty <= 0 {
		return nil, apperr.Validation("purchase quantity must be positive")
	}
	if _, err := s.store.SupplyItems().Get(ctx, req.SupplyItemID); err != nil {
		return nil, err
	}

	txn := &models.InventoryTransaction{
		SupplyItemID:    req.SupplyItemID,
		Type:            models.TxnPurchaseIn,
		Qty:             req.Qty,
		ReferenceID:     req.ReferenceID,
		Notes:           req.Notes,
		CreatedByUserID: actor.UserID,
	}
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.Inventory().AppendTransaction(ctx, txn); err != nil {
			return err
		}
		return s.moveBalance(ctx, tx, req.SupplyItemID, req.Qty)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return txn, nil
}

func (s *InventoryService) moveBalance(ctx context.Context, tx repositories.Store, supplyItemID, delta int) error {
	onHand := 0
	balance, err := tx.Inventory().GetBalance(ctx, supplyItemID)
	if err != nil {
		return err
	}
	if balance != nil {
		onHand = balance.QtyOnHand
	}
	newQty := onHand + delta
	if newQty < 0 {
		newQty = 0
	}
	return tx.Inventory().UpsertBalance(ctx, supplyItemID, newQty)
}

// Balances returns the current stock listing, served from cache when warm.
func (s *InventoryService) Balances(ctx context.Context) ([]*models.BalanceView, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetBalances(ctx); ok {
			return cached, nil
		}
	}
	balances, err := s.store.Inventory().ListBalances(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetBalances(ctx, balances)
	}
	return balances, nil
}

func (s *InventoryService) History(ctx context.Context, supplyItemID, limit int) ([]*models.InventoryTransaction, error) {
	if _, err := s.store.SupplyItems().Get(ctx, supplyItemID); err != nil {
		return nil, err
	}
	return s.store.Inventory().ListTransactions(ctx, supplyItemID, limit)
}

func (s *InventoryService) SetReorderPoint(ctx context.Context, actor models.Actor, supplyItemID, reorderPoint int) error {
	if !actor.IsManager() {
		return apperr.Forbidden("only managers can set reorder points")
	}
	if reorderPoint < 0 {
		return apperr.Validation("reorder point cannot be negative")
	}
	if err := s.store.Inventory().SetReorderPoint(ctx, supplyItemID, reorderPoint); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ReconcileResult compares an item's persisted balance with the quantity
// re-derived from its full ledger history.
type ReconcileResult struct {
	SupplyItemID int  `json:"supply_item_id"`
	LedgerQty    int  `json:"ledger_qty"` // sum of all movements, floored at zero
	BalanceQty   int  `json:"balance_qty"`
	InSync       bool `json:"in_sync"`
}

// Reconcile re-derives an item's quantity from the ledger. The floor at
// zero mirrors the clamping applied when consumption exceeded stock.
func (s *InventoryService) Reconcile(ctx context.Context, supplyItemID int) (*ReconcileResult, error) {
	if _, err := s.store.SupplyItems().Get(ctx, supplyItemID); err != nil {
		return nil, err
	}
	sum, err := s.store.Inventory().SumTransactions(ctx, supplyItemID)
	if err != nil {
		return nil, err
	}
	if sum < 0 {
		sum = 0
	}
	balanceQty := 0
	balance, err := s.store.Inventory().GetBalance(ctx, supplyItemID)
	if err != nil {
		return nil, err
	}
	if balance != nil {
		balanceQty = balance.QtyOnHand
	}
	return &ReconcileResult{
		SupplyItemID: supplyItemID,
		LedgerQty:    sum,
		BalanceQty:   balanceQty,
		InSync:       sum == balanceQty,
	}, nil
}

// snapshot is the exported document shape.
type snapshot struct {
	TakenAt      time.Time                      `json:"taken_at"`
	Balances     []*models.BalanceView          `json:"balances"`
	Transactions []*models.InventoryTransaction `json:"transactions"`
}

// Export uploads a JSON snapshot of all balances and the full ledger to
// object storage and returns the stored location.
func (s *InventoryService) Export(ctx context.Context, actor models.Actor) (string, error) {
	if !actor.IsManager() {
		return "", apperr.Forbidden("only managers can export inventory")
	}
	if s.uploader == nil {
		return "", apperr.Validation("snapshot export is not configured")
	}

	balances, err := s.store.Inventory().ListBalances(ctx)
	if err != nil {
		return "", err
	}
	txns, err := s.store.Inventory().ListAllTransactions(ctx)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(snapshot{TakenAt: time.Now().UTC(), Balances: balances, Transactions: txns})
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := fmt.Sprintf("inventory-snapshots/%s.json", time.Now().UTC().Format("2006-01-02T15-04-05"))
	location, err := s.uploader.Upload(ctx, key, body)
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}
	log.Printf("[Inventory] exported snapshot to %s", location)
	return location, nil
}
