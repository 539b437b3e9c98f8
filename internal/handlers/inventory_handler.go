package handlers

import (
	"net/http"
	"strconv"

	"stayops-backend/internal/models"
	"stayops-backend/internal/monitoring"
	"stayops-backend/internal/services"
	"stayops-backend/pkg/utils"
)

type InventoryHandler struct {
	inventory *services.InventoryService
}

func NewInventoryHandler(inventory *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

func (h *InventoryHandler) Balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.inventory.Balances(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, balances)
}

func (h *InventoryHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	txns, err := h.inventory.History(r.Context(), id, limit)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, txns)
}

func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req models.AdjustStockRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	txn, err := h.inventory.Adjust(r.Context(), actor(r), &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	monitoring.InventoryMovementsTotal.WithLabelValues(string(txn.Type)).Inc()
	utils.WriteJSON(w, http.StatusCreated, txn)
}

func (h *InventoryHandler) ReceivePurchase(w http.ResponseWriter, r *http.Request) {
	var req models.PurchaseInRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	txn, err := h.inventory.ReceivePurchase(r.Context(), actor(r), &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	monitoring.InventoryMovementsTotal.WithLabelValues(string(txn.Type)).Inc()
	utils.WriteJSON(w, http.StatusCreated, txn)
}

func (h *InventoryHandler) SetReorderPoint(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req struct {
		ReorderPoint int `json:"reorder_point"`
	}
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.inventory.SetReorderPoint(r.Context(), actor(r), id, req.ReorderPoint); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *InventoryHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	result, err := h.inventory.Reconcile(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *InventoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	location, err := h.inventory.Export(r.Context(), actor(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"location": location})
}
