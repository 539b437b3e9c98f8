package handlers

import (
	"net/http"

	"stayops-backend/internal/models"
	"stayops-backend/internal/services"
	"stayops-backend/pkg/utils"
)

type SupplyItemHandler struct {
	items *services.SupplyItemService
}

func NewSupplyItemHandler(items *services.SupplyItemService) *SupplyItemHandler {
	return &SupplyItemHandler{items: items}
}

func (h *SupplyItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSupplyItemRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	item, err := h.items.Create(r.Context(), actor(r), &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, item)
}

func (h *SupplyItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	item, err := h.items.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, item)
}

func (h *SupplyItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, items)
}

func (h *SupplyItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req models.CreateSupplyItemRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	item, err := h.items.Update(r.Context(), actor(r), id, &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, item)
}

func (h *SupplyItemHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.items.Deactivate(r.Context(), actor(r), id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}
