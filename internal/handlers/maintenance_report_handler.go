package handlers

import (
	"net/http"

	"stayops-backend/internal/models"
	"stayops-backend/internal/services"
	"stayops-backend/pkg/utils"
)

type MaintenanceReportHandler struct {
	reports *services.MaintenanceReportService
}

func NewMaintenanceReportHandler(reports *services.MaintenanceReportService) *MaintenanceReportHandler {
	return &MaintenanceReportHandler{reports: reports}
}

func (h *MaintenanceReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMaintenanceReportRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	report, err := h.reports.Create(r.Context(), actor(r), &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, report)
}

func (h *MaintenanceReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	report, err := h.reports.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, report)
}

func (h *MaintenanceReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, reports)
}

func (h *MaintenanceReportHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	report, err := h.reports.UpdateStatus(r.Context(), actor(r), id, req.Status)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, report)
}
