package handlers

import (
	"net/http"
	"strconv"

	"stayops-backend/internal/apperr"
	"stayops-backend/internal/models"
	"stayops-backend/internal/monitoring"
	"stayops-backend/internal/services"
	"stayops-backend/pkg/utils"
)

type TaskHandler struct {
	tasks  *services.TaskService
	review *services.ReviewService
}

func NewTaskHandler(tasks *services.TaskService, review *services.ReviewService) *TaskHandler {
	return &TaskHandler{tasks: tasks, review: review}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	task, err := h.tasks.Create(r.Context(), actor(r), &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	task, err := h.tasks.Get(r.Context(), actor(r), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("property_id"); raw != "" {
		propertyID, err := strconv.Atoi(raw)
		if err != nil {
			utils.WriteError(w, apperr.Validation("invalid property_id"))
			return
		}
		tasks, err := h.tasks.ListByProperty(r.Context(), actor(r), propertyID)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, tasks)
		return
	}

	tasks, err := h.tasks.List(r.Context(), actor(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	result, err := h.tasks.Start(r.Context(), actor(r), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *TaskHandler) MutateChecklist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var op models.ChecklistOp
	if err := decode(r, &op); err != nil {
		utils.WriteError(w, err)
		return
	}
	task, err := h.tasks.MutateChecklist(r.Context(), actor(r), id, &op)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req models.UpdateTaskNotesRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	task, err := h.tasks.UpdateNotes(r.Context(), actor(r), id, req.Notes)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	result, err := h.tasks.Complete(r.Context(), actor(r), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *TaskHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	result, err := h.review.Approve(r.Context(), actor(r), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if !result.AlreadyApplied {
		monitoring.TasksApprovedTotal.Inc()
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *TaskHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req models.RejectTaskRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	result, err := h.review.Reject(r.Context(), actor(r), id, req.Reason)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *TaskHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req models.ReopenTaskRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	result, err := h.review.Reopen(r.Context(), actor(r), id, req.Note)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.tasks.Delete(r.Context(), actor(r), id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
