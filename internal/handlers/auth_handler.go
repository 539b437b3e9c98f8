package handlers

import (
	"net/http"

	"stayops-backend/internal/models"
	"stayops-backend/internal/services"
	"stayops-backend/pkg/utils"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	resp, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}
