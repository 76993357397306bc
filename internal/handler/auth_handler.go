package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/parisxmas/OxiDB/qrform/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	result, err := h.svc.Login(req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		log.Printf("Failed login attempt for %q", req.Username)
		writeError(w, http.StatusUnauthorized, "Invalid username or password.")
		return
	}
	if err != nil {
		log.Printf("Error during login: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   result.Token,
		"message": "Login successful!",
	})
}
