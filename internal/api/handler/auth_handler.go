package handler

import (
	"context"
	"net/http"
	"tle_zone_dashboard/internal/app/service"
	"tle_zone_dashboard/internal/common"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type authService interface {
	Login(ctx context.Context, req service.LoginRequest) (*service.AuthResponse, error)
}

type AuthHandler struct {
	authService authService
	validate    *validator.Validate
}

func NewAuthHandler(s authService, v *validator.Validate) *AuthHandler {
	return &AuthHandler{authService: s, validate: v}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.login)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
