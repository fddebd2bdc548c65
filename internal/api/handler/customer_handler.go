package handler

import (
	"context"
	"net/http"
	"tle_zone_dashboard/internal/api/middleware"
	"tle_zone_dashboard/internal/app/service"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type customerService interface {
	List(ctx context.Context, q service.ListCustomersQuery) (*common.Page[model.User], error)
	Get(ctx context.Context, id int64) (*model.User, error)
	Create(ctx context.Context, req service.CreateCustomerRequest) (*model.User, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*model.User, error)
}

type CustomerHandler struct {
	customerService customerService
	validate        *validator.Validate
}

func NewCustomerHandler(s customerService, v *validator.Validate) *CustomerHandler {
	return &CustomerHandler{customerService: s, validate: v}
}

func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list) // GET /api/v1/customers?status=subscribed&q=ada
	r.Get("/{id}", h.get)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/", h.create)
		authed.Patch("/{id}/status", h.updateStatus)
	})
}

func (h *CustomerHandler) list(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	q := service.ListCustomersQuery{
		Status:   r.URL.Query().Get("status"),
		Search:   r.URL.Query().Get("q"),
		Page:     page,
		PageSize: pageSize,
	}
	result, err := h.customerService.List(r.Context(), q)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *CustomerHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	user, err := h.customerService.Get(r.Context(), id)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *CustomerHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCustomerRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	user, err := h.customerService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, user)
}

func (h *CustomerHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	var req service.UpdateStatusRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	user, err := h.customerService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}
