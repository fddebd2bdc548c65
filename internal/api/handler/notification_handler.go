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

type notificationService interface {
	List(ctx context.Context, unreadOnly bool, page, pageSize int) (*common.Page[model.Notification], error)
	Get(ctx context.Context, id int64) (*model.Notification, error)
	Create(ctx context.Context, req service.CreateNotificationRequest) (*model.Notification, error)
	MarkRead(ctx context.Context, id int64) (*model.Notification, error)
	Delivery(ctx context.Context, id int64) (*model.Delivery, error)
}

type NotificationHandler struct {
	notificationService notificationService
	validate            *validator.Validate
}

func NewNotificationHandler(s notificationService, v *validator.Validate) *NotificationHandler {
	return &NotificationHandler{notificationService: s, validate: v}
}

func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/", h.create)
		authed.Post("/{id}/read", h.markRead)
		authed.Get("/{id}/delivery", h.delivery)
	})
}

func (h *NotificationHandler) list(w http.ResponseWriter, r *http.Request) {
	unreadOnly, err := boolQuery(r, "unread")
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	page, pageSize := pageParams(r)
	result, err := h.notificationService.List(r.Context(), unreadOnly, page, pageSize)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *NotificationHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	n, err := h.notificationService.Get(r.Context(), id)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateNotificationRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	n, err := h.notificationService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusAccepted, n)
}

func (h *NotificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	n, err := h.notificationService.MarkRead(r.Context(), id)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) delivery(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	d, err := h.notificationService.Delivery(r.Context(), id)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, d)
}
