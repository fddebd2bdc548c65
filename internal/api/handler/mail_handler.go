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

type inboxService interface {
	List(ctx context.Context, unreadOnly bool, page, pageSize int) (*common.Page[model.Mail], error)
	Get(ctx context.Context, id int64) (*model.Mail, error)
	Create(ctx context.Context, req service.CreateMailRequest) (*model.Mail, error)
	MarkRead(ctx context.Context, id int64) (*model.Mail, error)
	MarkUnread(ctx context.Context, id int64) (*model.Mail, error)
}

type MailHandler struct {
	inboxService inboxService
	validate     *validator.Validate
}

func NewMailHandler(s inboxService, v *validator.Validate) *MailHandler {
	return &MailHandler{inboxService: s, validate: v}
}

func (h *MailHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list) // GET /api/v1/mails?unread=true
	r.Get("/{id}", h.get)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/", h.create)
		authed.Post("/{id}/read", h.markRead)
		authed.Post("/{id}/unread", h.markUnread)
	})
}

func (h *MailHandler) list(w http.ResponseWriter, r *http.Request) {
	unreadOnly, err := boolQuery(r, "unread")
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	page, pageSize := pageParams(r)
	result, err := h.inboxService.List(r.Context(), unreadOnly, page, pageSize)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *MailHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	mail, err := h.inboxService.Get(r.Context(), id)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, mail)
}

func (h *MailHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateMailRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	mail, err := h.inboxService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, mail)
}

func (h *MailHandler) markRead(w http.ResponseWriter, r *http.Request) {
	h.setUnread(w, r, h.inboxService.MarkRead)
}

func (h *MailHandler) markUnread(w http.ResponseWriter, r *http.Request) {
	h.setUnread(w, r, h.inboxService.MarkUnread)
}

func (h *MailHandler) setUnread(w http.ResponseWriter, r *http.Request, apply func(context.Context, int64) (*model.Mail, error)) {
	id, err := int64Param(r, "id")
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	mail, err := apply(r.Context(), id)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, mail)
}
