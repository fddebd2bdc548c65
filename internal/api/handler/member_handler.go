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

type memberService interface {
	List(ctx context.Context) ([]model.Member, error)
	Invite(ctx context.Context, req service.InviteMemberRequest) (*model.Member, error)
	ChangeRole(ctx context.Context, username, role string) (*model.Member, error)
	Remove(ctx context.Context, username string) error
}

type MemberHandler struct {
	memberService memberService
	validate      *validator.Validate
}

func NewMemberHandler(s memberService, v *validator.Validate) *MemberHandler {
	return &MemberHandler{memberService: s, validate: v}
}

func (h *MemberHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)

	r.Group(func(owner chi.Router) {
		owner.Use(middleware.Authenticator)
		owner.Use(middleware.OwnerOnly)
		owner.Post("/", h.invite)
		owner.Patch("/{username}/role", h.changeRole)
		owner.Delete("/{username}", h.remove)
	})
}

func (h *MemberHandler) list(w http.ResponseWriter, r *http.Request) {
	members, err := h.memberService.List(r.Context())
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	common.RespondWithJSON(w, http.StatusOK, members)
}

func (h *MemberHandler) invite(w http.ResponseWriter, r *http.Request) {
	var req service.InviteMemberRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	member, err := h.memberService.Invite(r.Context(), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, member)
}

func (h *MemberHandler) changeRole(w http.ResponseWriter, r *http.Request) {
	var req service.ChangeRoleRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	member, err := h.memberService.ChangeRole(r.Context(), chi.URLParam(r, "username"), req.Role)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, member)
}

func (h *MemberHandler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.memberService.Remove(r.Context(), chi.URLParam(r, "username")); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
