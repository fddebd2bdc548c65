package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"tle_zone_dashboard/internal/api/middleware"
	"tle_zone_dashboard/internal/app/service"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type questionService interface {
	List(ctx context.Context, level *int, page, pageSize int) (*common.Page[model.Question], error)
	Get(ctx context.Context, id string) (*model.Question, error)
	Create(ctx context.Context, req service.CreateQuestionRequest) (*model.Question, error)
	Delete(ctx context.Context, id string) error
}

type QuestionHandler struct {
	questionService questionService
	validate        *validator.Validate
}

func NewQuestionHandler(s questionService, v *validator.Validate) *QuestionHandler {
	return &QuestionHandler{questionService: s, validate: v}
}

func (h *QuestionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)            // GET /api/v1/questions?level=2
	r.Get("/{questionID}", h.get) // GET /api/v1/questions/two-sum

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/", h.create)
		authed.With(middleware.OwnerOnly).Delete("/{questionID}", h.delete)
	})
}

func (h *QuestionHandler) list(w http.ResponseWriter, r *http.Request) {
	var level *int
	if raw := r.URL.Query().Get("level"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			common.RespondWithErr(w, fmt.Errorf("invalid level %q: %w", raw, common.ErrBadRequest))
			return
		}
		level = &v
	}
	page, pageSize := pageParams(r)
	result, err := h.questionService.List(r.Context(), level, page, pageSize)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *QuestionHandler) get(w http.ResponseWriter, r *http.Request) {
	q, err := h.questionService.Get(r.Context(), chi.URLParam(r, "questionID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, q)
}

func (h *QuestionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateQuestionRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	q, err := h.questionService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, q)
}

func (h *QuestionHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.questionService.Delete(r.Context(), chi.URLParam(r, "questionID")); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
