package service

import (
	"context"
	"fmt"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/domain/model"
	"tle_zone_dashboard/internal/domain/repository"

	"github.com/gosimple/slug"
)

type QuestionService struct {
	repo repository.QuestionRepository
}

func NewQuestionService(repo repository.QuestionRepository) *QuestionService {
	return &QuestionService{repo: repo}
}

// CreateQuestionRequest uses the client's field names. ID may be left empty.
type CreateQuestionRequest struct {
	Title       string `json:"Title" validate:"required"`
	Description string `json:"Description" validate:"required"`
	Level       int    `json:"Level" validate:"gte=0"`
	ID          string `json:"ID"`
	InputTypes  string `json:"InputTypes"`
	Outputtype  string `json:"Outputtype"`
}

func (s *QuestionService) List(ctx context.Context, level *int, page, pageSize int) (*common.Page[model.Question], error) {
	page, size, limit, offset := normalizePage(page, pageSize)
	questions, total, err := s.repo.List(ctx, level, limit, offset)
	if err != nil {
		return nil, err
	}
	return &common.Page[model.Question]{Items: questions, Total: total, Page: page, PageSize: size}, nil
}

func (s *QuestionService) Get(ctx context.Context, id string) (*model.Question, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *QuestionService) Create(ctx context.Context, req CreateQuestionRequest) (*model.Question, error) {
	q := &model.Question{
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
		ID:          req.ID,
		InputTypes:  req.InputTypes,
		Outputtype:  req.Outputtype,
	}
	if q.ID == "" {
		q.ID = slug.Make(req.Title)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return q, nil
}

func (s *QuestionService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
