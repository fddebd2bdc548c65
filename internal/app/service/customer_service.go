package service

import (
	"context"
	"fmt"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/domain/model"
	"tle_zone_dashboard/internal/domain/repository"
)

type CustomerService struct {
	repo repository.UserRepository
}

func NewCustomerService(repo repository.UserRepository) *CustomerService {
	return &CustomerService{repo: repo}
}

type ListCustomersQuery struct {
	Status   string
	Search   string
	Page     int
	PageSize int
}

type CreateCustomerRequest struct {
	Name     string        `json:"name" validate:"required"`
	Email    string        `json:"email" validate:"required"`
	Avatar   *model.Avatar `json:"avatar,omitempty"`
	Status   string        `json:"status" validate:"required,oneof=subscribed unsubscribed bounced"`
	Location string        `json:"location"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (s *CustomerService) List(ctx context.Context, q ListCustomersQuery) (*common.Page[model.User], error) {
	filter := repository.UserFilter{Search: q.Search}
	if q.Status != "" {
		status, err := model.ParseUserStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}

	page, size, limit, offset := normalizePage(q.Page, q.PageSize)
	filter.Limit, filter.Offset = limit, offset

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &common.Page[model.User]{Items: users, Total: total, Page: page, PageSize: size}, nil
}

func (s *CustomerService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*model.User, error) {
	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Avatar:   req.Avatar,
		Status:   model.UserStatus(req.Status),
		Location: req.Location,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return user, nil
}

func (s *CustomerService) UpdateStatus(ctx context.Context, id int64, status string) (*model.User, error) {
	parsed, err := model.ParseUserStatus(status)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, parsed); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}
