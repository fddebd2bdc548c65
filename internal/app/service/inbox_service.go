package service

import (
	"context"
	"fmt"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/domain/model"
	"tle_zone_dashboard/internal/domain/repository"
)

type InboxService struct {
	repo repository.MailRepository
}

func NewInboxService(repo repository.MailRepository) *InboxService {
	return &InboxService{repo: repo}
}

// CreateMailRequest carries an inbound mail; From goes through the User contract.
type CreateMailRequest struct {
	Unread  *bool       `json:"unread,omitempty"`
	From    *model.User `json:"from"`
	Subject string      `json:"subject"`
	Body    string      `json:"body"`
	Date    string      `json:"date" validate:"required"`
}

func (s *InboxService) List(ctx context.Context, unreadOnly bool, page, pageSize int) (*common.Page[model.Mail], error) {
	page, size, limit, offset := normalizePage(page, pageSize)
	mails, total, err := s.repo.List(ctx, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	return &common.Page[model.Mail]{Items: mails, Total: total, Page: page, PageSize: size}, nil
}

func (s *InboxService) Get(ctx context.Context, id int64) (*model.Mail, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *InboxService) Create(ctx context.Context, req CreateMailRequest) (*model.Mail, error) {
	if req.From == nil {
		return nil, fmt.Errorf("mail.from: %w", common.ErrMissingRequiredField)
	}
	mail := &model.Mail{
		Unread:  req.Unread,
		From:    *req.From,
		Subject: req.Subject,
		Body:    req.Body,
		Date:    req.Date,
	}
	if err := mail.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, mail); err != nil {
		return nil, fmt.Errorf("failed to store mail: %w", err)
	}
	return mail, nil
}

func (s *InboxService) MarkRead(ctx context.Context, id int64) (*model.Mail, error) {
	return s.setUnread(ctx, id, false)
}

func (s *InboxService) MarkUnread(ctx context.Context, id int64) (*model.Mail, error) {
	return s.setUnread(ctx, id, true)
}

func (s *InboxService) setUnread(ctx context.Context, id int64, unread bool) (*model.Mail, error) {
	if err := s.repo.SetUnread(ctx, id, unread); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}
