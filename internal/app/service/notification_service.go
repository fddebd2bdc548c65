package service

import (
	"context"
	"database/sql"
	"fmt"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/domain/model"
	"tle_zone_dashboard/internal/domain/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Publisher hands a stored notification to the delivery worker.
type Publisher interface {
	Publish(ctx context.Context, notificationID int64) error
}

type NotificationService struct {
	repo         repository.NotificationRepository
	deliveryRepo repository.DeliveryRepository
	publisher    Publisher
	tx           TxRunner
	log          *zap.Logger
}

func NewNotificationService(
	repo repository.NotificationRepository,
	deliveryRepo repository.DeliveryRepository,
	publisher Publisher,
	tx TxRunner,
	log *zap.Logger,
) *NotificationService {
	return &NotificationService{
		repo:         repo,
		deliveryRepo: deliveryRepo,
		publisher:    publisher,
		tx:           tx,
		log:          log,
	}
}

type CreateNotificationRequest struct {
	Unread *bool        `json:"unread,omitempty"`
	Sender *model.User  `json:"sender"`
	Body   string       `json:"body" validate:"required"`
	Date   string       `json:"date" validate:"required"`
	Tests  []model.Test `json:"tests"`
}

func (s *NotificationService) List(ctx context.Context, unreadOnly bool, page, pageSize int) (*common.Page[model.Notification], error) {
	page, size, limit, offset := normalizePage(page, pageSize)
	items, total, err := s.repo.List(ctx, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	return &common.Page[model.Notification]{Items: items, Total: total, Page: page, PageSize: size}, nil
}

func (s *NotificationService) Get(ctx context.Context, id int64) (*model.Notification, error) {
	return s.repo.FindByID(ctx, id)
}

// Create stores the notification with a queued delivery and enqueues it.
// A failed enqueue is logged, not returned: the notification already exists.
func (s *NotificationService) Create(ctx context.Context, req CreateNotificationRequest) (*model.Notification, error) {
	if req.Sender == nil {
		return nil, fmt.Errorf("notification.sender: %w", common.ErrMissingRequiredField)
	}
	tests := req.Tests
	if tests == nil {
		tests = []model.Test{}
	}
	n := &model.Notification{
		Unread: req.Unread,
		Sender: *req.Sender,
		Body:   req.Body,
		Date:   req.Date,
		Tests:  tests,
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.repo.Create(ctx, tx, n); err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		delivery := &model.Delivery{
			ID:             uuid.NewString(),
			NotificationID: n.ID,
			Status:         model.DeliveryQueued,
		}
		if err := s.deliveryRepo.Create(ctx, tx, delivery); err != nil {
			return fmt.Errorf("failed to create delivery: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The row is committed as Queued; if this push is lost the worker sweep re-pushes it.
	if err := s.publisher.Publish(ctx, n.ID); err != nil {
		s.log.Error("failed to enqueue notification delivery", zap.Int64("notification_id", n.ID), zap.Error(err))
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id int64) (*model.Notification, error) {
	if err := s.repo.SetUnread(ctx, id, false); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// Delivery returns the delivery record of a notification.
func (s *NotificationService) Delivery(ctx context.Context, id int64) (*model.Delivery, error) {
	return s.deliveryRepo.FindByNotificationID(ctx, id)
}
