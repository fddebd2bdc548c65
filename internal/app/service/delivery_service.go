package service

import (
	"context"
	"fmt"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/domain/model"
	"tle_zone_dashboard/internal/domain/repository"

	"go.uber.org/zap"
)

type DeliveryService struct {
	repo repository.DeliveryRepository
	log  *zap.Logger
}

func NewDeliveryService(repo repository.DeliveryRepository, log *zap.Logger) *DeliveryService {
	return &DeliveryService{repo: repo, log: log}
}

// DeliveryReceipt is what the notification gateway posts back once it has
// delivered (or given up on) a notification.
type DeliveryReceipt struct {
	NotificationID int64   `json:"notification_id" validate:"required"`
	DeliveryID     string  `json:"delivery_id" validate:"required"`
	Status         string  `json:"status" validate:"required,oneof=delivered failed"`
	Error          *string `json:"error,omitempty"`
}

func (s *DeliveryService) HandleReceipt(ctx context.Context, receipt DeliveryReceipt) error {
	delivery, err := s.repo.FindByNotificationID(ctx, receipt.NotificationID)
	if err != nil {
		return common.Errorf("delivery for notification %d: %w", receipt.NotificationID, err)
	}
	if delivery.ID != receipt.DeliveryID {
		return common.Errorf("receipt delivery id %s does not match %s: %w", receipt.DeliveryID, delivery.ID, common.ErrConflict)
	}
	if delivery.Status.IsTerminal() {
		s.log.Warn("delivery already settled, ignoring receipt",
			zap.Int64("notification_id", receipt.NotificationID), zap.String("status", string(delivery.Status)))
		return nil // Idempotency
	}

	var status model.DeliveryStatus
	switch receipt.Status {
	case "delivered":
		status = model.DeliveryDelivered
	case "failed":
		status = model.DeliveryFailed
	default:
		return fmt.Errorf("receipt status %q: %w", receipt.Status, common.ErrInvalidEnumValue)
	}

	if err := s.repo.UpdateStatus(ctx, receipt.NotificationID, status, receipt.Error); err != nil {
		return common.Errorf("failed to settle delivery for notification %d: %w", receipt.NotificationID, err)
	}
	s.log.Info("delivery receipt applied", zap.Int64("notification_id", receipt.NotificationID), zap.String("status", string(status)))
	return nil
}
