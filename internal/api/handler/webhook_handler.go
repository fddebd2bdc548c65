package handler

import (
	"context"
	"net/http"
	"tle_zone_dashboard/internal/api/middleware"
	"tle_zone_dashboard/internal/app/service"
	"tle_zone_dashboard/internal/common"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type deliveryService interface {
	HandleReceipt(ctx context.Context, receipt service.DeliveryReceipt) error
}

type WebhookHandler struct {
	deliveryService deliveryService
	validate        *validator.Validate
	secret          string
	log             *zap.Logger
}

func NewWebhookHandler(s deliveryService, v *validator.Validate, secret string, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{deliveryService: s, validate: v, secret: secret, log: log}
}

func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.WebhookSecret(h.secret)).Post("/delivery", h.handleDeliveryReceipt)
}

func (h *WebhookHandler) handleDeliveryReceipt(w http.ResponseWriter, r *http.Request) {
	var receipt service.DeliveryReceipt
	if err := decodeAndValidate(r, h.validate, &receipt); err != nil {
		h.log.Warn("invalid delivery receipt", zap.Error(err))
		common.RespondWithErr(w, err)
		return
	}

	if err := h.deliveryService.HandleReceipt(r.Context(), receipt); err != nil {
		h.log.Error("failed to handle delivery receipt",
			zap.Int64("notification_id", receipt.NotificationID), zap.Error(err))
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "receipt processed for delivery " + receipt.DeliveryID})
}
