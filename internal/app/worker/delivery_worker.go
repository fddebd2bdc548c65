package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/domain/model"
	"tle_zone_dashboard/internal/domain/repository"
	"tle_zone_dashboard/internal/platform/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseLockScript deletes the lock only while it still holds our token.
var releaseLockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

type Options struct {
	QueueName     string
	LockPrefix    string
	LockTTL       time.Duration
	MaxAttempts   int
	WebhookURL    string
	WebhookSecret string
	PollTimeout   time.Duration

	// SweepInterval of zero disables the periodic sweep; Start still sweeps once.
	SweepInterval time.Duration

	// StaleAfter is how long a pending delivery may sit untouched before a
	// periodic sweep pushes it again.
	StaleAfter time.Duration
}

func OptionsFromConfig(cfg *config.Config) Options {
	lockTTL := time.Duration(cfg.DeliveryLockTTLSeconds) * time.Second
	return Options{
		QueueName:     cfg.NotificationQueueName,
		LockPrefix:    cfg.DeliveryLockPrefix,
		LockTTL:       lockTTL,
		MaxAttempts:   cfg.DeliveryMaxAttempts,
		WebhookURL:    cfg.DeliveryWebhookURL,
		WebhookSecret: cfg.DeliveryWebhookSecret,
		PollTimeout:   5 * time.Second,
		SweepInterval: time.Duration(cfg.DeliverySweepSeconds) * time.Second,
		StaleAfter:    2 * lockTTL,
	}
}

type DeliveryWorker struct {
	rdb              *redis.Client
	notificationRepo repository.NotificationRepository
	deliveryRepo     repository.DeliveryRepository
	client           *http.Client
	opts             Options
	log              *zap.Logger
}

func NewDeliveryWorker(
	rdb *redis.Client,
	notificationRepo repository.NotificationRepository,
	deliveryRepo repository.DeliveryRepository,
	opts Options,
	log *zap.Logger,
) *DeliveryWorker {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 5 * time.Second
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 2 * time.Minute
	}
	return &DeliveryWorker{
		rdb:              rdb,
		notificationRepo: notificationRepo,
		deliveryRepo:     deliveryRepo,
		client:           &http.Client{Timeout: 10 * time.Second},
		opts:             opts,
		log:              log.With(zap.String("queue", opts.QueueName)),
	}
}

// Start re-pushes orphaned deliveries, then pops notification IDs until ctx
// is cancelled.
func (w *DeliveryWorker) Start(ctx context.Context) {
	w.log.Info("delivery worker started")
	if _, err := w.Sweep(ctx, time.Now()); err != nil {
		w.log.Error("startup sweep failed", zap.Error(err))
	}
	if w.opts.SweepInterval > 0 {
		go w.sweepLoop(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Info("delivery worker stopping")
			return
		default:
		}

		if _, err := w.ProcessNext(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.log.Error("failed to pop from delivery queue", zap.Error(err))
			time.Sleep(5 * time.Second) // Wait before retrying on redis errors
		}
	}
}

func (w *DeliveryWorker) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(w.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Sweep(ctx, time.Now().Add(-w.opts.StaleAfter)); err != nil {
				w.log.Error("delivery sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep pushes pending deliveries last updated before updatedBefore back onto
// the queue, skipping IDs that are already queued or locked by a worker. It
// returns how many IDs were pushed.
func (w *DeliveryWorker) Sweep(ctx context.Context, updatedBefore time.Time) (int, error) {
	ids, err := w.deliveryRepo.ListPending(ctx, updatedBefore)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	queued, err := w.rdb.LRange(ctx, w.opts.QueueName, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read delivery queue: %w", err)
	}
	inQueue := make(map[string]struct{}, len(queued))
	for _, v := range queued {
		inQueue[v] = struct{}{}
	}

	pushed := 0
	for _, id := range ids {
		if _, ok := inQueue[strconv.FormatInt(id, 10)]; ok {
			continue
		}
		locked, err := w.rdb.Exists(ctx, w.lockKey(id)).Result()
		if err != nil {
			return pushed, fmt.Errorf("failed to check delivery lock: %w", err)
		}
		if locked > 0 {
			continue
		}
		if err := w.rdb.LPush(ctx, w.opts.QueueName, id).Err(); err != nil {
			return pushed, fmt.Errorf("failed to re-push notification %d: %w", id, err)
		}
		pushed++
	}
	if pushed > 0 {
		w.log.Info("re-pushed pending deliveries", zap.Int("count", pushed))
	}
	return pushed, nil
}

// ProcessNext waits up to PollTimeout for one queued notification and
// handles it. It reports whether an item was popped.
func (w *DeliveryWorker) ProcessNext(ctx context.Context) (bool, error) {
	res, err := w.rdb.BRPop(ctx, w.opts.PollTimeout, w.opts.QueueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	// res is [queueName, value]
	if len(res) < 2 || res[1] == "" {
		w.log.Warn("BRPOP returned an empty notification id")
		return true, nil
	}
	id, err := strconv.ParseInt(res[1], 10, 64)
	if err != nil {
		w.log.Error("dropping malformed queue entry", zap.String("value", res[1]), zap.Error(err))
		return true, nil
	}
	w.processWithLock(ctx, id)
	return true, nil
}

func (w *DeliveryWorker) lockKey(notificationID int64) string {
	return fmt.Sprintf("%s:%d", w.opts.LockPrefix, notificationID)
}

// processWithLock owns a popped ID. Only the gateway call observes ctx; every
// store write after the pop runs on a detached context so shutdown cannot
// strand the ID off the queue.
func (w *DeliveryWorker) processWithLock(ctx context.Context, notificationID int64) {
	store := context.WithoutCancel(ctx)
	log := w.log.With(zap.Int64("notification_id", notificationID))
	key := w.lockKey(notificationID)
	token := uuid.NewString()

	ok, err := w.rdb.SetNX(store, key, token, w.opts.LockTTL).Result()
	if err != nil {
		log.Error("failed to attempt delivery lock", zap.Error(err))
		w.requeue(store, notificationID)
		return
	}
	if !ok {
		log.Info("delivery lock busy, re-queueing")
		w.requeue(store, notificationID)
		return
	}

	defer func() {
		deleted, err := releaseLockScript.Run(store, w.rdb, []string{key}, token).Int64()
		if err != nil {
			log.Error("failed to release delivery lock", zap.Error(err))
		} else if deleted != 1 {
			log.Warn("delivery lock expired or taken before release")
		}
	}()

	w.deliver(ctx, store, log, notificationID)
}

func (w *DeliveryWorker) requeue(ctx context.Context, notificationID int64) {
	// LPUSH puts it behind everything already waiting.
	if err := w.rdb.LPush(ctx, w.opts.QueueName, notificationID).Err(); err != nil {
		w.log.Error("failed to re-queue notification", zap.Int64("notification_id", notificationID), zap.Error(err))
	}
}

func (w *DeliveryWorker) deliver(ctx, store context.Context, log *zap.Logger, notificationID int64) {
	delivery, err := w.deliveryRepo.FindByNotificationID(store, notificationID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Warn("no delivery recorded for notification, dropping")
			return
		}
		log.Error("failed to load delivery, re-queueing", zap.Error(err))
		w.requeue(store, notificationID)
		return
	}
	if delivery.Status.IsTerminal() {
		log.Info("delivery already settled, skipping", zap.String("status", string(delivery.Status)))
		return
	}

	notification, err := w.notificationRepo.FindByID(store, notificationID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			w.settle(store, log, notificationID, model.DeliveryFailed, fmt.Sprintf("load notification: %v", err))
			return
		}
		log.Error("failed to load notification, re-queueing", zap.Error(err))
		w.requeue(store, notificationID)
		return
	}

	if err := w.deliveryRepo.UpdateStatus(store, notificationID, model.DeliverySending, nil); err != nil {
		log.Error("failed to mark delivery as sending", zap.Error(err))
	}
	attempts, err := w.deliveryRepo.IncrementAttempts(store, notificationID)
	if err != nil {
		log.Error("failed to count delivery attempt, re-queueing", zap.Error(err))
		w.settle(store, log, notificationID, model.DeliveryQueued, "")
		w.requeue(store, notificationID)
		return
	}

	if err := w.post(ctx, delivery.ID, notification); err != nil {
		msg := err.Error()
		if ctx.Err() != nil {
			log.Warn("delivery interrupted by shutdown, re-queueing", zap.Int("attempts", attempts))
			w.settle(store, log, notificationID, model.DeliveryQueued, msg)
			w.requeue(store, notificationID)
			return
		}
		if attempts >= w.opts.MaxAttempts {
			log.Error("giving up on delivery", zap.Int("attempts", attempts), zap.Error(err))
			w.settle(store, log, notificationID, model.DeliveryFailed, msg)
			return
		}
		log.Warn("delivery attempt failed, re-queueing", zap.Int("attempts", attempts), zap.Error(err))
		w.settle(store, log, notificationID, model.DeliveryQueued, msg)
		w.requeue(store, notificationID)
		return
	}

	w.settle(store, log, notificationID, model.DeliveryDelivered, "")
	log.Info("notification delivered", zap.Int("attempts", attempts))
}

func (w *DeliveryWorker) settle(ctx context.Context, log *zap.Logger, notificationID int64, status model.DeliveryStatus, msg string) {
	var lastErr *string
	if msg != "" {
		lastErr = &msg
	}
	if err := w.deliveryRepo.UpdateStatus(ctx, notificationID, status, lastErr); err != nil {
		log.Error("failed to update delivery status", zap.String("status", string(status)), zap.Error(err))
	}
}

func (w *DeliveryWorker) post(ctx context.Context, deliveryID string, n *model.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.opts.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Delivery-ID", deliveryID)
	if w.opts.WebhookSecret != "" {
		req.Header.Set("X-Webhook-Secret", w.opts.WebhookSecret)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return nil
}
