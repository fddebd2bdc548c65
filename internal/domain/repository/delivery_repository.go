package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/domain/model"
)

type DeliveryRepository interface {
	Create(ctx context.Context, tx *sql.Tx, d *model.Delivery) error
	FindByNotificationID(ctx context.Context, notificationID int64) (*model.Delivery, error)
	UpdateStatus(ctx context.Context, notificationID int64, status model.DeliveryStatus, lastError *string) error
	// IncrementAttempts bumps the counter and returns the new value.
	IncrementAttempts(ctx context.Context, notificationID int64) (int, error)
	// ListPending returns notification IDs of queued or sending deliveries
	// last touched before updatedBefore, oldest first.
	ListPending(ctx context.Context, updatedBefore time.Time) ([]int64, error)
}

type pgDeliveryRepository struct {
	db *sql.DB
}

func NewPgDeliveryRepository(db *sql.DB) DeliveryRepository {
	return &pgDeliveryRepository{db: db}
}

func (r *pgDeliveryRepository) Create(ctx context.Context, tx *sql.Tx, d *model.Delivery) error {
	query := `INSERT INTO notification_deliveries (id, notification_id, status, attempts)
	          VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`
	err := pick(r.db, tx).QueryRowContext(ctx, query, d.ID, d.NotificationID, d.Status, d.Attempts).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("delivery for notification %d already exists: %w", d.NotificationID, common.ErrConflict)
		}
		return fmt.Errorf("pgDeliveryRepository.Create: %w", err)
	}
	return nil
}

func (r *pgDeliveryRepository) FindByNotificationID(ctx context.Context, notificationID int64) (*model.Delivery, error) {
	query := `SELECT id, notification_id, status, attempts, last_error, created_at, updated_at
	          FROM notification_deliveries WHERE notification_id = $1`
	d := &model.Delivery{}
	var lastError sql.NullString
	err := r.db.QueryRowContext(ctx, query, notificationID).Scan(
		&d.ID, &d.NotificationID, &d.Status, &d.Attempts, &lastError, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgDeliveryRepository.FindByNotificationID: %w", err)
	}
	if lastError.Valid {
		d.LastError = &lastError.String
	}
	return d, nil
}

func (r *pgDeliveryRepository) UpdateStatus(ctx context.Context, notificationID int64, status model.DeliveryStatus, lastError *string) error {
	query := `UPDATE notification_deliveries SET status = $1, last_error = $2, updated_at = CURRENT_TIMESTAMP
	          WHERE notification_id = $3`
	res, err := r.db.ExecContext(ctx, query, status, lastError, notificationID)
	if err != nil {
		return fmt.Errorf("pgDeliveryRepository.UpdateStatus: %w", err)
	}
	return expectOne(res, "pgDeliveryRepository.UpdateStatus")
}

func (r *pgDeliveryRepository) IncrementAttempts(ctx context.Context, notificationID int64) (int, error) {
	query := `UPDATE notification_deliveries SET attempts = attempts + 1, updated_at = CURRENT_TIMESTAMP
	          WHERE notification_id = $1 RETURNING attempts`
	var attempts int
	if err := r.db.QueryRowContext(ctx, query, notificationID).Scan(&attempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("pgDeliveryRepository.IncrementAttempts: %w", err)
	}
	return attempts, nil
}

func (r *pgDeliveryRepository) ListPending(ctx context.Context, updatedBefore time.Time) ([]int64, error) {
	query := `SELECT notification_id FROM notification_deliveries
	          WHERE status IN ($1, $2) AND updated_at < $3
	          ORDER BY updated_at, notification_id`
	rows, err := r.db.QueryContext(ctx, query, model.DeliveryQueued, model.DeliverySending, updatedBefore)
	if err != nil {
		return nil, fmt.Errorf("pgDeliveryRepository.ListPending query: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgDeliveryRepository.ListPending scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgDeliveryRepository.ListPending rows.Err: %w", err)
	}
	return ids, nil
}
