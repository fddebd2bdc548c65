package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/domain/model"
)

type NotificationRepository interface {
	// Create inserts n and sets n.ID. tx may be nil.
	Create(ctx context.Context, tx *sql.Tx, n *model.Notification) error
	FindByID(ctx context.Context, id int64) (*model.Notification, error)
	List(ctx context.Context, unreadOnly bool, limit, offset int) ([]model.Notification, int, error)
	SetUnread(ctx context.Context, id int64, unread bool) error
	SentAtBetween(ctx context.Context, r model.Range) ([]time.Time, error)
}

type pgNotificationRepository struct {
	db *sql.DB
}

func NewPgNotificationRepository(db *sql.DB) NotificationRepository {
	return &pgNotificationRepository{db: db}
}

func (r *pgNotificationRepository) Create(ctx context.Context, tx *sql.Tx, n *model.Notification) error {
	sender, err := json.Marshal(n.Sender)
	if err != nil {
		return fmt.Errorf("pgNotificationRepository.Create marshal sender: %w", err)
	}
	tests := n.Tests
	if tests == nil {
		tests = []model.Test{}
	}
	testsJSON, err := json.Marshal(tests)
	if err != nil {
		return fmt.Errorf("pgNotificationRepository.Create marshal tests: %w", err)
	}

	query := `INSERT INTO notifications (unread, sender, body, date, sent_at, tests)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err = pick(r.db, tx).QueryRowContext(ctx, query, nullableBool(n.Unread), sender, n.Body, n.Date, n.SentAt(), testsJSON).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("pgNotificationRepository.Create: %w", err)
	}
	return nil
}

func (r *pgNotificationRepository) FindByID(ctx context.Context, id int64) (*model.Notification, error) {
	query := `SELECT id, unread, sender, body, date, tests FROM notifications WHERE id = $1`
	n, err := scanNotification(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgNotificationRepository.FindByID: %w", err)
	}
	return n, nil
}

func (r *pgNotificationRepository) List(ctx context.Context, unreadOnly bool, limit, offset int) ([]model.Notification, int, error) {
	where := ""
	if unreadOnly {
		where = " WHERE unread IS TRUE"
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notifications"+where).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgNotificationRepository.List count: %w", err)
	}

	query := "SELECT id, unread, sender, body, date, tests FROM notifications" + where +
		" ORDER BY sent_at DESC, id DESC LIMIT $1 OFFSET $2"
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgNotificationRepository.List query: %w", err)
	}
	defer rows.Close()

	out := []model.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("pgNotificationRepository.List scan: %w", err)
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgNotificationRepository.List rows.Err: %w", err)
	}
	return out, total, nil
}

func (r *pgNotificationRepository) SetUnread(ctx context.Context, id int64, unread bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET unread = $1 WHERE id = $2`, unread, id)
	if err != nil {
		return fmt.Errorf("pgNotificationRepository.SetUnread: %w", err)
	}
	return expectOne(res, "pgNotificationRepository.SetUnread")
}

func (r *pgNotificationRepository) SentAtBetween(ctx context.Context, rng model.Range) ([]time.Time, error) {
	return sentAtBetween(ctx, r.db, "notifications", rng)
}

func scanNotification(row rowScanner) (*model.Notification, error) {
	var (
		n      model.Notification
		unread sql.NullBool
		sender []byte
		tests  []byte
	)
	if err := row.Scan(&n.ID, &unread, &sender, &n.Body, &n.Date, &tests); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sender, &n.Sender); err != nil {
		return nil, fmt.Errorf("decode sender of notification %d: %w", n.ID, err)
	}
	decoded, err := model.DecodeTests(tests)
	if err != nil {
		return nil, fmt.Errorf("decode tests of notification %d: %w", n.ID, err)
	}
	n.Tests = decoded
	n.Unread = boolPtr(unread)
	return &n, nil
}
