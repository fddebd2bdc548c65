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

type MailRepository interface {
	Create(ctx context.Context, mail *model.Mail) error
	FindByID(ctx context.Context, id int64) (*model.Mail, error)
	List(ctx context.Context, unreadOnly bool, limit, offset int) ([]model.Mail, int, error)
	SetUnread(ctx context.Context, id int64, unread bool) error
	SentAtBetween(ctx context.Context, r model.Range) ([]time.Time, error)
}

type pgMailRepository struct {
	db *sql.DB
}

func NewPgMailRepository(db *sql.DB) MailRepository {
	return &pgMailRepository{db: db}
}

func (r *pgMailRepository) Create(ctx context.Context, m *model.Mail) error {
	sender, err := json.Marshal(m.From)
	if err != nil {
		return fmt.Errorf("pgMailRepository.Create marshal sender: %w", err)
	}
	query := `INSERT INTO mails (unread, sender, subject, body, date, sent_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err = r.db.QueryRowContext(ctx, query, nullableBool(m.Unread), sender, m.Subject, m.Body, m.Date, m.SentAt()).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("pgMailRepository.Create: %w", err)
	}
	return nil
}

func (r *pgMailRepository) FindByID(ctx context.Context, id int64) (*model.Mail, error) {
	query := `SELECT id, unread, sender, subject, body, date FROM mails WHERE id = $1`
	m, err := scanMail(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgMailRepository.FindByID: %w", err)
	}
	return m, nil
}

func (r *pgMailRepository) List(ctx context.Context, unreadOnly bool, limit, offset int) ([]model.Mail, int, error) {
	where := ""
	if unreadOnly {
		where = " WHERE unread IS TRUE"
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM mails"+where).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgMailRepository.List count: %w", err)
	}

	query := "SELECT id, unread, sender, subject, body, date FROM mails" + where +
		" ORDER BY sent_at DESC, id DESC LIMIT $1 OFFSET $2"
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgMailRepository.List query: %w", err)
	}
	defer rows.Close()

	mails := []model.Mail{}
	for rows.Next() {
		m, err := scanMail(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("pgMailRepository.List scan: %w", err)
		}
		mails = append(mails, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgMailRepository.List rows.Err: %w", err)
	}
	return mails, total, nil
}

func (r *pgMailRepository) SetUnread(ctx context.Context, id int64, unread bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE mails SET unread = $1 WHERE id = $2`, unread, id)
	if err != nil {
		return fmt.Errorf("pgMailRepository.SetUnread: %w", err)
	}
	return expectOne(res, "pgMailRepository.SetUnread")
}

func (r *pgMailRepository) SentAtBetween(ctx context.Context, rng model.Range) ([]time.Time, error) {
	return sentAtBetween(ctx, r.db, "mails", rng)
}

func scanMail(row rowScanner) (*model.Mail, error) {
	var (
		m      model.Mail
		unread sql.NullBool
		sender []byte
	)
	if err := row.Scan(&m.ID, &unread, &sender, &m.Subject, &m.Body, &m.Date); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sender, &m.From); err != nil {
		return nil, fmt.Errorf("decode sender of mail %d: %w", m.ID, err)
	}
	m.Unread = boolPtr(unread)
	return &m, nil
}

// sentAtBetween returns the send times of rows in table within rng; table is a trusted constant.
func sentAtBetween(ctx context.Context, db *sql.DB, table string, rng model.Range) ([]time.Time, error) {
	query := "SELECT sent_at FROM " + table + " WHERE sent_at BETWEEN $1 AND $2 ORDER BY sent_at"
	rows, err := db.QueryContext(ctx, query, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("sentAtBetween %s query: %w", table, err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("sentAtBetween %s scan: %w", table, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
