package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/domain/model"
)

type UserFilter struct {
	Status model.UserStatus // empty means any
	Search string           // matched against name and email
	Limit  int
	Offset int
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context, filter UserFilter) ([]model.User, int, error)
	UpdateStatus(ctx context.Context, id int64, status model.UserStatus) error
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	avatar, err := marshalAvatar(user.Avatar)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Create marshal avatar: %w", err)
	}
	query := `INSERT INTO customers (name, email, avatar, status, location)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err = r.db.QueryRowContext(ctx, query, user.Name, user.Email, avatar, user.Status, user.Location).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT id, name, email, avatar, status, location FROM customers WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) List(ctx context.Context, f UserFilter) ([]model.User, int, error) {
	var p placeholders
	var conditions []string
	if f.Status != "" {
		conditions = append(conditions, "status = "+p.add(f.Status))
	}
	if f.Search != "" {
		ph := p.add("%" + f.Search + "%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE %s OR email ILIKE %s)", ph, ph))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers"+where, p.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.List count: %w", err)
	}

	query := "SELECT id, name, email, avatar, status, location FROM customers" + where +
		fmt.Sprintf(" ORDER BY id ASC LIMIT %s OFFSET %s", p.add(f.Limit), p.add(f.Offset))
	rows, err := r.db.QueryContext(ctx, query, p.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.List query: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("pgUserRepository.List scan: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.List rows.Err: %w", err)
	}
	return users, total, nil
}

func (r *pgUserRepository) UpdateStatus(ctx context.Context, id int64, status model.UserStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE customers SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdateStatus: %w", err)
	}
	return expectOne(res, "pgUserRepository.UpdateStatus")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u      model.User
		avatar []byte
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &avatar, &u.Status, &u.Location); err != nil {
		return nil, err
	}
	a, err := unmarshalAvatar(avatar)
	if err != nil {
		return nil, fmt.Errorf("decode avatar of customer %d: %w", u.ID, err)
	}
	u.Avatar = a
	return &u, nil
}
