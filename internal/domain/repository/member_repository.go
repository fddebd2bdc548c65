package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/domain/model"
)

type MemberRepository interface {
	Create(ctx context.Context, member *model.Member) error
	// FindByUsername reads through tx when it is non-nil.
	FindByUsername(ctx context.Context, tx *sql.Tx, username string) (*model.Member, error)
	List(ctx context.Context) ([]model.Member, error)
	UpdateRole(ctx context.Context, tx *sql.Tx, username string, role model.MemberRole) error
	Delete(ctx context.Context, tx *sql.Tx, username string) error
	// LockOwners row-locks every owner until tx ends and returns how many
	// there are. Concurrent callers serialize on the lock.
	LockOwners(ctx context.Context, tx *sql.Tx) (int, error)
}

type pgMemberRepository struct {
	db *sql.DB
}

func NewPgMemberRepository(db *sql.DB) MemberRepository {
	return &pgMemberRepository{db: db}
}

func (r *pgMemberRepository) Create(ctx context.Context, m *model.Member) error {
	avatar, err := json.Marshal(m.Avatar)
	if err != nil {
		return fmt.Errorf("pgMemberRepository.Create marshal avatar: %w", err)
	}
	query := `INSERT INTO members (username, name, role, avatar, hashed_password) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, m.Username, m.Name, m.Role, avatar, m.HashedPassword); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("member %q already exists: %w", m.Username, common.ErrConflict)
		}
		return fmt.Errorf("pgMemberRepository.Create: %w", err)
	}
	return nil
}

func (r *pgMemberRepository) FindByUsername(ctx context.Context, tx *sql.Tx, username string) (*model.Member, error) {
	query := `SELECT username, name, role, avatar, hashed_password FROM members WHERE username = $1`
	m, err := scanMember(pick(r.db, tx).QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgMemberRepository.FindByUsername: %w", err)
	}
	return m, nil
}

func (r *pgMemberRepository) List(ctx context.Context) ([]model.Member, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT username, name, role, avatar, hashed_password FROM members ORDER BY created_at, username`)
	if err != nil {
		return nil, fmt.Errorf("pgMemberRepository.List query: %w", err)
	}
	defer rows.Close()

	members := []model.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("pgMemberRepository.List scan: %w", err)
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgMemberRepository.List rows.Err: %w", err)
	}
	return members, nil
}

func (r *pgMemberRepository) UpdateRole(ctx context.Context, tx *sql.Tx, username string, role model.MemberRole) error {
	res, err := pick(r.db, tx).ExecContext(ctx, `UPDATE members SET role = $1 WHERE username = $2`, role, username)
	if err != nil {
		return fmt.Errorf("pgMemberRepository.UpdateRole: %w", err)
	}
	return expectOne(res, "pgMemberRepository.UpdateRole")
}

func (r *pgMemberRepository) Delete(ctx context.Context, tx *sql.Tx, username string) error {
	res, err := pick(r.db, tx).ExecContext(ctx, `DELETE FROM members WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("pgMemberRepository.Delete: %w", err)
	}
	return expectOne(res, "pgMemberRepository.Delete")
}

func (r *pgMemberRepository) LockOwners(ctx context.Context, tx *sql.Tx) (int, error) {
	// FOR UPDATE cannot be combined with COUNT, so count the locked rows here.
	rows, err := pick(r.db, tx).QueryContext(ctx,
		`SELECT username FROM members WHERE role = 'owner' ORDER BY username FOR UPDATE`)
	if err != nil {
		return 0, fmt.Errorf("pgMemberRepository.LockOwners query: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		n++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("pgMemberRepository.LockOwners rows.Err: %w", err)
	}
	return n, nil
}

func scanMember(row rowScanner) (*model.Member, error) {
	var (
		m      model.Member
		avatar []byte
	)
	if err := row.Scan(&m.Username, &m.Name, &m.Role, &avatar, &m.HashedPassword); err != nil {
		return nil, err
	}
	if len(avatar) > 0 {
		if err := json.Unmarshal(avatar, &m.Avatar); err != nil {
			return nil, fmt.Errorf("decode avatar of member %s: %w", m.Username, err)
		}
	}
	return &m, nil
}
