package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/domain/model"
)

type QuestionRepository interface {
	Create(ctx context.Context, q *model.Question) error
	FindByID(ctx context.Context, id string) (*model.Question, error)
	List(ctx context.Context, level *int, limit, offset int) ([]model.Question, int, error)
	Delete(ctx context.Context, id string) error
}

type pgQuestionRepository struct {
	db *sql.DB
}

func NewPgQuestionRepository(db *sql.DB) QuestionRepository {
	return &pgQuestionRepository{db: db}
}

func (r *pgQuestionRepository) Create(ctx context.Context, q *model.Question) error {
	query := `INSERT INTO questions (id, title, description, level, input_types, output_type)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, q.ID, q.Title, q.Description, q.Level, q.InputTypes, q.Outputtype)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("question with ID %q already exists: %w", q.ID, common.ErrConflict)
		}
		return fmt.Errorf("pgQuestionRepository.Create: %w", err)
	}
	return nil
}

func (r *pgQuestionRepository) FindByID(ctx context.Context, id string) (*model.Question, error) {
	query := `SELECT id, title, description, level, input_types, output_type FROM questions WHERE id = $1`
	q := &model.Question{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&q.ID, &q.Title, &q.Description, &q.Level, &q.InputTypes, &q.Outputtype)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgQuestionRepository.FindByID: %w", err)
	}
	return q, nil
}

func (r *pgQuestionRepository) List(ctx context.Context, level *int, limit, offset int) ([]model.Question, int, error) {
	var p placeholders
	where := ""
	if level != nil {
		where = " WHERE level = " + p.add(*level)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM questions"+where, p.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgQuestionRepository.List count: %w", err)
	}

	query := "SELECT id, title, description, level, input_types, output_type FROM questions" + where +
		fmt.Sprintf(" ORDER BY level ASC, title ASC LIMIT %s OFFSET %s", p.add(limit), p.add(offset))
	rows, err := r.db.QueryContext(ctx, query, p.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgQuestionRepository.List query: %w", err)
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Title, &q.Description, &q.Level, &q.InputTypes, &q.Outputtype); err != nil {
			return nil, 0, fmt.Errorf("pgQuestionRepository.List scan: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgQuestionRepository.List rows.Err: %w", err)
	}
	return questions, total, nil
}

func (r *pgQuestionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgQuestionRepository.Delete: %w", err)
	}
	return expectOne(res, "pgQuestionRepository.Delete")
}
