package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"clinex/internal/domain"
	"clinex/internal/port"
)

type runRepo struct {
	db *sqlx.DB
}

// NewRunRepo creates a new PostgreSQL-backed RunRepository.
func NewRunRepo(db *sqlx.DB) port.RunRepository {
	return &runRepo{db: db}
}

func (r *runRepo) Create(ctx context.Context, run *domain.Run) error {
	query := `INSERT INTO runs (id, task, provider, model, iteration, status, cases_total, cases_failed, output_file, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Task, run.Provider, run.Model, run.Iteration,
		run.Status, run.CasesTotal, run.CasesFailed, run.OutputFile, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("runRepo.Create: %w", err)
	}
	return nil
}

func (r *runRepo) Finish(ctx context.Context, run *domain.Run) error {
	query := `UPDATE runs
		SET status = $2, cases_total = $3, cases_failed = $4, output_file = $5, finished_at = $6
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		run.ID, run.Status, run.CasesTotal, run.CasesFailed, run.OutputFile, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("runRepo.Finish: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("runRepo.Finish rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *runRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	var run domain.Run
	query := `SELECT * FROM runs WHERE id = $1`
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("runRepo.GetByID: %w", err)
	}
	return &run, nil
}

func (r *runRepo) List(ctx context.Context, offset, limit int) ([]domain.Run, int, error) {
	var runs []domain.Run
	query := `SELECT * FROM runs ORDER BY started_at DESC OFFSET $1 LIMIT $2`
	if err := r.db.SelectContext(ctx, &runs, query, offset, limit); err != nil {
		return nil, 0, fmt.Errorf("runRepo.List: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM runs`); err != nil {
		return nil, 0, fmt.Errorf("runRepo.List count: %w", err)
	}
	return runs, total, nil
}
