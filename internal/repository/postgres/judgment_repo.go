package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"clinex/internal/domain"
	"clinex/internal/port"
)

type judgmentRepo struct {
	db *sqlx.DB
}

// NewJudgmentRepo creates a new PostgreSQL-backed JudgmentRepository.
func NewJudgmentRepo(db *sqlx.DB) port.JudgmentRepository {
	return &judgmentRepo{db: db}
}

func (r *judgmentRepo) CreateBatch(ctx context.Context, judgments []domain.Judgment) error {
	if len(judgments) == 0 {
		return nil
	}
	query := `INSERT INTO judgments (id, run_id, case_id, provider, model, iteration, item, value, created_at)
		VALUES (:id, :run_id, :case_id, :provider, :model, :iteration, :item, :value, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, judgments); err != nil {
		return fmt.Errorf("judgmentRepo.CreateBatch: %w", err)
	}
	return nil
}

func (r *judgmentRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]domain.Judgment, error) {
	var judgments []domain.Judgment
	query := `SELECT * FROM judgments WHERE run_id = $1 ORDER BY case_id, item`
	if err := r.db.SelectContext(ctx, &judgments, query, runID); err != nil {
		return nil, fmt.Errorf("judgmentRepo.ListByRun: %w", err)
	}
	return judgments, nil
}
