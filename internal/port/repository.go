package port

import (
	"context"

	"github.com/google/uuid"

	"clinex/internal/domain"
)

// RunRepository persists extraction runs.
type RunRepository interface {
	Create(ctx context.Context, run *domain.Run) error
	Finish(ctx context.Context, run *domain.Run) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error)
	List(ctx context.Context, offset, limit int) ([]domain.Run, int, error)
}

// JudgmentRepository persists per-item judgments for a run.
type JudgmentRepository interface {
	CreateBatch(ctx context.Context, judgments []domain.Judgment) error
	ListByRun(ctx context.Context, runID uuid.UUID) ([]domain.Judgment, error)
}
