package storage

import (
	"context"

	"strategy-lab/internal/domain"
)

// ArtifactStore provides access to strategy_artifacts storage.
type ArtifactStore interface {
	// Insert adds a new artifact. Returns ErrDuplicateKey if the index exists.
	Insert(ctx context.Context, a *domain.StrategyArtifact) error

	// GetByIndex retrieves an artifact by its index. Returns ErrNotFound if not exists.
	GetByIndex(ctx context.Context, index int) (*domain.StrategyArtifact, error)

	// GetAll retrieves all artifacts, ordered by index ASC.
	GetAll(ctx context.Context) ([]*domain.StrategyArtifact, error)

	// GetByGeneration retrieves all artifacts of a generation, ordered by index ASC.
	GetByGeneration(ctx context.Context, generation int) ([]*domain.StrategyArtifact, error)

	// GetValidated retrieves all artifacts that passed validation, ordered by index ASC.
	GetValidated(ctx context.Context) ([]*domain.StrategyArtifact, error)
}

// BacktestMetricsStore provides access to backtest_metrics storage,
// the output table of the backtest engine.
type BacktestMetricsStore interface {
	// Insert adds a metrics record. Returns ErrDuplicateKey if the artifact index exists.
	Insert(ctx context.Context, m *domain.BacktestMetrics) error

	// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, metrics []*domain.BacktestMetrics) error

	// GetByIndex retrieves metrics by artifact index. Returns ErrNotFound if not exists.
	GetByIndex(ctx context.Context, index int) (*domain.BacktestMetrics, error)

	// GetAll retrieves all metrics records, ordered by artifact index ASC.
	GetAll(ctx context.Context) ([]*domain.BacktestMetrics, error)
}
