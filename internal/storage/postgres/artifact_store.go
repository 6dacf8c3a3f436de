package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"strategy-lab/internal/domain"
	"strategy-lab/internal/storage"
)

// ArtifactStore implements storage.ArtifactStore using PostgreSQL.
type ArtifactStore struct {
	pool *Pool
}

// NewArtifactStore creates a new ArtifactStore.
func NewArtifactStore(pool *Pool) *ArtifactStore {
	return &ArtifactStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ArtifactStore = (*ArtifactStore)(nil)

const artifactColumns = "artifact_index, source_text, generation, validation_passed, created_at"

// Insert adds a new artifact. Returns ErrDuplicateKey if the index exists.
func (s *ArtifactStore) Insert(ctx context.Context, a *domain.StrategyArtifact) error {
	query := `
		INSERT INTO strategy_artifacts (
			artifact_index, source_text, generation, validation_passed
		) VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query,
		a.Index,
		a.SourceText,
		a.Generation,
		a.ValidationPassed,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert artifact: %w", err)
	}
	return nil
}

// GetByIndex retrieves an artifact by its index. Returns ErrNotFound if not exists.
func (s *ArtifactStore) GetByIndex(ctx context.Context, index int) (*domain.StrategyArtifact, error) {
	query := `
		SELECT ` + artifactColumns + `
		FROM strategy_artifacts
		WHERE artifact_index = $1
	`

	row := s.pool.QueryRow(ctx, query, index)
	a, err := scanArtifact(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get artifact by index: %w", err)
	}
	return a, nil
}

// GetAll retrieves all artifacts, ordered by index ASC.
func (s *ArtifactStore) GetAll(ctx context.Context) ([]*domain.StrategyArtifact, error) {
	query := `
		SELECT ` + artifactColumns + `
		FROM strategy_artifacts
		ORDER BY artifact_index ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all artifacts: %w", err)
	}
	defer rows.Close()

	return scanArtifacts(rows)
}

// GetByGeneration retrieves all artifacts of a generation, ordered by index ASC.
func (s *ArtifactStore) GetByGeneration(ctx context.Context, generation int) ([]*domain.StrategyArtifact, error) {
	query := `
		SELECT ` + artifactColumns + `
		FROM strategy_artifacts
		WHERE generation = $1
		ORDER BY artifact_index ASC
	`

	rows, err := s.pool.Query(ctx, query, generation)
	if err != nil {
		return nil, fmt.Errorf("get artifacts by generation: %w", err)
	}
	defer rows.Close()

	return scanArtifacts(rows)
}

// GetValidated retrieves all artifacts that passed validation, ordered by index ASC.
func (s *ArtifactStore) GetValidated(ctx context.Context) ([]*domain.StrategyArtifact, error) {
	query := `
		SELECT ` + artifactColumns + `
		FROM strategy_artifacts
		WHERE validation_passed = TRUE
		ORDER BY artifact_index ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get validated artifacts: %w", err)
	}
	defer rows.Close()

	return scanArtifacts(rows)
}

// scanArtifact scans a single row into a StrategyArtifact.
func scanArtifact(row pgx.Row) (*domain.StrategyArtifact, error) {
	var a domain.StrategyArtifact
	err := row.Scan(
		&a.Index,
		&a.SourceText,
		&a.Generation,
		&a.ValidationPassed,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// scanArtifacts scans multiple rows into a slice of StrategyArtifact.
func scanArtifacts(rows pgx.Rows) ([]*domain.StrategyArtifact, error) {
	var artifacts []*domain.StrategyArtifact

	for rows.Next() {
		var a domain.StrategyArtifact
		err := rows.Scan(
			&a.Index,
			&a.SourceText,
			&a.Generation,
			&a.ValidationPassed,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan artifact row: %w", err)
		}
		artifacts = append(artifacts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifact rows: %w", err)
	}

	return artifacts, nil
}
