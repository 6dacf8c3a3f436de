package clickhouse

import (
	"context"
	"fmt"

	"strategy-lab/internal/domain"
	"strategy-lab/internal/storage"
)

// BacktestMetricsStore implements storage.BacktestMetricsStore using ClickHouse.
// Metrics rows are append-heavy analytics data, which is what the columnar
// store is for.
type BacktestMetricsStore struct {
	conn *Conn
}

// NewBacktestMetricsStore creates a new BacktestMetricsStore.
func NewBacktestMetricsStore(conn *Conn) *BacktestMetricsStore {
	return &BacktestMetricsStore{conn: conn}
}

// Compile-time interface check.
var _ storage.BacktestMetricsStore = (*BacktestMetricsStore)(nil)

const metricsColumns = "artifact_index, sharpe_ratio, max_drawdown, annual_return, total_trades"

// Insert adds a metrics record. Returns ErrDuplicateKey if the artifact index exists.
func (s *BacktestMetricsStore) Insert(ctx context.Context, m *domain.BacktestMetrics) error {
	// MergeTree does not enforce uniqueness at insert time, so duplicates are
	// detected with an explicit check to keep append-only semantics.
	exists, err := s.exists(ctx, m.ArtifactIndex)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `
		INSERT INTO backtest_metrics (` + metricsColumns + `)
		VALUES (?, ?, ?, ?, ?)
	`

	err = s.conn.Exec(ctx, query,
		int64(m.ArtifactIndex), m.SharpeRatio, m.MaxDrawdown, m.AnnualReturn, int64(m.TotalTrades),
	)
	if err != nil {
		return fmt.Errorf("insert backtest metrics: %w", err)
	}
	return nil
}

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *BacktestMetricsStore) InsertBulk(ctx context.Context, metrics []*domain.BacktestMetrics) error {
	if len(metrics) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[int]struct{}, len(metrics))
	for _, m := range metrics {
		if _, exists := seen[m.ArtifactIndex]; exists {
			return storage.ErrDuplicateKey
		}
		seen[m.ArtifactIndex] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, m := range metrics {
		exists, err := s.exists(ctx, m.ArtifactIndex)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO backtest_metrics (`+metricsColumns+`)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, m := range metrics {
		err = batch.Append(
			int64(m.ArtifactIndex), m.SharpeRatio, m.MaxDrawdown, m.AnnualReturn, int64(m.TotalTrades),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByIndex retrieves metrics by artifact index. Returns ErrNotFound if not exists.
func (s *BacktestMetricsStore) GetByIndex(ctx context.Context, index int) (*domain.BacktestMetrics, error) {
	query := `
		SELECT ` + metricsColumns + `
		FROM backtest_metrics FINAL
		WHERE artifact_index = ?
		LIMIT 1
	`

	row := s.conn.QueryRow(ctx, query, int64(index))

	m, err := scanMetrics(row.Scan)
	if err != nil {
		return nil, storage.ErrNotFound
	}

	return m, nil
}

// GetAll retrieves all metrics records, ordered by artifact index ASC.
func (s *BacktestMetricsStore) GetAll(ctx context.Context) ([]*domain.BacktestMetrics, error) {
	query := `
		SELECT ` + metricsColumns + `
		FROM backtest_metrics FINAL
		ORDER BY artifact_index ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all backtest metrics: %w", err)
	}
	defer rows.Close()

	var result []*domain.BacktestMetrics
	for rows.Next() {
		m, err := scanMetrics(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan backtest metrics row: %w", err)
		}
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate backtest metrics rows: %w", err)
	}

	return result, nil
}

// exists checks whether a metrics row is recorded for the artifact index.
func (s *BacktestMetricsStore) exists(ctx context.Context, index int) (bool, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT count() FROM backtest_metrics FINAL WHERE artifact_index = ?
	`, int64(index))

	var count uint64
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanMetrics scans one row through the driver's strict Int64 columns.
func scanMetrics(scan func(dest ...any) error) (*domain.BacktestMetrics, error) {
	var (
		m      domain.BacktestMetrics
		index  int64
		trades int64
	)
	if err := scan(&index, &m.SharpeRatio, &m.MaxDrawdown, &m.AnnualReturn, &trades); err != nil {
		return nil, err
	}
	m.ArtifactIndex = int(index)
	m.TotalTrades = int(trades)
	return &m, nil
}
