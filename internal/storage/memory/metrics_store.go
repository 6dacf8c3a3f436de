package memory

import (
	"context"
	"sort"
	"sync"

	"strategy-lab/internal/domain"
	"strategy-lab/internal/storage"
)

// BacktestMetricsStore is an in-memory implementation of storage.BacktestMetricsStore.
type BacktestMetricsStore struct {
	mu   sync.RWMutex
	data map[int]*domain.BacktestMetrics // keyed by artifact index
}

// NewBacktestMetricsStore creates a new in-memory metrics store.
func NewBacktestMetricsStore() *BacktestMetricsStore {
	return &BacktestMetricsStore{
		data: make(map[int]*domain.BacktestMetrics),
	}
}

// Compile-time interface check.
var _ storage.BacktestMetricsStore = (*BacktestMetricsStore)(nil)

// Insert adds a metrics record. Returns ErrDuplicateKey if the artifact index exists.
func (s *BacktestMetricsStore) Insert(_ context.Context, m *domain.BacktestMetrics) error {
	if m == nil || m.ArtifactIndex < 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[m.ArtifactIndex]; exists {
		return storage.ErrDuplicateKey
	}

	metricsCopy := *m
	s.data[m.ArtifactIndex] = &metricsCopy
	return nil
}

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *BacktestMetricsStore) InsertBulk(_ context.Context, metrics []*domain.BacktestMetrics) error {
	if len(metrics) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	seen := make(map[int]struct{}, len(metrics))
	for _, m := range metrics {
		if m == nil || m.ArtifactIndex < 0 {
			return storage.ErrInvalidInput
		}
		if _, dup := seen[m.ArtifactIndex]; dup {
			return storage.ErrDuplicateKey
		}
		if _, exists := s.data[m.ArtifactIndex]; exists {
			return storage.ErrDuplicateKey
		}
		seen[m.ArtifactIndex] = struct{}{}
	}

	for _, m := range metrics {
		metricsCopy := *m
		s.data[m.ArtifactIndex] = &metricsCopy
	}
	return nil
}

// GetByIndex retrieves metrics by artifact index. Returns ErrNotFound if not exists.
func (s *BacktestMetricsStore) GetByIndex(_ context.Context, index int) (*domain.BacktestMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.data[index]
	if !exists {
		return nil, storage.ErrNotFound
	}

	metricsCopy := *m
	return &metricsCopy, nil
}

// GetAll retrieves all metrics records, ordered by artifact index ASC.
func (s *BacktestMetricsStore) GetAll(_ context.Context) ([]*domain.BacktestMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.BacktestMetrics, 0, len(s.data))
	for _, m := range s.data {
		metricsCopy := *m
		result = append(result, &metricsCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ArtifactIndex < result[j].ArtifactIndex
	})
	return result, nil
}
