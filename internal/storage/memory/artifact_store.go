package memory

import (
	"context"
	"sort"
	"sync"

	"strategy-lab/internal/domain"
	"strategy-lab/internal/storage"
)

// ArtifactStore is an in-memory implementation of storage.ArtifactStore.
type ArtifactStore struct {
	mu   sync.RWMutex
	data map[int]*domain.StrategyArtifact // keyed by artifact index
}

// NewArtifactStore creates a new in-memory artifact store.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{
		data: make(map[int]*domain.StrategyArtifact),
	}
}

// Compile-time interface check.
var _ storage.ArtifactStore = (*ArtifactStore)(nil)

// Insert adds a new artifact. Returns ErrDuplicateKey if the index exists.
func (s *ArtifactStore) Insert(_ context.Context, a *domain.StrategyArtifact) error {
	if a == nil || a.Index < 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.Index]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	artifactCopy := *a
	s.data[a.Index] = &artifactCopy
	return nil
}

// GetByIndex retrieves an artifact by its index. Returns ErrNotFound if not exists.
func (s *ArtifactStore) GetByIndex(_ context.Context, index int) (*domain.StrategyArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[index]
	if !exists {
		return nil, storage.ErrNotFound
	}

	artifactCopy := *a
	return &artifactCopy, nil
}

// GetAll retrieves all artifacts, ordered by index ASC.
func (s *ArtifactStore) GetAll(_ context.Context) ([]*domain.StrategyArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(*domain.StrategyArtifact) bool { return true }), nil
}

// GetByGeneration retrieves all artifacts of a generation, ordered by index ASC.
func (s *ArtifactStore) GetByGeneration(_ context.Context, generation int) ([]*domain.StrategyArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(a *domain.StrategyArtifact) bool { return a.Generation == generation }), nil
}

// GetValidated retrieves all artifacts that passed validation, ordered by index ASC.
func (s *ArtifactStore) GetValidated(_ context.Context) ([]*domain.StrategyArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(a *domain.StrategyArtifact) bool { return a.ValidationPassed }), nil
}

// collect copies matching artifacts sorted by index ASC. Caller holds the lock.
func (s *ArtifactStore) collect(match func(*domain.StrategyArtifact) bool) []*domain.StrategyArtifact {
	var result []*domain.StrategyArtifact
	for _, a := range s.data {
		if match(a) {
			artifactCopy := *a
			result = append(result, &artifactCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Index < result[j].Index
	})
	return result
}
