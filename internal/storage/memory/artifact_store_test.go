package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy-lab/internal/domain"
	"strategy-lab/internal/storage"
)

func TestArtifactStore_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewArtifactStore()

	artifact := &domain.StrategyArtifact{
		Index:            7,
		SourceText:       "package strategy",
		Generation:       2,
		ValidationPassed: true,
		CreatedAt:        1700000000000,
	}
	require.NoError(t, store.Insert(ctx, artifact))

	got, err := store.GetByIndex(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, artifact, got)
}

func TestArtifactStore_InsertDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewArtifactStore()

	require.NoError(t, store.Insert(ctx, &domain.StrategyArtifact{Index: 1}))
	err := store.Insert(ctx, &domain.StrategyArtifact{Index: 1})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestArtifactStore_InsertInvalid(t *testing.T) {
	ctx := context.Background()
	store := NewArtifactStore()

	assert.ErrorIs(t, store.Insert(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(ctx, &domain.StrategyArtifact{Index: -1}), storage.ErrInvalidInput)
}

func TestArtifactStore_GetByIndexNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewArtifactStore()

	_, err := store.GetByIndex(ctx, 42)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestArtifactStore_GetAllOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewArtifactStore()

	for _, idx := range []int{23, 5, 18, 12} {
		require.NoError(t, store.Insert(ctx, &domain.StrategyArtifact{Index: idx}))
	}

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []int{5, 12, 18, 23}, indices(all))
}

func TestArtifactStore_GetByGeneration(t *testing.T) {
	ctx := context.Background()
	store := NewArtifactStore()

	require.NoError(t, store.Insert(ctx, &domain.StrategyArtifact{Index: 1, Generation: 1}))
	require.NoError(t, store.Insert(ctx, &domain.StrategyArtifact{Index: 2, Generation: 2}))
	require.NoError(t, store.Insert(ctx, &domain.StrategyArtifact{Index: 3, Generation: 2}))

	gen2, err := store.GetByGeneration(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, indices(gen2))

	gen9, err := store.GetByGeneration(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, gen9)
}

func TestArtifactStore_GetValidated(t *testing.T) {
	ctx := context.Background()
	store := NewArtifactStore()

	require.NoError(t, store.Insert(ctx, &domain.StrategyArtifact{Index: 1, ValidationPassed: true}))
	require.NoError(t, store.Insert(ctx, &domain.StrategyArtifact{Index: 2}))
	require.NoError(t, store.Insert(ctx, &domain.StrategyArtifact{Index: 3, ValidationPassed: true}))

	validated, err := store.GetValidated(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, indices(validated))
}

func TestArtifactStore_CopiesPreventMutation(t *testing.T) {
	ctx := context.Background()
	store := NewArtifactStore()

	original := &domain.StrategyArtifact{Index: 1, SourceText: "original"}
	require.NoError(t, store.Insert(ctx, original))

	original.SourceText = "mutated after insert"

	got, err := store.GetByIndex(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "original", got.SourceText)

	got.SourceText = "mutated after read"
	again, err := store.GetByIndex(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "original", again.SourceText)
}

func indices(artifacts []*domain.StrategyArtifact) []int {
	out := make([]int, len(artifacts))
	for i, a := range artifacts {
		out[i] = a.Index
	}
	return out
}
