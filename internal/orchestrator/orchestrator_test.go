package orchestrator

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy-lab/internal/dedup"
	"strategy-lab/internal/domain"
	"strategy-lab/internal/storage/memory"
)

const meanReversionStrategy = `package strategy

func Signal(data *Frame) float64 {
	price := data.Get("close")
	mean := data.Indicator("sma_20")
	if price < mean {
		return 1
	}
	return -1
}
`

// meanReversionStrategy with renamed variables.
const meanReversionStrategyRenamed = `package strategy

func Signal(d *Frame) float64 {
	p := d.Get("close")
	m := d.Indicator("sma_20")
	if p < m {
		return 1
	}
	return -1
}
`

const breakoutStrategy = `package strategy

func Signal(data *Frame) float64 {
	high := data.Get("high")
	vol := data.Get("volume")
	band := data.Indicator("atr_14")
	if high > band && vol > 500 {
		return 1
	}
	return 0
}
`

func seedStores(t *testing.T) (*memory.ArtifactStore, *memory.BacktestMetricsStore) {
	t.Helper()
	ctx := context.Background()

	artifacts := memory.NewArtifactStore()
	metrics := memory.NewBacktestMetricsStore()

	sharpeA, sharpeB, sharpeC := 1.20, 1.20, 0.60
	ddA, ddB, ddC := -0.10, -0.10, -0.35

	seed := []struct {
		artifact *domain.StrategyArtifact
		sharpe   *float64
		drawdown *float64
	}{
		{&domain.StrategyArtifact{Index: 0, SourceText: meanReversionStrategy, ValidationPassed: true}, &sharpeA, &ddA},
		{&domain.StrategyArtifact{Index: 1, SourceText: meanReversionStrategyRenamed}, &sharpeB, &ddB},
		{&domain.StrategyArtifact{Index: 2, SourceText: breakoutStrategy, ValidationPassed: true}, &sharpeC, &ddC},
	}

	for _, s := range seed {
		require.NoError(t, artifacts.Insert(ctx, s.artifact))
		require.NoError(t, metrics.Insert(ctx, &domain.BacktestMetrics{
			ArtifactIndex: s.artifact.Index,
			SharpeRatio:   s.sharpe,
			MaxDrawdown:   s.drawdown,
		}))
	}

	return artifacts, metrics
}

func TestRun_EndToEnd(t *testing.T) {
	artifacts, metrics := seedStores(t)

	orch, err := New(Options{
		ArtifactStore: artifacts,
		MetricsStore:  metrics,
		Logger:        zerolog.Nop(),
	})
	require.NoError(t, err)

	result, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.ArtifactsLoaded)
	assert.Equal(t, 3, result.MetricsJoined)

	// The renamed pair is one duplicate group; its non-first member is excluded.
	require.Len(t, result.DuplicateGroups, 1)
	group := result.DuplicateGroups[0]
	assert.Equal(t, []int{0, 1}, group.MemberIndices())
	assert.Equal(t, domain.GroupKeepFirst, group.Recommendation)
	assert.Equal(t, []int{1}, result.ExcludedPositions)

	require.NotNil(t, result.Diversity)
	assert.Equal(t, 2, result.Diversity.TotalStrategies)
	assert.Equal(t, []int{1}, result.Diversity.ExcludedIndices)
}

func TestRun_KeepDuplicates(t *testing.T) {
	artifacts, metrics := seedStores(t)

	orch, err := New(Options{
		ArtifactStore:  artifacts,
		MetricsStore:   metrics,
		KeepDuplicates: true,
		Logger:         zerolog.Nop(),
	})
	require.NoError(t, err)

	result, err := orch.Run(context.Background())
	require.NoError(t, err)

	// Groups are still reported; the exclusion filter is skipped.
	require.Len(t, result.DuplicateGroups, 1)
	assert.Empty(t, result.ExcludedPositions)
	assert.Equal(t, 3, result.Diversity.TotalStrategies)
}

func TestRun_EmptyStore(t *testing.T) {
	orch, err := New(Options{
		ArtifactStore: memory.NewArtifactStore(),
		MetricsStore:  memory.NewBacktestMetricsStore(),
		Logger:        zerolog.Nop(),
	})
	require.NoError(t, err)

	result, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.ArtifactsLoaded)
	assert.Empty(t, result.DuplicateGroups)
	require.NotNil(t, result.Diversity)
	assert.Equal(t, domain.PopulationInsufficient, result.Diversity.Recommendation)
}

func TestRun_ArtifactWithoutMetricsSurvives(t *testing.T) {
	ctx := context.Background()
	artifacts := memory.NewArtifactStore()
	metrics := memory.NewBacktestMetricsStore()

	require.NoError(t, artifacts.Insert(ctx, &domain.StrategyArtifact{Index: 0, SourceText: meanReversionStrategy}))
	require.NoError(t, artifacts.Insert(ctx, &domain.StrategyArtifact{Index: 1, SourceText: breakoutStrategy}))

	orch, err := New(Options{
		ArtifactStore: artifacts,
		MetricsStore:  metrics,
		Logger:        zerolog.Nop(),
	})
	require.NoError(t, err)

	result, err := orch.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, result.ArtifactsLoaded)
	assert.Equal(t, 0, result.MetricsJoined)
	// No metrics means no duplicate candidates, only skips.
	assert.Empty(t, result.DuplicateGroups)
	assert.Len(t, result.Skipped, 2)
	assert.Equal(t, 2, result.Diversity.TotalStrategies)
}

func TestNew_InvalidDetectorConfig(t *testing.T) {
	cfg := dedup.Config{MetricTolerance: -1, SimilarityThreshold: 0.95}
	_, err := New(Options{
		ArtifactStore:  memory.NewArtifactStore(),
		MetricsStore:   memory.NewBacktestMetricsStore(),
		DetectorConfig: &cfg,
		Logger:         zerolog.Nop(),
	})
	assert.ErrorIs(t, err, dedup.ErrInvalidConfig)
}
