// Package orchestrator provides population audit orchestration.
// It coordinates: artifact loading → metrics join → duplicate detection →
// exclusion filtering → diversity analysis.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"strategy-lab/internal/dedup"
	"strategy-lab/internal/diversity"
	"strategy-lab/internal/domain"
	"strategy-lab/internal/srcmodel"
	"strategy-lab/internal/storage"
)

// Orchestrator coordinates the audit pipeline execution.
type Orchestrator struct {
	artifactStore storage.ArtifactStore
	metricsStore  storage.BacktestMetricsStore

	detector *dedup.Detector
	analyzer *diversity.Analyzer

	keepDuplicates bool
	log            zerolog.Logger
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	ArtifactStore storage.ArtifactStore
	MetricsStore  storage.BacktestMetricsStore

	// Source model for the strategy language; defaults to GoSource.
	Model srcmodel.SourceModel

	// Detection tolerances; zero value means DefaultConfig.
	DetectorConfig *dedup.Config

	// KeepDuplicates skips the exclusion filter before diversity analysis.
	KeepDuplicates bool

	Logger zerolog.Logger
}

// New creates a new Orchestrator. Returns dedup.ErrInvalidConfig for
// out-of-range detection tolerances.
func New(opts Options) (*Orchestrator, error) {
	model := opts.Model
	if model == nil {
		model = srcmodel.NewGoSource()
	}
	cfg := dedup.DefaultConfig()
	if opts.DetectorConfig != nil {
		cfg = *opts.DetectorConfig
	}

	detector, err := dedup.New(model, cfg, opts.Logger)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		artifactStore:  opts.ArtifactStore,
		metricsStore:   opts.MetricsStore,
		detector:       detector,
		analyzer:       diversity.New(model, opts.Logger),
		keepDuplicates: opts.KeepDuplicates,
		log:            opts.Logger,
	}, nil
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	ArtifactsLoaded   int
	MetricsJoined     int
	DuplicateGroups   []*domain.DuplicateGroup
	ExcludedPositions []int
	Skipped           []string
	Diversity         *domain.DiversityReport
}

// Run executes the full audit pipeline.
// Phases:
//  1. Load artifacts
//  2. Join backtest metrics by artifact index
//  3. Detect duplicates
//  4. Analyze diversity over the surviving population
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	o.log.Info().Msg("Phase 1: loading artifacts")
	artifacts, err := o.artifactStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load artifacts) failed: %w", err)
	}
	result.ArtifactsLoaded = len(artifacts)
	o.log.Info().Int("artifacts", len(artifacts)).Msg("artifacts loaded")

	if len(artifacts) == 0 {
		result.Diversity = o.analyzer.Analyze(nil, nil, nil)
		return result, nil
	}

	o.log.Info().Msg("Phase 2: joining backtest metrics")
	metricsByIndex, err := o.joinMetrics(ctx, artifacts)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (join metrics) failed: %w", err)
	}
	result.MetricsJoined = len(metricsByIndex)
	o.log.Info().Int("metrics", len(metricsByIndex)).Msg("metrics joined")

	o.log.Info().Msg("Phase 3: detecting duplicates")
	detection := o.detector.Detect(artifacts)
	result.DuplicateGroups = detection.Groups
	result.Skipped = detection.Skipped
	o.log.Info().
		Int("groups", len(detection.Groups)).
		Int("excluded", len(detection.ExcludePositions)).
		Msg("duplicate detection complete")

	exclude := detection.ExcludePositions
	if o.keepDuplicates {
		exclude = nil
	}
	result.ExcludedPositions = exclude

	o.log.Info().Msg("Phase 4: analyzing diversity")
	result.Diversity = o.analyzer.Analyze(artifacts, metricsByIndex, exclude)
	o.log.Info().
		Float64("score", result.Diversity.DiversityScore).
		Str("recommendation", string(result.Diversity.Recommendation)).
		Msg("diversity analysis complete")

	return result, nil
}

// joinMetrics loads all metrics and attaches each record to its artifact.
// Artifacts with no recorded backtest keep a nil Metrics field; the analysis
// fallbacks handle absence.
func (o *Orchestrator) joinMetrics(ctx context.Context, artifacts []*domain.StrategyArtifact) (map[int]*domain.BacktestMetrics, error) {
	records, err := o.metricsStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	byIndex := make(map[int]*domain.BacktestMetrics, len(records))
	for _, m := range records {
		byIndex[m.ArtifactIndex] = m
	}

	for _, a := range artifacts {
		if m, ok := byIndex[a.Index]; ok {
			a.Metrics = m
		} else {
			o.log.Debug().Int("index", a.Index).Msg("no backtest metrics recorded for artifact")
		}
	}

	return byIndex, nil
}
