package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"strategy-lab/internal/domain"
	"strategy-lab/internal/storage/memory"
)

// fixtureManifest describes the contents of a fixtures directory:
// generated strategy source files plus their recorded backtest metrics.
type fixtureManifest struct {
	Artifacts []fixtureArtifact `json:"artifacts"`
	Metrics   []fixtureMetrics  `json:"metrics"`
}

type fixtureArtifact struct {
	Index            int    `json:"index"`
	File             string `json:"file"`
	Generation       int    `json:"generation"`
	ValidationPassed bool   `json:"validation_passed"`
}

type fixtureMetrics struct {
	Index        int      `json:"index"`
	SharpeRatio  *float64 `json:"sharpe_ratio"`
	MaxDrawdown  *float64 `json:"max_drawdown"`
	AnnualReturn *float64 `json:"annual_return"`
	TotalTrades  int      `json:"total_trades"`
}

// loadFixtures hydrates the in-memory stores from dir/manifest.json and the
// strategy source files it references.
func loadFixtures(ctx context.Context, dir string, artifacts *memory.ArtifactStore, metrics *memory.BacktestMetricsStore) error {
	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	var manifest fixtureManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}

	for _, fa := range manifest.Artifacts {
		source, err := os.ReadFile(filepath.Join(dir, fa.File))
		if err != nil {
			return fmt.Errorf("read strategy source %s: %w", fa.File, err)
		}
		err = artifacts.Insert(ctx, &domain.StrategyArtifact{
			Index:            fa.Index,
			SourceText:       string(source),
			Generation:       fa.Generation,
			ValidationPassed: fa.ValidationPassed,
		})
		if err != nil {
			return fmt.Errorf("insert artifact %d: %w", fa.Index, err)
		}
	}

	for _, fm := range manifest.Metrics {
		err := metrics.Insert(ctx, &domain.BacktestMetrics{
			ArtifactIndex: fm.Index,
			SharpeRatio:   fm.SharpeRatio,
			MaxDrawdown:   fm.MaxDrawdown,
			AnnualReturn:  fm.AnnualReturn,
			TotalTrades:   fm.TotalTrades,
		})
		if err != nil {
			return fmt.Errorf("insert metrics for artifact %d: %w", fm.Index, err)
		}
	}

	return nil
}
