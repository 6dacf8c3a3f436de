// Package main provides the population audit entry point.
// Executes: artifact loading → duplicate detection → diversity analysis → reporting.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"strategy-lab/internal/config"
	"strategy-lab/internal/dedup"
	"strategy-lab/internal/orchestrator"
	"strategy-lab/internal/reporting"
	"strategy-lab/internal/storage"
	chstore "strategy-lab/internal/storage/clickhouse"
	"strategy-lab/internal/storage/memory"
	"strategy-lab/internal/storage/migrations"
	pgstore "strategy-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (defaults apply when empty)")
	outputDir := flag.String("output-dir", "", "Output directory override")
	fixturesDir := flag.String("fixtures", "", "Fixtures directory override for in-memory stores")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load config")
		}
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *fixturesDir != "" {
		cfg.Storage.FixturesDir = *fixturesDir
	}

	// Context cancelled on shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	artifactStore, metricsStore, closeStores, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open stores")
	}
	defer closeStores()

	detectorCfg := dedup.Config{
		MetricTolerance:     cfg.Detector.MetricTolerance,
		SimilarityThreshold: cfg.Detector.SimilarityThreshold,
	}
	orch, err := orchestrator.New(orchestrator.Options{
		ArtifactStore:  artifactStore,
		MetricsStore:   metricsStore,
		DetectorConfig: &detectorCfg,
		KeepDuplicates: cfg.Detector.KeepDuplicates,
		Logger:         log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create orchestrator")
	}

	result, err := orch.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("audit pipeline failed")
	}

	report := reporting.NewGenerator().Generate(result)
	if err := writeReports(cfg.Output.Dir, report); err != nil {
		log.Fatal().Err(err).Msg("write reports")
	}

	log.Info().
		Int("artifacts", result.ArtifactsLoaded).
		Int("duplicate_groups", len(result.DuplicateGroups)).
		Float64("diversity_score", result.Diversity.DiversityScore).
		Str("recommendation", string(result.Diversity.Recommendation)).
		Msg("audit complete")

	fmt.Printf("Audit completed:\n")
	fmt.Printf("  - %s\n", filepath.Join(cfg.Output.Dir, "REPORT_AUDIT.md"))
	fmt.Printf("  - %s\n", filepath.Join(cfg.Output.Dir, "duplicate_groups.csv"))
	fmt.Printf("  - %s\n", filepath.Join(cfg.Output.Dir, "diversity.csv"))
}

// openStores selects backing stores from configuration: PostgreSQL and
// ClickHouse when DSNs are set, otherwise in-memory stores hydrated from the
// fixtures directory.
func openStores(ctx context.Context, cfg config.Config, log zerolog.Logger) (storage.ArtifactStore, storage.BacktestMetricsStore, func(), error) {
	noop := func() {}

	if cfg.Storage.PostgresDSN == "" && cfg.Storage.ClickhouseDSN == "" {
		artifacts := memory.NewArtifactStore()
		metrics := memory.NewBacktestMetricsStore()
		if cfg.Storage.FixturesDir != "" {
			if err := loadFixtures(ctx, cfg.Storage.FixturesDir, artifacts, metrics); err != nil {
				return nil, nil, noop, fmt.Errorf("load fixtures: %w", err)
			}
			log.Info().Str("dir", cfg.Storage.FixturesDir).Msg("fixtures loaded into memory stores")
		}
		return artifacts, metrics, noop, nil
	}

	if cfg.Storage.PostgresDSN == "" || cfg.Storage.ClickhouseDSN == "" {
		return nil, nil, noop, fmt.Errorf("postgres_dsn and clickhouse_dsn must both be set for database-backed runs")
	}

	pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, nil, noop, err
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, noop, err
	}

	conn, err := chstore.NewConn(ctx, cfg.Storage.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, noop, err
	}
	if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
		pool.Close()
		conn.Close()
		return nil, nil, noop, err
	}

	cleanup := func() {
		pool.Close()
		if err := conn.Close(); err != nil {
			log.Warn().Err(err).Msg("close clickhouse connection")
		}
	}
	return pgstore.NewArtifactStore(pool), chstore.NewBacktestMetricsStore(conn), cleanup, nil
}

// writeReports renders and writes all report files.
func writeReports(dir string, report *reporting.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	files := map[string]string{
		"REPORT_AUDIT.md":      reporting.RenderMarkdown(report),
		"duplicate_groups.csv": reporting.RenderDuplicatesCSV(report.DuplicateGroups),
		"diversity.csv":        reporting.RenderDiversityCSV(report.Diversity),
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}
