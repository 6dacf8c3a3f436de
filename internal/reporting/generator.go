package reporting

import (
	"time"

	"strategy-lab/internal/orchestrator"
)

// Generator produces reports from audit results.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete audit report from an orchestrator run.
func (g *Generator) Generate(result *orchestrator.RunResult) *Report {
	report := &Report{
		GeneratedAt:      g.now(),
		TotalArtifacts:   result.ArtifactsLoaded,
		MetricsJoined:    result.MetricsJoined,
		ExcludedCount:    len(result.ExcludedPositions),
		SkippedArtifacts: result.Skipped,
	}

	for _, group := range result.DuplicateGroups {
		report.DuplicateGroups = append(report.DuplicateGroups, DuplicateGroupRow{
			MemberIndices:   group.MemberIndices(),
			ReferenceMetric: group.ReferenceMetric,
			SimilarityScore: group.SimilarityScore,
			Recommendation:  group.Recommendation,
			Diff:            group.Diff,
		})
	}

	if d := result.Diversity; d != nil {
		report.Diversity = DiversitySection{
			TotalStrategies: d.TotalStrategies,
			ExcludedIndices: d.ExcludedIndices,
			FactorDiversity: d.FactorDiversity,
			AvgCorrelation:  d.AvgCorrelation,
			RiskDiversity:   d.RiskDiversity,
			DiversityScore:  d.DiversityScore,
			Warnings:        d.Warnings,
			Recommendation:  d.Recommendation,
			FactorDetails:   d.FactorDetails,
		}
	}

	return report
}
