package reporting

import (
	"time"

	"strategy-lab/internal/domain"
)

// Report represents the population audit report structure.
type Report struct {
	// Metadata
	GeneratedAt    time.Time
	TotalArtifacts int
	MetricsJoined  int

	// Duplicate detection
	DuplicateGroups  []DuplicateGroupRow
	ExcludedCount    int
	SkippedArtifacts []string

	// Diversity
	Diversity DiversitySection
}

// DuplicateGroupRow represents one duplicate group in the report.
type DuplicateGroupRow struct {
	MemberIndices   []int
	ReferenceMetric float64
	SimilarityScore float64
	Recommendation  domain.GroupRecommendation
	Diff            string
}

// DiversitySection mirrors the DiversityReport fields for rendering.
type DiversitySection struct {
	TotalStrategies int
	ExcludedIndices []int
	FactorDiversity float64
	AvgCorrelation  float64
	RiskDiversity   float64
	DiversityScore  float64
	Warnings        []string
	Recommendation  domain.PopulationRecommendation
	FactorDetails   *domain.FactorDetails
}
