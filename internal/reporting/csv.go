package reporting

import (
	"fmt"
	"strings"
)

// RenderDuplicatesCSV renders duplicate groups as CSV string.
func RenderDuplicatesCSV(groups []DuplicateGroupRow) string {
	var sb strings.Builder

	sb.WriteString("members,reference_metric,similarity_score,recommendation\n")

	for _, g := range groups {
		members := make([]string, len(g.MemberIndices))
		for i, idx := range g.MemberIndices {
			members[i] = fmt.Sprintf("%d", idx)
		}
		sb.WriteString(fmt.Sprintf("%s,%.10f,%.6f,%s\n",
			strings.Join(members, ";"),
			g.ReferenceMetric,
			g.SimilarityScore,
			g.Recommendation,
		))
	}

	return sb.String()
}

// RenderDiversityCSV renders the diversity section as a one-row CSV string.
func RenderDiversityCSV(d DiversitySection) string {
	var sb strings.Builder

	sb.WriteString("total_strategies,factor_diversity,avg_correlation,risk_diversity,diversity_score,recommendation\n")
	sb.WriteString(fmt.Sprintf("%d,%.6f,%.6f,%.6f,%.2f,%s\n",
		d.TotalStrategies,
		d.FactorDiversity,
		d.AvgCorrelation,
		d.RiskDiversity,
		d.DiversityScore,
		d.Recommendation,
	))

	return sb.String()
}
