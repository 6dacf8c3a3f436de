package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Population Audit Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Artifacts: %d | Metrics joined: %d\n\n", r.TotalArtifacts, r.MetricsJoined))

	// Duplicate groups
	sb.WriteString("## Duplicate Groups\n\n")
	if len(r.DuplicateGroups) > 0 {
		sb.WriteString(fmt.Sprintf("%d group(s) found; %d artifact(s) recommended for removal.\n\n",
			len(r.DuplicateGroups), r.ExcludedCount))
		sb.WriteString("| Members | Reference Metric | Similarity | Recommendation |\n")
		sb.WriteString("|---------|------------------|------------|----------------|\n")
		for _, g := range r.DuplicateGroups {
			sb.WriteString(fmt.Sprintf("| %s | %.8f | %.4f | %s |\n",
				joinInts(g.MemberIndices), g.ReferenceMetric, g.SimilarityScore, g.Recommendation))
		}
		sb.WriteString("\n")

		for _, g := range r.DuplicateGroups {
			if g.Diff == "" {
				continue
			}
			sb.WriteString(fmt.Sprintf("### Diff: artifacts %s\n\n", joinInts(g.MemberIndices[:2])))
			sb.WriteString("```diff\n")
			sb.WriteString(g.Diff)
			if !strings.HasSuffix(g.Diff, "\n") {
				sb.WriteString("\n")
			}
			sb.WriteString("```\n\n")
		}
	} else {
		sb.WriteString("No duplicate groups found.\n\n")
	}

	// Skipped artifacts
	if len(r.SkippedArtifacts) > 0 {
		sb.WriteString("### Skipped Artifacts\n\n")
		for _, s := range r.SkippedArtifacts {
			sb.WriteString(fmt.Sprintf("- %s\n", s))
		}
		sb.WriteString("\n")
	}

	// Diversity
	d := r.Diversity
	sb.WriteString("## Diversity\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Strategies Analyzed | %d |\n", d.TotalStrategies))
	sb.WriteString(fmt.Sprintf("| Factor Diversity | %.4f |\n", d.FactorDiversity))
	sb.WriteString(fmt.Sprintf("| Avg Correlation | %.4f |\n", d.AvgCorrelation))
	sb.WriteString(fmt.Sprintf("| Risk Diversity | %.4f |\n", d.RiskDiversity))
	sb.WriteString(fmt.Sprintf("| Diversity Score | %.2f |\n", d.DiversityScore))
	sb.WriteString(fmt.Sprintf("| Recommendation | %s |\n", d.Recommendation))
	sb.WriteString("\n")

	if d.FactorDetails != nil {
		sb.WriteString(fmt.Sprintf("Unique factors: %d | Avg factors per strategy: %.2f\n\n",
			d.FactorDetails.TotalUniqueFactors, d.FactorDetails.AvgFactorsPerStrategy))
	}

	if len(d.Warnings) > 0 {
		sb.WriteString("### Warnings\n\n")
		for _, w := range d.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", w))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}
