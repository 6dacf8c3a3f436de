package domain

// GroupRecommendation is the action recommended for a duplicate group.
type GroupRecommendation string

const (
	// GroupKeepFirst means keep the first member and drop the rest.
	GroupKeepFirst GroupRecommendation = "KEEP_FIRST"
	// GroupReview means no member passed validation; a human should decide.
	GroupReview GroupRecommendation = "REVIEW"
	// GroupNotDuplicate means the group has fewer than two members.
	// Such groups are never emitted.
	GroupNotDuplicate GroupRecommendation = "NOT_DUPLICATE"
)

// DuplicateGroup is a set of artifacts judged to be the same strategy:
// near-equal recorded performance and near-identical normalized source.
type DuplicateGroup struct {
	ReferenceMetric float64             // scalar metric shared by the group within tolerance
	Members         []*StrategyArtifact // insertion order = first-seen input order
	SimilarityScore float64             // similarity of the first matched pair
	Diff            string              // unified diff of the first two members' raw source
	Recommendation  GroupRecommendation
}

// NewDuplicateGroup constructs a group and derives its recommendation.
// The recommendation is derived once here and never set independently.
func NewDuplicateGroup(referenceMetric float64, members []*StrategyArtifact, similarity float64, diff string) *DuplicateGroup {
	return &DuplicateGroup{
		ReferenceMetric: referenceMetric,
		Members:         members,
		SimilarityScore: similarity,
		Diff:            diff,
		Recommendation:  deriveRecommendation(members),
	}
}

func deriveRecommendation(members []*StrategyArtifact) GroupRecommendation {
	if len(members) < 2 {
		return GroupNotDuplicate
	}
	for _, m := range members {
		if m.ValidationPassed {
			return GroupKeepFirst
		}
	}
	return GroupReview
}

// MemberIndices returns the original artifact indices in member order.
func (g *DuplicateGroup) MemberIndices() []int {
	indices := make([]int, len(g.Members))
	for i, m := range g.Members {
		indices[i] = m.Index
	}
	return indices
}

// PopulationRecommendation is the operator-facing verdict on population diversity.
type PopulationRecommendation string

const (
	PopulationSufficient   PopulationRecommendation = "SUFFICIENT"
	PopulationMarginal     PopulationRecommendation = "MARGINAL"
	PopulationInsufficient PopulationRecommendation = "INSUFFICIENT"
)

// FactorDetails summarizes factor usage across the analyzed population.
type FactorDetails struct {
	TotalUniqueFactors    int
	AvgFactorsPerStrategy float64
}

// DiversityReport scores how diverse a strategy population is, structurally,
// in returns, and in risk profile. Value object: constructed once per analysis
// call and never mutated afterward.
type DiversityReport struct {
	TotalStrategies int   // artifacts remaining after exclusion
	ExcludedIndices []int // input-list positions that were excluded

	FactorDiversity float64 // [0,1], higher is more diverse
	AvgCorrelation  float64 // [0,1], lower is more diverse
	RiskDiversity   float64 // [0,1], higher is more diverse
	DiversityScore  float64 // [0,100] weighted aggregate

	Warnings       []string
	Recommendation PopulationRecommendation
	FactorDetails  *FactorDetails
}
