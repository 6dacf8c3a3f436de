// Package diversity scores how structurally, behaviorally, and risk-wise
// diverse a strategy population is, with a recommendation an operator can act
// on. The analyzer is a pure function over already-materialized source text
// and metrics; it always returns a complete, well-formed report.
package diversity

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"strategy-lab/internal/domain"
	"strategy-lab/internal/srcmodel"
)

// Score weights and thresholds.
const (
	factorWeight      = 0.5
	correlationWeight = 0.3
	riskWeight        = 0.2

	lowFactorDiversity = 0.5
	highCorrelation    = 0.8
	lowRiskDiversity   = 0.3
	sufficientScore    = 60.0
	marginalScore      = 40.0
	lowPopulationCount = 3
	zeroMeanEpsilon    = 1e-12
	neutralCorrelation = 0.5
)

// Analyzer computes diversity reports. Stateless across calls.
type Analyzer struct {
	model srcmodel.SourceModel
	log   zerolog.Logger
}

// New creates an Analyzer using the given source model.
func New(model srcmodel.SourceModel, log zerolog.Logger) *Analyzer {
	return &Analyzer{model: model, log: log}
}

// Analyze scores the population that survives the exclusion list.
//
// excludePositions index the artifacts slice, not the original population:
// an upstream de-duplicated population has non-contiguous original indices,
// and metric lookups always use artifact.Index against metricsByIndex, never
// positional indices.
func (a *Analyzer) Analyze(
	artifacts []*domain.StrategyArtifact,
	metricsByIndex map[int]*domain.BacktestMetrics,
	excludePositions []int,
) *domain.DiversityReport {
	report := &domain.DiversityReport{}

	// Step 1: filter by input-list position, carrying original indices through.
	survivors, applied := filterByPosition(artifacts, excludePositions)
	report.ExcludedIndices = applied
	report.TotalStrategies = len(survivors)

	// Step 2: minimum population.
	if len(survivors) < 2 {
		report.FactorDiversity = 0
		report.AvgCorrelation = 1
		report.RiskDiversity = 0
		report.DiversityScore = 0
		report.Recommendation = domain.PopulationInsufficient
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("insufficient strategies for diversity analysis: %d (need at least 2)", len(survivors)))
		return report
	}

	// Step 3: structural diversity over extracted factor sets.
	factorOut, details, factorWarnings := a.factorDiversity(survivors)
	report.Warnings = append(report.Warnings, factorWarnings...)
	if factorOut.failed {
		report.Warnings = append(report.Warnings, "factor diversity calculation failed: "+factorOut.reason)
		report.FactorDiversity = 0
	} else {
		report.FactorDiversity = factorOut.value
		report.FactorDetails = details
		if factorOut.value < lowFactorDiversity {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("low factor diversity: %.2f (threshold %.2f)", factorOut.value, lowFactorDiversity))
		}
	}

	// Step 4: return correlation proxy from Sharpe dispersion.
	corrOut := a.returnCorrelation(survivors, metricsByIndex)
	if corrOut.failed {
		report.Warnings = append(report.Warnings, "return correlation calculation failed: "+corrOut.reason)
		report.AvgCorrelation = neutralCorrelation
	} else {
		report.AvgCorrelation = corrOut.value
		if corrOut.value > highCorrelation {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("high return correlation: %.2f (threshold %.2f)", corrOut.value, highCorrelation))
		}
	}

	// Step 5: risk diversity from drawdown dispersion.
	riskOut := a.riskDiversity(survivors, metricsByIndex)
	if riskOut.failed {
		report.Warnings = append(report.Warnings, "risk diversity calculation failed: "+riskOut.reason)
		report.RiskDiversity = 0
	} else {
		report.RiskDiversity = riskOut.value
		if riskOut.value < lowRiskDiversity {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("low risk diversity: %.2f (threshold %.2f)", riskOut.value, lowRiskDiversity))
		}
	}

	// Step 6: weighted aggregate and recommendation.
	score := factorWeight*report.FactorDiversity +
		correlationWeight*(1-report.AvgCorrelation) +
		riskWeight*report.RiskDiversity
	report.DiversityScore = 100 * clip(score, 0, 1)

	switch {
	case report.DiversityScore >= sufficientScore:
		report.Recommendation = domain.PopulationSufficient
	case report.DiversityScore >= marginalScore:
		report.Recommendation = domain.PopulationMarginal
	default:
		report.Recommendation = domain.PopulationInsufficient
	}

	// Step 7: advisory low-count warning; does not force INSUFFICIENT.
	if len(survivors) < lowPopulationCount {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("population of %d is small; diversity estimates are unstable", len(survivors)))
	}

	a.log.Debug().
		Int("strategies", report.TotalStrategies).
		Float64("score", report.DiversityScore).
		Str("recommendation", string(report.Recommendation)).
		Msg("diversity analysis complete")

	return report
}

// filterByPosition drops artifacts whose position in the input list is marked
// excluded. Returns survivors and the applied positions, sorted ascending.
func filterByPosition(artifacts []*domain.StrategyArtifact, excludePositions []int) ([]*domain.StrategyArtifact, []int) {
	excluded := make(map[int]struct{}, len(excludePositions))
	for _, pos := range excludePositions {
		if pos >= 0 && pos < len(artifacts) {
			excluded[pos] = struct{}{}
		}
	}

	survivors := make([]*domain.StrategyArtifact, 0, len(artifacts))
	for pos, a := range artifacts {
		if _, skip := excluded[pos]; skip {
			continue
		}
		survivors = append(survivors, a)
	}

	applied := make([]int, 0, len(excluded))
	for pos := range excluded {
		applied = append(applied, pos)
	}
	sort.Ints(applied)
	return survivors, applied
}

// factorDiversity is 1 minus the mean pairwise Jaccard similarity of the
// non-empty factor sets. Extraction failures degrade to empty sets with a
// warning, never an abort.
func (a *Analyzer) factorDiversity(survivors []*domain.StrategyArtifact) (outcome, *domain.FactorDetails, []string) {
	var warnings []string

	sets := make([]domain.FactorSet, 0, len(survivors))
	for _, art := range survivors {
		fs, err := a.model.ExtractFactors(art.SourceText)
		if err != nil {
			warnings = append(warnings,
				fmt.Sprintf("factor extraction failed for artifact %d: %v", art.Index, err))
			a.log.Warn().Int("index", art.Index).Err(err).Msg("factor extraction failed")
			fs = domain.NewFactorSet()
		}
		sets = append(sets, fs)
	}

	unique := domain.NewFactorSet()
	totalFactors := 0
	nonEmpty := make([]domain.FactorSet, 0, len(sets))
	for _, fs := range sets {
		totalFactors += len(fs)
		for _, id := range fs.Sorted() {
			unique.Add(id)
		}
		if len(fs) > 0 {
			nonEmpty = append(nonEmpty, fs)
		}
	}
	details := &domain.FactorDetails{
		TotalUniqueFactors:    len(unique),
		AvgFactorsPerStrategy: float64(totalFactors) / float64(len(sets)),
	}

	if len(nonEmpty) < 2 {
		return calcOK(0), details, warnings
	}

	simSum := 0.0
	pairs := 0
	for i := 0; i < len(nonEmpty); i++ {
		for j := i + 1; j < len(nonEmpty); j++ {
			simSum += nonEmpty[i].Jaccard(nonEmpty[j])
			pairs++
		}
	}
	diversity := clip(1-simSum/float64(pairs), 0, 1)
	return finite("factor diversity", diversity), details, warnings
}

// returnCorrelation proxies pairwise return correlation with the coefficient
// of variation of Sharpe ratios: tightly clustered Sharpe suggests the
// strategies behave alike. Neutral 0.5 when too few values or a zero mean.
func (a *Analyzer) returnCorrelation(survivors []*domain.StrategyArtifact, metricsByIndex map[int]*domain.BacktestMetrics) outcome {
	values := make([]float64, 0, len(survivors))
	for _, art := range survivors {
		if v, ok := metricsByIndex[art.Index].Sharpe(); ok {
			values = append(values, v)
		}
	}

	mean := computeMean(values)
	if len(values) < 2 || abs(mean) < zeroMeanEpsilon {
		return calcOK(neutralCorrelation)
	}

	cv := computeStddev(values, mean) / abs(mean)
	return finite("return correlation", clip(1/(1+cv), 0, 1))
}

// riskDiversity is the coefficient of variation of drawdown magnitudes,
// clipped to [0,2] and mapped onto [0,1].
func (a *Analyzer) riskDiversity(survivors []*domain.StrategyArtifact, metricsByIndex map[int]*domain.BacktestMetrics) outcome {
	values := make([]float64, 0, len(survivors))
	for _, art := range survivors {
		if v, ok := metricsByIndex[art.Index].DrawdownMagnitude(); ok {
			values = append(values, v)
		}
	}

	mean := computeMean(values)
	if len(values) < 2 || mean < zeroMeanEpsilon {
		return calcOK(0)
	}

	cv := computeStddev(values, mean) / mean
	return finite("risk diversity", clip(cv, 0, 2)/2)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
