// Package dedup finds artifacts that are functionally the same strategy:
// near-identical code producing near-identical recorded performance.
package dedup

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"strategy-lab/internal/domain"
	"strategy-lab/internal/srcmodel"
)

// ErrInvalidConfig is returned by New for out-of-range tolerances.
// Configuration errors indicate programmer error and fail eagerly.
var ErrInvalidConfig = errors.New("invalid detector configuration")

// Config holds detection tolerances, fixed at construction time.
type Config struct {
	// MetricTolerance is the maximum absolute difference between two scalar
	// metric values for them to land in the same cluster.
	MetricTolerance float64

	// SimilarityThreshold is the minimum normalized-source similarity ratio
	// to call two artifacts duplicates.
	SimilarityThreshold float64
}

// DefaultConfig returns the standard tolerances.
func DefaultConfig() Config {
	return Config{
		MetricTolerance:     1e-8,
		SimilarityThreshold: 0.95,
	}
}

func (c Config) validate() error {
	if c.MetricTolerance < 0 || math.IsNaN(c.MetricTolerance) {
		return fmt.Errorf("%w: metric tolerance %v must be >= 0", ErrInvalidConfig, c.MetricTolerance)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 || math.IsNaN(c.SimilarityThreshold) {
		return fmt.Errorf("%w: similarity threshold %v must be in [0,1]", ErrInvalidConfig, c.SimilarityThreshold)
	}
	return nil
}

// MetricFunc extracts the clustering metric from an artifact.
// The second return reports whether the metric is present.
type MetricFunc func(*domain.StrategyArtifact) (float64, bool)

// SharpeMetric is the conventional clustering metric.
func SharpeMetric(a *domain.StrategyArtifact) (float64, bool) {
	return a.Metrics.Sharpe()
}

// Detector groups artifacts by near-equal performance and near-identical
// normalized source. Stateless across calls.
type Detector struct {
	cfg    Config
	model  srcmodel.SourceModel
	metric MetricFunc
	log    zerolog.Logger
}

// New creates a Detector. Returns ErrInvalidConfig for out-of-range tolerances.
func New(model srcmodel.SourceModel, cfg Config, log zerolog.Logger) (*Detector, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Detector{
		cfg:    cfg,
		model:  model,
		metric: SharpeMetric,
		log:    log,
	}, nil
}

// WithMetric replaces the clustering metric. Clustering is metric-agnostic.
func (d *Detector) WithMetric(fn MetricFunc) *Detector {
	d.metric = fn
	return d
}

// Result contains the emitted duplicate groups and the exclusion list.
type Result struct {
	// Groups in emission order (first-seen input order of their leaders).
	Groups []*domain.DuplicateGroup

	// ExcludePositions are input-list positions of non-first group members,
	// the candidates for removal. Positions index the Detect input slice,
	// not the original store indices.
	ExcludePositions []int

	// Skipped describes artifacts left out of the candidate set
	// (missing metric, unparseable source).
	Skipped []string
}

// candidate is one artifact admitted to clustering.
type candidate struct {
	pos        int // position in the input slice
	artifact   *domain.StrategyArtifact
	value      float64
	normalized string
}

// cluster groups candidates whose metric is within tolerance of the
// representative. The representative is fixed at the first member's value and
// never recomputed, keeping grouping deterministic.
type cluster struct {
	rep     float64
	members []*candidate
}

// Detect runs the two-stage algorithm once over the input population.
// Per-artifact failures never abort detection for the rest.
func (d *Detector) Detect(artifacts []*domain.StrategyArtifact) *Result {
	result := &Result{}

	candidates := d.admit(artifacts, result)
	clusters := d.clusterByMetric(candidates)

	for _, cl := range clusters {
		if len(cl.members) < 2 {
			continue
		}
		d.groupBySimilarity(cl, result)
	}

	return result
}

// admit normalizes each artifact and extracts its metric, skipping artifacts
// that cannot participate.
func (d *Detector) admit(artifacts []*domain.StrategyArtifact, result *Result) []*candidate {
	candidates := make([]*candidate, 0, len(artifacts))
	for pos, a := range artifacts {
		value, ok := d.metric(a)
		if !ok {
			msg := fmt.Sprintf("artifact %d: no metric recorded, skipped", a.Index)
			result.Skipped = append(result.Skipped, msg)
			d.log.Warn().Int("index", a.Index).Msg("duplicate detection: no metric recorded, skipping")
			continue
		}
		normalized, err := d.model.Normalize(a.SourceText)
		if err != nil {
			msg := fmt.Sprintf("artifact %d: normalize failed: %v", a.Index, err)
			result.Skipped = append(result.Skipped, msg)
			d.log.Warn().Int("index", a.Index).Err(err).Msg("duplicate detection: normalize failed, skipping")
			continue
		}
		candidates = append(candidates, &candidate{
			pos:        pos,
			artifact:   a,
			value:      value,
			normalized: normalized,
		})
	}
	return candidates
}

// clusterByMetric performs online equivalence-class construction in input
// order. O(n*k) over k clusters found so far.
func (d *Detector) clusterByMetric(candidates []*candidate) []*cluster {
	var clusters []*cluster
	for _, c := range candidates {
		placed := false
		for _, cl := range clusters {
			if math.Abs(c.value-cl.rep) <= d.cfg.MetricTolerance {
				cl.members = append(cl.members, c)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, &cluster{rep: c.value, members: []*candidate{c}})
		}
	}
	return clusters
}

// groupBySimilarity sub-clusters one metric cluster by normalized-source
// similarity and emits groups with at least two members.
func (d *Detector) groupBySimilarity(cl *cluster, result *Result) {
	processed := make([]bool, len(cl.members))

	for i, lead := range cl.members {
		if processed[i] {
			continue
		}
		processed[i] = true

		group := []*candidate{lead}
		// Similarity of the first matched pair stands in for the group.
		// An all-pairs average is a possible future improvement.
		firstPairSim := 0.0

		for j := i + 1; j < len(cl.members); j++ {
			if processed[j] {
				continue
			}
			other := cl.members[j]
			sim := similarityRatio(lead.normalized, other.normalized)
			if sim >= d.cfg.SimilarityThreshold {
				if len(group) == 1 {
					firstPairSim = sim
				}
				group = append(group, other)
				processed[j] = true
			}
		}

		if len(group) < 2 {
			continue
		}

		members := make([]*domain.StrategyArtifact, len(group))
		for k, c := range group {
			members[k] = c.artifact
		}
		diff := unifiedDiff(group[0].artifact, group[1].artifact)
		result.Groups = append(result.Groups, domain.NewDuplicateGroup(cl.rep, members, firstPairSim, diff))

		for _, c := range group[1:] {
			result.ExcludePositions = append(result.ExcludePositions, c.pos)
		}

		d.log.Debug().
			Float64("metric", cl.rep).
			Float64("similarity", firstPairSim).
			Ints("members", domainIndices(members)).
			Msg("duplicate group emitted")
	}
}

func domainIndices(members []*domain.StrategyArtifact) []int {
	out := make([]int, len(members))
	for i, m := range members {
		out[i] = m.Index
	}
	return out
}
