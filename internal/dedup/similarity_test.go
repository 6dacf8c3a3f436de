package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"strategy-lab/internal/domain"
)

func TestSimilarityRatio(t *testing.T) {
	assert.Equal(t, 1.0, similarityRatio("", ""))
	assert.Equal(t, 1.0, similarityRatio("abc", "abc"))
	assert.Equal(t, 0.0, similarityRatio("abc", ""))
	assert.Equal(t, 0.0, similarityRatio("abc", "xyz"))

	// "abcd" vs "abxd": 3 shared chars of 8 total → 2*3/8.
	assert.InDelta(t, 0.75, similarityRatio("abcd", "abxd"), 1e-9)
}

func TestSimilarityRatio_Symmetric(t *testing.T) {
	a := "price := data.Get(\"close\")"
	b := "p := d.Get(\"close\")"
	assert.InDelta(t, similarityRatio(a, b), similarityRatio(b, a), 1e-9)
}

func TestUnifiedDiff(t *testing.T) {
	a := &domain.StrategyArtifact{Index: 4, SourceText: "line one\nline two\n"}
	b := &domain.StrategyArtifact{Index: 9, SourceText: "line one\nline 2\n"}

	diff := unifiedDiff(a, b)

	assert.Contains(t, diff, "--- strategy_4.go")
	assert.Contains(t, diff, "+++ strategy_9.go")
	assert.Contains(t, diff, "-line two")
	assert.Contains(t, diff, "+line 2")
}

func TestUnifiedDiff_IdenticalSources(t *testing.T) {
	a := &domain.StrategyArtifact{Index: 1, SourceText: "same\n"}
	b := &domain.StrategyArtifact{Index: 2, SourceText: "same\n"}

	assert.Empty(t, unifiedDiff(a, b))
}
