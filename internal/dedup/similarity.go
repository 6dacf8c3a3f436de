package dedup

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"strategy-lab/internal/domain"
)

// similarityRatio returns the longest-matching-block similarity of two
// strings at character granularity: 2*M / (lenA + lenB) where M is the total
// length of recursively-found longest common contiguous blocks. Symmetric in
// its arguments; 1.0 for identical strings.
func similarityRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	m := difflib.NewMatcher(chars(a), chars(b))
	return m.Ratio()
}

// chars splits a string into per-rune elements for the sequence matcher.
func chars(s string) []string {
	return strings.Split(s, "")
}

// unifiedDiff renders a standard unified line diff between the raw
// (non-normalized) source of two artifacts, for human inspection.
func unifiedDiff(a, b *domain.StrategyArtifact) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a.SourceText),
		B:        difflib.SplitLines(b.SourceText),
		FromFile: fmt.Sprintf("strategy_%d.go", a.Index),
		ToFile:   fmt.Sprintf("strategy_%d.go", b.Index),
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}
