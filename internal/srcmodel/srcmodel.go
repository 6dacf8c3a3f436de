// Package srcmodel derives comparable artifacts from generated strategy source
// without executing it: a canonical renamed form for similarity comparison and
// the set of data factors the strategy references.
//
// The SourceModel interface isolates the concrete grammar so the duplicate
// detector and diversity analyzer stay agnostic to the strategy language.
package srcmodel

import (
	"errors"

	"strategy-lab/internal/domain"
)

// ErrParse is returned when strategy source is not syntactically valid.
var ErrParse = errors.New("strategy source parse failed")

// SourceModel parses one strategy language.
type SourceModel interface {
	// ExtractFactors returns the canonical factor identifiers referenced by
	// the source. Empty source yields an empty set without error; invalid
	// source returns an error wrapping ErrParse.
	ExtractFactors(sourceText string) (domain.FactorSet, error)

	// Normalize returns the source with every bound variable and parameter
	// renamed to VAR_<n> placeholders in first-appearance order, so two
	// strategies differing only in identifier choice normalize identically.
	// Deterministic and side-effect-free.
	Normalize(sourceText string) (string, error)
}
