// Package pattern defines the presentation-neutral shapes deflake reports
// are reduced to. Renderers decide how each one looks.
package pattern

// PatternType identifies the kind of pattern.
type PatternType string

const (
	PatternTypeSummary     PatternType = "summary"
	PatternTypeLeaderboard PatternType = "leaderboard"
	PatternTypeTestTable   PatternType = "test-table"
	PatternTypeSparkline   PatternType = "sparkline"
	PatternTypeComparison  PatternType = "comparison"
)

// Pattern is implemented by every pattern type.
type Pattern interface {
	Type() PatternType
}
