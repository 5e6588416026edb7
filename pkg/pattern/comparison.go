package pattern

// Comparison shows expected-outcome lists before and after a change.
type Comparison struct {
	Label   string
	Changes []ComparisonItem
}

// ComparisonItem is one before/after pair.
type ComparisonItem struct {
	Label  string
	Before string
	After  string
	Change float64 // signed difference in size
	Unit   string
}

func (c *Comparison) Type() PatternType { return PatternTypeComparison }
