package pattern

// Sparkline is a one-line trend, such as failures per build.
type Sparkline struct {
	Label  string
	Values []float64
	Unit   string
}

func (s *Sparkline) Type() PatternType { return PatternTypeSparkline }
