package pattern

// SummaryKind tells renderers which command produced a summary.
type SummaryKind string

const (
	SummaryKindReconcile SummaryKind = "reconcile"
	SummaryKindTryJobs   SummaryKind = "tryjobs"
	SummaryKindHistory   SummaryKind = "history"
	SummaryKindBaselines SummaryKind = "baselines"
)

// Summary is a headline with a handful of counters.
type Summary struct {
	Label   string
	Kind    SummaryKind
	Metrics []SummaryItem
}

// SummaryItem is one counter.
type SummaryItem struct {
	Label string // "removed", "narrowed", "builds"
	Value string
	Kind  string // "success", "error", "warning" or "info"; drives coloring
}

func (s *Summary) Type() PatternType { return PatternTypeSummary }
