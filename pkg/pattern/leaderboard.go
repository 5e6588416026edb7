package pattern

// Leaderboard ranks items by a metric, e.g. builds by failure count.
type Leaderboard struct {
	Label      string
	MetricName string
	Items      []LeaderboardItem
	TotalCount int // before truncation to the top N
	ShowRank   bool
}

// LeaderboardItem is one ranked entry.
type LeaderboardItem struct {
	Name   string
	Metric string // formatted
	Value  float64
	Rank   int
}

func (l *Leaderboard) Type() PatternType { return PatternTypeLeaderboard }
