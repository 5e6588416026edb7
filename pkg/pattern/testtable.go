package pattern

// Status values used in TestTable rows.
const (
	StatusKeep   = "keep"
	StatusNarrow = "narrow"
	StatusRemove = "remove"
	StatusAdd    = "add"
	StatusFail   = "fail"
	StatusInfo   = "info"
)

// TestTable lists tests with a per-row status.
type TestTable struct {
	Label   string
	Source  string // section the table belongs to, e.g. "records" or "rebaseline"
	Results []TestTableItem
}

// TestTableItem is one row.
type TestTableItem struct {
	Name    string // test path, builder or run id
	Status  string
	Tag     string // bug reference or listing section
	Count   int    // number of builds or artifacts, 0 to omit
	Details string // newline-separated detail lines
}

func (t *TestTable) Type() PatternType { return PatternTypeTestTable }
