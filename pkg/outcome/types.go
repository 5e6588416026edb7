// Package outcome models raw per-test result tokens and the canonical
// expectation categories they fold into.
package outcome

// Token is a raw outcome label as it appears in a result document.
type Token string

const (
	Pass      Token = "PASS"
	Image     Token = "IMAGE"
	Text      Token = "TEXT"
	ImageText Token = "IMAGE+TEXT"
	Crash     Token = "CRASH"
	Timeout   Token = "TIMEOUT"
	Missing   Token = "MISSING"
	Skip      Token = "SKIP"
)

// IsFailure reports whether t counts as a failure. Unknown tokens do.
func (t Token) IsFailure() bool {
	switch t {
	case Pass, Skip, Missing:
		return false
	}
	return true
}

// severity ranks failing tokens; higher is worse. Unknown failing tokens
// rank below every known failure.
func (t Token) severity() int {
	switch t {
	case Crash:
		return 5
	case Timeout:
		return 4
	case ImageText:
		return 3
	case Text:
		return 2
	case Image:
		return 1
	}
	return 0
}

// Category returns the canonical expectation category for t.
// MISSING and unknown tokens have no category.
func (t Token) Category() (Category, bool) {
	switch t {
	case Pass:
		return CategoryPass, true
	case Image, Text, ImageText:
		return CategoryFailure, true
	case Crash:
		return CategoryCrash, true
	case Timeout:
		return CategoryTimeout, true
	case Skip:
		return CategorySkip, true
	}
	return "", false
}

// Category is an expectation-file level outcome grouping.
type Category string

const (
	CategoryCrash   Category = "Crash"
	CategoryFailure Category = "Failure"
	CategoryPass    Category = "Pass"
	CategorySkip    Category = "Skip"
	CategoryTimeout Category = "Timeout"
)

// AllCategories lists every canonical category in expectation-file order.
var AllCategories = []Category{
	CategoryCrash,
	CategoryFailure,
	CategoryPass,
	CategorySkip,
	CategoryTimeout,
}

func (c Category) bit() uint8 {
	for i, known := range AllCategories {
		if known == c {
			return 1 << i
		}
	}
	return 0
}

// ParseCategory resolves an exact category name.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	if c.bit() == 0 {
		return "", false
	}
	return c, true
}
