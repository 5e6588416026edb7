package outcome

import "strings"

// CategorySet is an immutable set of canonical categories. Iteration order is
// always AllCategories order regardless of insertion order.
type CategorySet struct {
	bits uint8
}

// NewCategorySet builds a set from the given categories. Names outside
// AllCategories are ignored.
func NewCategorySet(cs ...Category) CategorySet {
	var s CategorySet
	for _, c := range cs {
		s = s.With(c)
	}
	return s
}

// With returns s plus c.
func (s CategorySet) With(c Category) CategorySet {
	return CategorySet{bits: s.bits | c.bit()}
}

// Without returns s minus c.
func (s CategorySet) Without(c Category) CategorySet {
	return CategorySet{bits: s.bits &^ c.bit()}
}

// Has reports whether c is a member.
func (s CategorySet) Has(c Category) bool {
	b := c.bit()
	return b != 0 && s.bits&b != 0
}

// Union returns the members of either set.
func (s CategorySet) Union(o CategorySet) CategorySet {
	return CategorySet{bits: s.bits | o.bits}
}

// Intersect returns the members of both sets.
func (s CategorySet) Intersect(o CategorySet) CategorySet {
	return CategorySet{bits: s.bits & o.bits}
}

// IsEmpty reports whether s has no members.
func (s CategorySet) IsEmpty() bool { return s.bits == 0 }

// Equal reports whether both sets have the same members.
func (s CategorySet) Equal(o CategorySet) bool { return s.bits == o.bits }

// SubsetOf reports whether every member of s is in o.
func (s CategorySet) SubsetOf(o CategorySet) bool {
	return s.bits&^o.bits == 0
}

// StrictSubsetOf reports whether s is a subset of o and not equal to it.
func (s CategorySet) StrictSubsetOf(o CategorySet) bool {
	return s.SubsetOf(o) && s.bits != o.bits
}

// Len returns the number of members.
func (s CategorySet) Len() int {
	n := 0
	for b := s.bits; b != 0; b &= b - 1 {
		n++
	}
	return n
}

// Slice returns the members in AllCategories order.
func (s CategorySet) Slice() []Category {
	out := make([]Category, 0, len(AllCategories))
	for _, c := range AllCategories {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// String formats the set as "Crash Failure".
func (s CategorySet) String() string {
	names := make([]string, 0, len(AllCategories))
	for _, c := range s.Slice() {
		names = append(names, string(c))
	}
	return strings.Join(names, " ")
}
