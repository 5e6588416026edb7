package outcome

import (
	"iter"
	"strings"
)

type sourceKind int

const (
	sourceRaw sourceKind = iota
	sourceTokens
)

// Source is the input to Parse: either a raw space-separated string as found
// in result documents, or an already tokenized sequence.
type Source struct {
	kind   sourceKind
	raw    string
	tokens []Token
}

// Raw wraps a space-separated outcome string such as "PASS IMAGE".
func Raw(s string) Source {
	return Source{kind: sourceRaw, raw: s}
}

// Tokens wraps a pre-built token sequence.
func Tokens(tokens ...Token) Source {
	return Source{kind: sourceTokens, tokens: tokens}
}

// Set is an order-preserving set of distinct outcome tokens.
// The zero value is an empty set.
type Set struct {
	tokens []Token
}

// Parse builds a Set from src. Duplicates keep their first position.
func Parse(src Source) Set {
	var in []Token
	switch src.kind {
	case sourceRaw:
		for _, f := range strings.Fields(src.raw) {
			in = append(in, Token(f))
		}
	case sourceTokens:
		in = src.tokens
	}
	var s Set
	for _, t := range in {
		s = s.with(t)
	}
	return s
}

// ParseString is shorthand for Parse(Raw(s)).
func ParseString(s string) Set {
	return Parse(Raw(s))
}

func (s Set) with(t Token) Set {
	if t == "" || s.Has(t) {
		return s
	}
	out := make([]Token, len(s.tokens), len(s.tokens)+1)
	copy(out, s.tokens)
	return Set{tokens: append(out, t)}
}

// Union returns a new set with the members of s followed by any new members of o.
func (s Set) Union(o Set) Set {
	for _, t := range o.tokens {
		s = s.with(t)
	}
	return s
}

// Tokens returns a copy of the members in order.
func (s Set) Tokens() []Token {
	return append([]Token(nil), s.tokens...)
}

// Len returns the number of members.
func (s Set) Len() int { return len(s.tokens) }

// IsEmpty reports whether the set has no members.
func (s Set) IsEmpty() bool { return len(s.tokens) == 0 }

// Is reports whether t is the only member.
func (s Set) Is(t Token) bool {
	return len(s.tokens) == 1 && s.tokens[0] == t
}

// Has reports whether t is a member.
func (s Set) Has(t Token) bool {
	for _, m := range s.tokens {
		if m == t {
			return true
		}
	}
	return false
}

// HasFailure reports whether any member is outside PASS, SKIP and MISSING.
func (s Set) HasFailure() bool {
	for _, t := range s.tokens {
		if t.IsFailure() {
			return true
		}
	}
	return false
}

// SeverestFailure returns the highest-severity failing member.
func (s Set) SeverestFailure() (Token, bool) {
	var worst Token
	found := false
	for _, t := range s.tokens {
		if !t.IsFailure() {
			continue
		}
		if !found || t.severity() > worst.severity() {
			worst = t
			found = true
		}
	}
	return worst, found
}

// FailureExtensions yields the baseline file extensions needed to rebaseline
// every failing member: ".png" before ".txt", each at most once.
func (s Set) FailureExtensions() iter.Seq[string] {
	return func(yield func(string) bool) {
		image := s.Has(Image) || s.Has(ImageText)
		text := s.Has(Text) || s.Has(ImageText)
		if image && !yield(".png") {
			return
		}
		if text {
			yield(".txt")
		}
	}
}

// Canonical maps each member to its category in member order, duplicates
// included. MISSING and unknown tokens are dropped.
func (s Set) Canonical() []Category {
	out := make([]Category, 0, len(s.tokens))
	for _, t := range s.tokens {
		if c, ok := t.Category(); ok {
			out = append(out, c)
		}
	}
	return out
}

// Categories is the deduplicated form of Canonical.
func (s Set) Categories() CategorySet {
	var cs CategorySet
	for _, c := range s.Canonical() {
		cs = cs.With(c)
	}
	return cs
}

func (s Set) String() string {
	parts := make([]string, len(s.tokens))
	for i, t := range s.tokens {
		parts[i] = string(t)
	}
	return strings.Join(parts, " ")
}
