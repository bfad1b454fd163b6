// Package charset provides sets of code points and the partition of an alphabet into classes.
package charset

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

const MaxRune = unicode.MaxRune

// Range is a closed interval of code points.
type Range struct {
	From rune
	To   rune
}

func (r Range) String() string {
	if r.From == r.To {
		return fmt.Sprintf("%U", r.From)
	}
	return fmt.Sprintf("%U..%U", r.From, r.To)
}

func (r Range) Contains(c rune) bool {
	return c >= r.From && c <= r.To
}

// Set is a sorted list of disjoint, non-adjacent ranges.
type Set []Range

// NewSet normalizes ranges into a set. Reversed ranges are ignored.
func NewSet(rs ...Range) Set {
	var valid []Range
	for _, r := range rs {
		if r.From > r.To {
			continue
		}
		valid = append(valid, r)
	}
	if len(valid) == 0 {
		return nil
	}
	sort.Slice(valid, func(i, j int) bool {
		if valid[i].From == valid[j].From {
			return valid[i].To < valid[j].To
		}
		return valid[i].From < valid[j].From
	})
	s := Set{valid[0]}
	for _, r := range valid[1:] {
		last := &s[len(s)-1]
		if r.From <= last.To+1 {
			if r.To > last.To {
				last.To = r.To
			}
			continue
		}
		s = append(s, r)
	}
	return s
}

func Char(c rune) Set {
	return Set{{From: c, To: c}}
}

// Any is the set of every code point.
func Any() Set {
	return Set{{From: 0, To: MaxRune}}
}

func (s Set) Contains(c rune) bool {
	i := sort.Search(len(s), func(i int) bool {
		return s[i].To >= c
	})
	return i < len(s) && s[i].From <= c
}

func (s Set) Union(o Set) Set {
	rs := make([]Range, 0, len(s)+len(o))
	rs = append(rs, s...)
	rs = append(rs, o...)
	return NewSet(rs...)
}

// Negate returns the complement of the set within [0, MaxRune].
func (s Set) Negate() Set {
	var neg Set
	var from rune
	for _, r := range s {
		if r.From > from {
			neg = append(neg, Range{From: from, To: r.From - 1})
		}
		from = r.To + 1
	}
	if from <= MaxRune {
		neg = append(neg, Range{From: from, To: MaxRune})
	}
	return neg
}

// Intersect returns the code points contained in both sets.
func (s Set) Intersect(o Set) Set {
	var rs []Range
	i, j := 0, 0
	for i < len(s) && j < len(o) {
		from := s[i].From
		if o[j].From > from {
			from = o[j].From
		}
		to := s[i].To
		if o[j].To < to {
			to = o[j].To
		}
		if from <= to {
			rs = append(rs, Range{From: from, To: to})
		}
		if s[i].To < o[j].To {
			i++
		} else {
			j++
		}
	}
	return NewSet(rs...)
}

func (s Set) IsEmpty() bool {
	return len(s) == 0
}

func (s Set) String() string {
	var b strings.Builder
	b.WriteString("[")
	for i, r := range s {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(r.String())
	}
	b.WriteString("]")
	return b.String()
}

// Partition splits the ranges into disjoint atomic intervals so that every given range is the
// union of some of them. Code points covered by no range belong to no interval. The result is
// sorted, and the index of an interval is its class.
func Partition(rs []Range) []Range {
	// Each range contributes two boundaries: its start and the code point after its end.
	bounds := map[rune]struct{}{}
	for _, r := range rs {
		if r.From > r.To {
			continue
		}
		bounds[r.From] = struct{}{}
		bounds[r.To+1] = struct{}{}
	}
	points := make([]rune, 0, len(bounds))
	for p := range bounds {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i] < points[j]
	})

	covered := NewSet(rs...)
	var atoms []Range
	for i := 0; i+1 < len(points); i++ {
		atom := Range{From: points[i], To: points[i+1] - 1}
		if !covered.Contains(atom.From) {
			continue
		}
		atoms = append(atoms, atom)
	}
	return atoms
}

// ClassOf returns the index of the interval containing c, or -1.
func ClassOf(atoms []Range, c rune) int {
	i := sort.Search(len(atoms), func(i int) bool {
		return atoms[i].To >= c
	})
	if i < len(atoms) && atoms[i].From <= c {
		return i
	}
	return -1
}

// ClassesOf returns the classes whose intervals make up r. r must be a union of intervals of atoms.
func ClassesOf(atoms []Range, r Range) []int {
	var classes []int
	i := sort.Search(len(atoms), func(i int) bool {
		return atoms[i].To >= r.From
	})
	for ; i < len(atoms) && atoms[i].From <= r.To; i++ {
		classes = append(classes, i)
	}
	return classes
}
