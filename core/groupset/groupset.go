// Package groupset implements grouping-set algebra: ROLLUP and CUBE
// expansion, explicit GROUPING SETS, and the GROUPING_ID bitmask that
// identifies which columns a result row aggregates away. The mask bit
// layout matches the engine convention: the first listed column is the
// most significant bit, and a set bit means the column was rolled up.
//
// The package is deliberately small and allocation-light; evaluation of
// a specification over data lives in core/tally, and turning masks into
// report labels lives in Describe and core/report.
package groupset

import (
	"fmt"
	"math/bits"
	"strings"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
)

const (
	// MaxColumns bounds the grouping column list so GROUPING_ID fits a
	// non-negative 32-bit integer, the same width the engine returns.
	MaxColumns = 31

	// MaxSets bounds the number of grouping sets one specification may
	// expand to, mirroring the engine's 4096-set ceiling.
	MaxSets = 4096
)

// Column names a grouping column.
type Column string

// Set is one grouping set: the columns retained (not aggregated away)
// for that set. The empty Set denotes the grand total.
type Set []Column

// Form records which constructor produced a Spec, so it can be
// rendered back in its original shape.
type Form int

const (
	FormGroupBy Form = iota
	FormRollup
	FormCube
	FormSets
)

// Spec is a grouping specification: an ordered column list plus the
// grouping sets to evaluate over it.
type Spec struct {
	form  Form
	cols  []Column
	index map[Column]int
	sets  []Set
	masks []Mask
}

// GroupBy builds a single-set specification that groups by every
// listed column, the plain GROUP BY case.
func GroupBy(cols ...Column) (*Spec, error) {
	s, err := newSpec(FormGroupBy, cols)
	if err != nil {
		return nil, err
	}
	s.addSet(Set(s.cols))
	return s, nil
}

// Rollup builds the hierarchy expansion of cols: each prefix of the
// list plus the grand total. Rollup(a, b, c) evaluates the sets
// (a, b, c), (a, b), (a), and ().
func Rollup(cols ...Column) (*Spec, error) {
	s, err := newSpec(FormRollup, cols)
	if err != nil {
		return nil, err
	}
	for n := len(s.cols); n >= 0; n-- {
		s.addSet(Set(s.cols[:n]))
	}
	return s, nil
}

// Cube builds every subset of cols, from the full detail set down to
// the grand total. Sets are ordered by decreasing retained-column
// count, ties broken by ascending mask.
func Cube(cols ...Column) (*Spec, error) {
	s, err := newSpec(FormCube, cols)
	if err != nil {
		return nil, err
	}
	n := len(s.cols)
	if 1<<uint(n) > MaxSets {
		return nil, fmt.Errorf("cube over %d columns expands to %d sets, limit %d: %w",
			n, 1<<uint(n), MaxSets, tberrors.ErrInvalidInput)
	}
	// Walk retained counts from n down to 0 so detail comes first and
	// the grand total last.
	total := Mask(1<<uint(n) - 1)
	for level := n; level >= 0; level-- {
		for m := Mask(0); m <= total; m++ {
			if n-bits.OnesCount32(uint32(m)) == level {
				s.addSet(s.setOf(m))
			}
		}
	}
	return s, nil
}

// Sets builds an explicit GROUPING SETS specification. Every set must
// draw only from cols; duplicate sets are rejected. Set order is
// preserved.
func Sets(cols []Column, sets ...Set) (*Spec, error) {
	s, err := newSpec(FormSets, cols)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("grouping sets: no sets given: %w", tberrors.ErrInvalidInput)
	}
	if len(sets) > MaxSets {
		return nil, fmt.Errorf("grouping sets: %d sets exceeds limit %d: %w",
			len(sets), MaxSets, tberrors.ErrInvalidInput)
	}
	seen := make(map[Mask]bool, len(sets))
	for _, set := range sets {
		m, err := s.maskOf(set)
		if err != nil {
			return nil, err
		}
		if seen[m] {
			return nil, fmt.Errorf("grouping sets: duplicate set (%s): %w",
				joinColumns(s.setOf(m)), tberrors.ErrInvalidInput)
		}
		seen[m] = true
		s.addSet(s.setOf(m))
	}
	return s, nil
}

func newSpec(form Form, cols []Column) (*Spec, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("grouping spec: empty column list: %w", tberrors.ErrInvalidInput)
	}
	if len(cols) > MaxColumns {
		return nil, fmt.Errorf("grouping spec: %d columns exceeds limit %d: %w",
			len(cols), MaxColumns, tberrors.ErrInvalidInput)
	}
	s := &Spec{
		form:  form,
		cols:  make([]Column, 0, len(cols)),
		index: make(map[Column]int, len(cols)),
	}
	for _, c := range cols {
		if c == "" {
			return nil, fmt.Errorf("grouping spec: empty column name: %w", tberrors.ErrInvalidInput)
		}
		if _, dup := s.index[c]; dup {
			return nil, fmt.Errorf("grouping spec: duplicate column %q: %w", c, tberrors.ErrInvalidInput)
		}
		s.index[c] = len(s.cols)
		s.cols = append(s.cols, c)
	}
	return s, nil
}

func (s *Spec) addSet(set Set) {
	m, _ := s.maskOf(set)
	s.sets = append(s.sets, set)
	s.masks = append(s.masks, m)
}

// maskOf computes the GROUPING_ID mask of a set: all bits set, then
// each retained column's bit cleared.
func (s *Spec) maskOf(set Set) (Mask, error) {
	n := len(s.cols)
	m := Mask(1<<uint(n) - 1)
	for _, c := range set {
		i, ok := s.index[c]
		if !ok {
			return 0, tberrors.NewUnknownColumn(string(c), "grouping spec")
		}
		m &^= 1 << uint(n-1-i)
	}
	return m, nil
}

// setOf reconstructs the retained-column set of a mask, in column-list
// order.
func (s *Spec) setOf(m Mask) Set {
	set := make(Set, 0, len(s.cols))
	for i, c := range s.cols {
		if m.Grouping(i, len(s.cols)) == 0 {
			set = append(set, c)
		}
	}
	return set
}

// Columns returns the full ordered grouping column list.
func (s *Spec) Columns() []Column { return s.cols }

// NumColumns returns the grouping column count.
func (s *Spec) NumColumns() int { return len(s.cols) }

// Sets returns the grouping sets in evaluation order.
func (s *Spec) Sets() []Set { return s.sets }

// Masks returns one GROUPING_ID mask per set, in evaluation order.
func (s *Spec) Masks() []Mask { return s.masks }

// Form reports which constructor shape produced the spec.
func (s *Spec) Form() Form { return s.form }

// IndexOf returns the position of col in the column list.
func (s *Spec) IndexOf(col Column) (int, bool) {
	i, ok := s.index[col]
	return i, ok
}

// MaskOf returns the GROUPING_ID mask for an arbitrary set over this
// spec's columns.
func (s *Spec) MaskOf(set Set) (Mask, error) { return s.maskOf(set) }

// Retained returns the columns a mask keeps, in column-list order.
func (s *Spec) Retained(m Mask) []Column { return s.setOf(m) }

// Aggregated returns the columns a mask rolls away, in column-list
// order.
func (s *Spec) Aggregated(m Mask) []Column {
	out := make([]Column, 0, len(s.cols))
	for i, c := range s.cols {
		if m.Grouping(i, len(s.cols)) == 1 {
			out = append(out, c)
		}
	}
	return out
}

// String renders the spec in its constructor shape, e.g.
// "ROLLUP(department, job_title)".
func (s *Spec) String() string {
	switch s.form {
	case FormRollup:
		return "ROLLUP(" + joinColumns(Set(s.cols)) + ")"
	case FormCube:
		return "CUBE(" + joinColumns(Set(s.cols)) + ")"
	case FormSets:
		parts := make([]string, len(s.sets))
		for i, set := range s.sets {
			parts[i] = "(" + joinColumns(set) + ")"
		}
		return "GROUPING SETS (" + strings.Join(parts, ", ") + ")"
	default:
		return joinColumns(Set(s.cols))
	}
}

func joinColumns(set Set) string {
	parts := make([]string, len(set))
	for i, c := range set {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}
