package groupset

import "math/bits"

// Mask is a GROUPING_ID bitmask over a spec's column list. With n
// columns, the first listed column occupies bit n-1 (the most
// significant of the low n bits) and the last column occupies bit 0. A
// set bit means the column is aggregated away in that grouping set, so
// mask 0 is the detail row and mask 2^n - 1 the grand total.
type Mask uint32

// Grouping returns the GROUPING flag of the i-th of n columns: 1 when
// the column is aggregated away, 0 when it is retained.
func (m Mask) Grouping(i, n int) int {
	if i < 0 || i >= n {
		return 0
	}
	return int(m >> uint(n-1-i) & 1)
}

// Level returns the number of retained columns under a mask of width n.
// Detail rows have level n; the grand total has level 0.
func (m Mask) Level(n int) int {
	return n - bits.OnesCount32(uint32(m)&uint32(1<<uint(n)-1))
}

// IsDetail reports whether the mask retains every column.
func (m Mask) IsDetail() bool { return m == 0 }

// IsGrandTotal reports whether the mask of width n aggregates every
// column away.
func (m Mask) IsGrandTotal(n int) bool {
	return m == Mask(1<<uint(n)-1)
}
