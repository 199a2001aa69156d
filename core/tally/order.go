package tally

import (
	"sort"

	"github.com/FocuswithJustin/TallyBook/core/value"
)

// sortRows orders the result deterministically: group-major by
// grouping values with NULL first, each subtotal adjacent to the rows
// it summarizes (after them by default), the grand total at the edge.
func sortRows(res *Result, subtotalsFirst bool) {
	n := res.Spec.NumColumns()
	sort.SliceStable(res.Rows, func(i, j int) bool {
		return compareRows(res.Rows[i], res.Rows[j], n, subtotalsFirst) < 0
	})
}

func compareRows(a, b ResultRow, n int, subtotalsFirst bool) int {
	for i := 0; i < n; i++ {
		ga := a.Mask.Grouping(i, n)
		gb := b.Mask.Grouping(i, n)
		if ga == 0 && gb == 0 {
			if c := value.Compare(a.Groups[i], b.Groups[i]); c != 0 {
				return c
			}
			continue
		}
		if ga != gb {
			// Exactly one side aggregates this column away; that side
			// is the subtotal of the other's prefix.
			if subtotalsFirst {
				return gb - ga
			}
			return ga - gb
		}
		// Both aggregated: indistinguishable at this column.
	}
	// Equal retained values and pattern; settle by mask so output is
	// stable across grouping sets.
	switch {
	case a.Mask < b.Mask:
		return -1
	case a.Mask > b.Mask:
		return 1
	}
	return 0
}
