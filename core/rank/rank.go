// Package rank implements windowed ranking over tables: row numbering,
// ranking with and without gaps, and tile assignment. Each function
// returns a derived table with the rank column appended, rows ordered
// by partition and then by the window ordering.
package rank

import (
	"sort"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
	"github.com/FocuswithJustin/TallyBook/core/table"
	"github.com/FocuswithJustin/TallyBook/core/value"
)

// OrderSpec orders a window by one column. NULL sorts first either way.
type OrderSpec struct {
	Col  string
	Desc bool
}

// Window describes how rows are partitioned and ordered before ranks
// are assigned. PartitionBy may be empty; OrderBy must not be.
type Window struct {
	PartitionBy []string
	OrderBy     []OrderSpec
}

// RowNumber appends a column numbering the rows of each partition 1..n
// in window order. Ties are numbered in input order.
func RowNumber(t *table.Table, w Window, as string) (*table.Table, error) {
	return apply(t, w, as, func(seg segment) []int64 {
		ranks := make([]int64, seg.len())
		for k := range ranks {
			ranks[k] = int64(k + 1)
		}
		return ranks
	})
}

// Rank appends the rank of each row within its partition. Tied rows
// share a rank and the next distinct value skips past them, so ranks
// 1, 2, 2, 4 mark a two-way tie for second.
func Rank(t *table.Table, w Window, as string) (*table.Table, error) {
	return apply(t, w, as, func(seg segment) []int64 {
		ranks := make([]int64, seg.len())
		for k := range ranks {
			if k > 0 && seg.tied(k-1, k) {
				ranks[k] = ranks[k-1]
			} else {
				ranks[k] = int64(k + 1)
			}
		}
		return ranks
	})
}

// DenseRank is Rank without gaps: tied rows share a rank and the next
// distinct value takes the following integer.
func DenseRank(t *table.Table, w Window, as string) (*table.Table, error) {
	return apply(t, w, as, func(seg segment) []int64 {
		ranks := make([]int64, seg.len())
		for k := range ranks {
			switch {
			case k == 0:
				ranks[k] = 1
			case seg.tied(k-1, k):
				ranks[k] = ranks[k-1]
			default:
				ranks[k] = ranks[k-1] + 1
			}
		}
		return ranks
	})
}

// Ntile splits each partition into n tiles numbered 1..n in window
// order. When the partition does not divide evenly the earlier tiles
// take the extra row, so sizes never differ by more than one.
func Ntile(t *table.Table, w Window, n int, as string) (*table.Table, error) {
	if n < 1 {
		return nil, tberrors.Wrapf(tberrors.ErrInvalidInput, "ntile: %d tiles", n)
	}
	return apply(t, w, as, func(seg segment) []int64 {
		size := seg.len()
		ranks := make([]int64, size)
		base, extra := size/n, size%n
		row := 0
		for tile := 1; tile <= n && row < size; tile++ {
			width := base
			if tile <= extra {
				width++
			}
			for k := 0; k < width; k++ {
				ranks[row] = int64(tile)
				row++
			}
		}
		return ranks
	})
}

// segment is one partition of the sorted row order. tied reports
// whether two positions compare equal under the window ordering.
type segment struct {
	rows []table.Row
	ord  *ordering
}

func (s segment) len() int { return len(s.rows) }

func (s segment) tied(a, b int) bool {
	return s.ord.compareOrder(s.rows[a], s.rows[b]) == 0
}

type ordering struct {
	partIdx  []int
	orderIdx []int
	desc     []bool
}

func resolve(t *table.Table, w Window) (*ordering, error) {
	if len(w.OrderBy) == 0 {
		return nil, tberrors.Wrap(tberrors.ErrInvalidInput, "window needs an order")
	}
	ord := &ordering{
		partIdx:  make([]int, 0, len(w.PartitionBy)),
		orderIdx: make([]int, 0, len(w.OrderBy)),
		desc:     make([]bool, 0, len(w.OrderBy)),
	}
	for _, c := range w.PartitionBy {
		i, ok := t.ColumnIndex(c)
		if !ok {
			return nil, tberrors.NewUnknownColumn(c, "window partition")
		}
		ord.partIdx = append(ord.partIdx, i)
	}
	for _, o := range w.OrderBy {
		i, ok := t.ColumnIndex(o.Col)
		if !ok {
			return nil, tberrors.NewUnknownColumn(o.Col, "window order")
		}
		ord.orderIdx = append(ord.orderIdx, i)
		ord.desc = append(ord.desc, o.Desc)
	}
	return ord, nil
}

func (o *ordering) comparePartition(a, b table.Row) int {
	for _, i := range o.partIdx {
		if c := value.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func (o *ordering) compareOrder(a, b table.Row) int {
	for k, i := range o.orderIdx {
		c := value.Compare(a[i], b[i])
		if c == 0 {
			continue
		}
		if o.desc[k] {
			return -c
		}
		return c
	}
	return 0
}

func apply(t *table.Table, w Window, as string, assign func(segment) []int64) (*table.Table, error) {
	if as == "" {
		return nil, tberrors.Wrap(tberrors.ErrInvalidInput, "rank column needs a name")
	}
	if _, ok := t.ColumnIndex(as); ok {
		return nil, tberrors.Wrapf(tberrors.ErrInvalidInput, "column %q already exists", as)
	}
	ord, err := resolve(t, w)
	if err != nil {
		return nil, err
	}

	rows := make([]table.Row, t.Len())
	for i := range rows {
		rows[i] = t.Row(i)
	}
	sort.SliceStable(rows, func(a, b int) bool {
		if c := ord.comparePartition(rows[a], rows[b]); c != 0 {
			return c < 0
		}
		return ord.compareOrder(rows[a], rows[b]) < 0
	})

	out := table.New(append(append(table.Schema{}, t.Schema()...), table.Column{
		Name: as,
		Kind: value.KindInt,
	}))
	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && ord.comparePartition(rows[start], rows[end]) == 0 {
			end++
		}
		seg := segment{rows: rows[start:end], ord: ord}
		for k, r := range assign(seg) {
			row := append(append(table.Row{}, seg.rows[k]...), value.NewInt(r))
			if err := out.AppendRow(row); err != nil {
				return nil, err
			}
		}
		start = end
	}
	return out, nil
}
