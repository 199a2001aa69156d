// Package tally evaluates grouping specifications over in-memory
// tables. One Run produces every grouping set's rows in a single
// result, each row carrying the GROUPING_ID mask that identifies which
// columns it aggregates away, so callers can label subtotals without
// inspecting NULLs.
package tally

import (
	"context"
	"strings"

	"github.com/FocuswithJustin/TallyBook/core/aggregate"
	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
	"github.com/FocuswithJustin/TallyBook/core/groupset"
	"github.com/FocuswithJustin/TallyBook/core/table"
	"github.com/FocuswithJustin/TallyBook/core/value"
)

// keySep separates group-key parts; it cannot appear in a value's
// group key encoding.
const keySep = "\x1f"

// AggSpec describes one aggregate column of a request.
type AggSpec struct {
	// Func is the aggregate name, resolved case-insensitively.
	Func string
	// Col is the input column, or "*" for COUNT(*).
	Col string
	// As names the output column; empty derives a name from Func and Col.
	As string
	// Distinct applies the DISTINCT modifier.
	Distinct bool
	// Sep is the STRING_AGG separator; HasSep records that it was given.
	Sep    string
	HasSep bool
}

// OutputName returns the result column name for this aggregate.
func (a AggSpec) OutputName() string {
	if a.As != "" {
		return a.As
	}
	fn := strings.ToLower(a.Func)
	if a.Col == "*" {
		return fn + "_star"
	}
	return fn + "_" + a.Col
}

// Request is one grouped-aggregation evaluation.
type Request struct {
	// Spec is the grouping specification to evaluate.
	Spec *groupset.Spec
	// Aggregates lists the aggregate output columns.
	Aggregates []AggSpec
	// Filter, when set, keeps only matching input rows.
	Filter func(table.Row) bool
	// Registry resolves aggregate names; nil uses the default.
	Registry *aggregate.Registry
	// SubtotalsFirst places subtotal rows before the rows they
	// summarize instead of after.
	SubtotalsFirst bool
}

// ResultRow is one output row: the grouping column values (NULL where
// aggregated away), the aggregate values, and the grouping mask.
type ResultRow struct {
	Groups []value.Value
	Aggs   []value.Value
	Mask   groupset.Mask

	spec *groupset.Spec
}

// GroupingID returns the row's GROUPING_ID as an int.
func (rr ResultRow) GroupingID() int { return int(rr.Mask) }

// Grouping returns the GROUPING flag of one column: 1 when the row
// aggregates it away. Unknown columns report 0.
func (rr ResultRow) Grouping(col groupset.Column) int {
	i, ok := rr.spec.IndexOf(col)
	if !ok {
		return 0
	}
	return rr.Mask.Grouping(i, rr.spec.NumColumns())
}

// Level returns the number of retained grouping columns.
func (rr ResultRow) Level() int { return rr.Mask.Level(rr.spec.NumColumns()) }

// IsSubtotal reports whether the row aggregates any column away.
func (rr ResultRow) IsSubtotal() bool { return !rr.Mask.IsDetail() }

// Label returns the subtotal label for the row's mask.
func (rr ResultRow) Label() string { return rr.spec.Describe(rr.Mask) }

// Result is the full evaluation output, ordered deterministically:
// rows sort by grouping values, subtotals adjacent to the rows they
// summarize, the grand total at the edge.
type Result struct {
	Spec       *groupset.Spec
	Aggregates []AggSpec
	Rows       []ResultRow
}

// GroupColumns returns the grouping column names in order.
func (r *Result) GroupColumns() []string {
	cols := r.Spec.Columns()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = string(c)
	}
	return out
}

// AggColumns returns the aggregate output names in order.
func (r *Result) AggColumns() []string {
	out := make([]string, len(r.Aggregates))
	for i, a := range r.Aggregates {
		out[i] = a.OutputName()
	}
	return out
}

// boundAgg is an aggregate spec resolved against a table and registry.
type boundAgg struct {
	spec    AggSpec
	colIdx  int // -1 for "*"
	factory aggregate.Factory
}

func (b boundAgg) newAccumulator() (aggregate.Accumulator, error) {
	// COUNT(DISTINCT col) has a dedicated accumulator.
	if b.spec.Distinct {
		switch strings.ToUpper(b.spec.Func) {
		case "COUNT", "COUNT_BIG":
			return aggregate.NewCountDistinct(), nil
		}
	}
	acc, err := b.factory(aggregate.Args{Separator: b.spec.Sep, HasSeparator: b.spec.HasSep})
	if err != nil {
		return nil, err
	}
	if b.spec.Distinct {
		acc = aggregate.Distinct(acc)
	}
	return acc, nil
}

// bucket accumulates one group of one grouping set.
type bucket struct {
	groups []value.Value
	accs   []aggregate.Accumulator
}

// Run evaluates a request over a table. Every input row contributes to
// every grouping set; the context is checked between sets.
func Run(ctx context.Context, t *table.Table, req Request) (*Result, error) {
	if req.Spec == nil {
		return nil, tberrors.Wrap(tberrors.ErrInvalidInput, "tally: nil grouping spec")
	}

	cols := req.Spec.Columns()
	n := len(cols)
	colIdx := make([]int, n)
	for i, c := range cols {
		j, ok := t.ColumnIndex(string(c))
		if !ok {
			return nil, tberrors.NewUnknownColumn(string(c), "input table")
		}
		colIdx[i] = j
	}

	bound, err := bindAggregates(t, req)
	if err != nil {
		return nil, err
	}

	rows := t.Rows()
	if req.Filter != nil {
		kept := make([]table.Row, 0, len(rows))
		for _, r := range rows {
			if req.Filter(r) {
				kept = append(kept, r)
			}
		}
		rows = kept
	}

	res := &Result{Spec: req.Spec, Aggregates: req.Aggregates}
	masks := req.Spec.Masks()
	for _, mask := range masks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		setRows, err := evalSet(req.Spec, mask, rows, colIdx, bound)
		if err != nil {
			return nil, err
		}
		res.Rows = append(res.Rows, setRows...)
	}

	sortRows(res, req.SubtotalsFirst)
	return res, nil
}

func bindAggregates(t *table.Table, req Request) ([]boundAgg, error) {
	reg := req.Registry
	if reg == nil {
		reg = aggregate.DefaultRegistry()
	}

	seen := make(map[string]bool, len(req.Aggregates))
	bound := make([]boundAgg, 0, len(req.Aggregates))
	for _, spec := range req.Aggregates {
		if spec.Func == "" {
			return nil, tberrors.Wrap(tberrors.ErrInvalidInput, "tally: empty aggregate name")
		}
		name := spec.OutputName()
		if seen[name] {
			return nil, tberrors.Wrapf(tberrors.ErrInvalidInput, "tally: duplicate output column %q", name)
		}
		seen[name] = true

		b := boundAgg{spec: spec}
		if spec.Col == "*" {
			fn := strings.ToUpper(spec.Func)
			if fn != "COUNT" && fn != "COUNT_BIG" {
				return nil, tberrors.NewAggregate(fn, "*", "only COUNT accepts *")
			}
			if spec.Distinct {
				return nil, tberrors.NewAggregate(fn, "*", "DISTINCT cannot apply to *")
			}
			b.colIdx = -1
			b.factory = func(aggregate.Args) (aggregate.Accumulator, error) {
				return aggregate.NewCountStar(), nil
			}
		} else {
			j, ok := t.ColumnIndex(spec.Col)
			if !ok {
				return nil, tberrors.NewUnknownColumn(spec.Col, "input table")
			}
			b.colIdx = j
			factory, ok := reg.Lookup(spec.Func)
			if !ok {
				return nil, tberrors.NewNotFound("aggregate", strings.ToUpper(spec.Func))
			}
			b.factory = factory
		}

		// Surface factory errors (missing separator) at bind time.
		if _, err := b.newAccumulator(); err != nil {
			return nil, err
		}
		bound = append(bound, b)
	}
	return bound, nil
}

// evalSet buckets rows by the set's retained columns and folds every
// aggregate, one pass over the input.
func evalSet(spec *groupset.Spec, mask groupset.Mask, rows []table.Row, colIdx []int, bound []boundAgg) ([]ResultRow, error) {
	n := spec.NumColumns()
	retained := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if mask.Grouping(i, n) == 0 {
			retained = append(retained, i)
		}
	}

	buckets := make(map[string]*bucket)
	order := make([]string, 0, 16)
	keyParts := make([]string, len(retained))

	for _, row := range rows {
		for k, i := range retained {
			keyParts[k] = row[colIdx[i]].GroupKey()
		}
		key := strings.Join(keyParts, keySep)

		g := buckets[key]
		if g == nil {
			g = &bucket{groups: make([]value.Value, n)}
			for _, i := range retained {
				g.groups[i] = row[colIdx[i]]
			}
			g.accs = make([]aggregate.Accumulator, len(bound))
			for ai, b := range bound {
				acc, err := b.newAccumulator()
				if err != nil {
					return nil, err
				}
				g.accs[ai] = acc
			}
			buckets[key] = g
			order = append(order, key)
		}

		for ai, b := range bound {
			v := value.Null()
			if b.colIdx >= 0 {
				v = row[b.colIdx]
			}
			if err := g.accs[ai].Step(v); err != nil {
				return nil, tberrors.Wrapf(err, "aggregate %s", b.spec.OutputName())
			}
		}
	}

	// The grand-total set yields a row even over empty input, matching
	// an ungrouped aggregate query.
	if len(order) == 0 && len(retained) == 0 {
		g := &bucket{groups: make([]value.Value, n)}
		g.accs = make([]aggregate.Accumulator, len(bound))
		for ai, b := range bound {
			acc, err := b.newAccumulator()
			if err != nil {
				return nil, err
			}
			g.accs[ai] = acc
		}
		buckets[""] = g
		order = append(order, "")
	}

	out := make([]ResultRow, 0, len(order))
	for _, key := range order {
		g := buckets[key]
		rr := ResultRow{
			Groups: g.groups,
			Aggs:   make([]value.Value, len(bound)),
			Mask:   mask,
			spec:   spec,
		}
		for ai, acc := range g.accs {
			rr.Aggs[ai] = acc.Final()
		}
		out = append(out, rr)
	}
	return out, nil
}
